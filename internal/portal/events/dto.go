package events

// count は画面の入力値そのまま（文字列）
type SaveEventRequest struct {
	ID       string `json:"id,omitempty"`
	Date     string `json:"date"`
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
	Count    string `json:"count"`
	AlbumURL string `json:"albumUrl"`
	DocURL   string `json:"docUrl"`
	Members  string `json:"members"`
}

type EventResponse struct {
	RowNumber    int      `json:"rowNumber"`
	ID           string   `json:"id"`
	Date         string   `json:"date"`
	Name         string   `json:"name"`
	Location     string   `json:"location"`
	Count        string   `json:"count"`
	AlbumURL     string   `json:"albumUrl"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	DocURL       string   `json:"docUrl"`
	Members      string   `json:"members"`
	MemberList   []string `json:"memberList"`
}

type PhotosResponse struct {
	AlbumURL string   `json:"albumUrl"`
	Photos   []string `json:"photos"`
}
