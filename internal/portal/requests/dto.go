package requests

import "portal-backend/internal/portal/books"

type SaveRequestRequest struct {
	ID        string `json:"id,omitempty"`
	Title     string `json:"title" binding:"required"`
	URL       string `json:"url"`
	Requester string `json:"requester"`
	Reason    string `json:"reason"`
	ImageURL  string `json:"imageUrl"`
	ISBN      string `json:"isbn"`
}

type LikeRequest struct {
	ID string `json:"id,omitempty"`
}

// PromoteRequest の book は図書登録フォームの内容。空の項目はリクエスト側から補う。
type PromoteRequest struct {
	ID   string      `json:"id,omitempty"`
	Book PromoteBook `json:"book"`
}

type PromoteBook struct {
	Title      string `json:"title"`
	Type       string `json:"type"`
	Location   string `json:"location"`
	Status     string `json:"status"`
	ImageURL   string `json:"imageUrl"`
	ISBN       string `json:"isbn"`
	Registrant string `json:"registrant"`
}

func (b PromoteBook) toSave() books.SaveBookRequest {
	return books.SaveBookRequest{
		Title:      b.Title,
		Type:       b.Type,
		Location:   b.Location,
		Status:     b.Status,
		ImageURL:   b.ImageURL,
		ISBN:       b.ISBN,
		Registrant: b.Registrant,
	}
}

type RequestResponse struct {
	RowNumber int    `json:"rowNumber"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Requester string `json:"requester"`
	Likes     int    `json:"likes"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
	ImageURL  string `json:"imageUrl"`
	ISBN      string `json:"isbn"`
}

type LikeResponse struct {
	Result string `json:"result"`
	Likes  int    `json:"likes"`
}

type PromoteResponse struct {
	Result  string `json:"result"`
	BookRow int    `json:"bookRowNumber,omitempty"`
	BookID  string `json:"bookId,omitempty"`
	Message string `json:"message,omitempty"`
}
