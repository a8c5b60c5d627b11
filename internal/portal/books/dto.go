package books

// Reviews / Likes は送られてきた時だけ上書きする（nil なら既存値を保持）
type SaveBookRequest struct {
	ID         string  `json:"id,omitempty"`
	Title      string  `json:"title" binding:"required"`
	Type       string  `json:"type"`
	Location   string  `json:"location"`
	Status     string  `json:"status"`
	ImageURL   string  `json:"imageUrl"`
	ISBN       string  `json:"isbn"`
	Reviews    *string `json:"reviews,omitempty"`
	Likes      *int    `json:"likes,omitempty"`
	Registrant string  `json:"registrant"`
}

type LoanRequest struct {
	ID        string `json:"id,omitempty"`
	BookTitle string `json:"bookTitle"`
	UserName  string `json:"userName" binding:"required"`
}

type AddReviewRequest struct {
	ID       string `json:"id,omitempty"`
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment"`
	UserName string `json:"userName" binding:"required"`
}

type ReviewResponse struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt,omitempty"`
	Legacy    bool   `json:"legacy"`
}

type BookResponse struct {
	RowNumber  int              `json:"rowNumber"`
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Type       string           `json:"type"`
	Location   string           `json:"location"`
	Status     string           `json:"status"`
	OnLoan     bool             `json:"onLoan"`
	ImageURL   string           `json:"imageUrl"`
	ISBN       string           `json:"isbn"`
	Reviews    string           `json:"reviews"`
	ReviewList []ReviewResponse `json:"reviewList"`
	Likes      int              `json:"likes"`
	Registrant string           `json:"registrant"`
}
