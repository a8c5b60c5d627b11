package incidents

type SaveIncidentRequest struct {
	ID       string `json:"id,omitempty"`
	Date     string `json:"date"`
	Type     string `json:"type"`
	Title    string `json:"title" binding:"required"`
	Fact     string `json:"fact"`
	Cause    string `json:"cause"`
	Measure  string `json:"measure"`
	Status   string `json:"status"`
	Kaizen   string `json:"kaizen"`
	Reporter string `json:"reporter"`
}

type IncidentResponse struct {
	RowNumber int    `json:"rowNumber"`
	ID        string `json:"id"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Fact      string `json:"fact"`
	Cause     string `json:"cause"`
	Measure   string `json:"measure"`
	Status    string `json:"status"`
	Kaizen    string `json:"kaizen"`
	Reporter  string `json:"reporter"`
}
