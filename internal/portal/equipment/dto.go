package equipment

type SaveEquipmentRequest struct {
	ID     string `json:"id,omitempty"`
	PCName string `json:"pcName" binding:"required"`
	Holder string `json:"holder"`
	Date   string `json:"date"`
	Note   string `json:"note"`
}

type EquipmentResponse struct {
	RowNumber int    `json:"rowNumber"`
	ID        string `json:"id"`
	PCName    string `json:"pcName"`
	Holder    string `json:"holder"`
	Date      string `json:"date"`
	Note      string `json:"note"`
}
