package equipment

import "portal-backend/internal/platform/sheetdb"

var Schema = sheetdb.Schema{
	Name:    "PC管理",
	Columns: []string{"機材名", "所持者", "貸出日", "備考"},
}

type Equipment struct {
	RowNumber int
	ID        string
	PCName    string
	Holder    string
	Date      string // yyyy-MM-dd
	Note      string
}

func fromRow(r sheetdb.Row) Equipment {
	return Equipment{
		RowNumber: r.RowNumber,
		ID:        r.ID,
		PCName:    r.Cell(1),
		Holder:    r.Cell(2),
		Date:      r.Cell(3),
		Note:      r.Cell(4),
	}
}

func (e Equipment) values() []any {
	return []any{e.PCName, e.Holder, e.Date, e.Note}
}

func (e Equipment) toDTO() EquipmentResponse {
	return EquipmentResponse{
		RowNumber: e.RowNumber,
		ID:        e.ID,
		PCName:    e.PCName,
		Holder:    e.Holder,
		Date:      e.Date,
		Note:      e.Note,
	}
}
