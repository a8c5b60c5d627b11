package incidents

import "portal-backend/internal/platform/sheetdb"

// ステータスは 未対応 / 対応中 / 解決済。値の検証はしない。
const (
	StatusOpen       = "未対応"
	StatusInProgress = "対応中"
	StatusResolved   = "解決済"
)

var Schema = sheetdb.Schema{
	Name:    "ヒヤリハット",
	Columns: []string{"発生日", "種別", "件名", "事実", "原因", "対策", "ステータス", "改善効果(Before/After)", "報告者"},
}

type Incident struct {
	RowNumber int
	ID        string
	Date      string
	Type      string // クレーム / ヒヤリハット
	Title     string
	Fact      string
	Cause     string
	Measure   string
	Status    string
	Kaizen    string
	Reporter  string
}

func fromRow(r sheetdb.Row) Incident {
	return Incident{
		RowNumber: r.RowNumber,
		ID:        r.ID,
		Date:      r.Cell(1),
		Type:      r.Cell(2),
		Title:     r.Cell(3),
		Fact:      r.Cell(4),
		Cause:     r.Cell(5),
		Measure:   r.Cell(6),
		Status:    r.Cell(7),
		Kaizen:    r.Cell(8),
		Reporter:  r.Cell(9),
	}
}

func (i Incident) values() []any {
	return []any{i.Date, i.Type, i.Title, i.Fact, i.Cause, i.Measure, i.Status, i.Kaizen, i.Reporter}
}

func (i Incident) toDTO() IncidentResponse {
	return IncidentResponse{
		RowNumber: i.RowNumber,
		ID:        i.ID,
		Date:      i.Date,
		Type:      i.Type,
		Title:     i.Title,
		Fact:      i.Fact,
		Cause:     i.Cause,
		Measure:   i.Measure,
		Status:    i.Status,
		Kaizen:    i.Kaizen,
		Reporter:  i.Reporter,
	}
}
