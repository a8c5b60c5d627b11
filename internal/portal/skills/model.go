package skills

import "portal-backend/internal/platform/sheetdb"

const DefaultStatus = "募集中"

var Schema = sheetdb.Schema{
	Name:    "スキル管理",
	Columns: []string{"氏名", "部署・役職", "得意スキル", "勉強中・興味", "ステータス", "SlackID", "画像URL", "自己紹介", "MBTI"},
}

const colStatus = 5

type Skill struct {
	RowNumber int
	ID        string
	Name      string
	Dept      string
	Skills    string // カンマ区切り
	Studying  string // カンマ区切り
	Status    string
	SlackID   string
	PhotoURL  string // URL か data:image/...
	Comment   string
	MBTI      string
}

func fromRow(r sheetdb.Row) Skill {
	return Skill{
		RowNumber: r.RowNumber,
		ID:        r.ID,
		Name:      r.Cell(1),
		Dept:      r.Cell(2),
		Skills:    r.Cell(3),
		Studying:  r.Cell(4),
		Status:    r.Cell(colStatus),
		SlackID:   r.Cell(6),
		PhotoURL:  r.Cell(7),
		Comment:   r.Cell(8),
		MBTI:      r.Cell(9),
	}
}

func (s Skill) values() []any {
	return []any{s.Name, s.Dept, s.Skills, s.Studying, s.Status, s.SlackID, s.PhotoURL, s.Comment, s.MBTI}
}

func (s Skill) toDTO() SkillResponse {
	return SkillResponse{
		RowNumber: s.RowNumber,
		ID:        s.ID,
		Name:      s.Name,
		Dept:      s.Dept,
		Skills:    s.Skills,
		Studying:  s.Studying,
		Status:    s.Status,
		SlackID:   s.SlackID,
		PhotoURL:  s.PhotoURL,
		Comment:   s.Comment,
		MBTI:      s.MBTI,
	}
}
