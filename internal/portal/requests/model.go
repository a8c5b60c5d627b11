package requests

import (
	"strconv"
	"strings"

	"portal-backend/internal/platform/sheetdb"
)

// StatusPending は保存のたびに入る固定値。
const StatusPending = "申請中"

var Schema = sheetdb.Schema{
	Name:    "リクエスト本",
	Columns: []string{"書籍名", "購入リンク", "申請者", "いいね数", "ステータス", "理由", "画像URL", "ISBN"},
}

const colLikes = 4

type Request struct {
	RowNumber int
	ID        string
	Title     string
	URL       string
	Requester string
	Likes     int
	Status    string
	Reason    string
	ImageURL  string
	ISBN      string
}

func fromRow(r sheetdb.Row) Request {
	return Request{
		RowNumber: r.RowNumber,
		ID:        r.ID,
		Title:     r.Cell(1),
		URL:       r.Cell(2),
		Requester: r.Cell(3),
		Likes:     likes(r.Cell(colLikes)),
		Status:    r.Cell(5),
		Reason:    r.Cell(6),
		ImageURL:  r.Cell(7),
		ISBN:      r.Cell(8),
	}
}

func (q Request) values() []any {
	return []any{q.Title, q.URL, q.Requester, int64(q.Likes), q.Status, q.Reason, q.ImageURL, q.ISBN}
}

// likes は空や数値でない値を 0 とみなす。
func likes(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f)
}

func (q Request) toDTO() RequestResponse {
	return RequestResponse{
		RowNumber: q.RowNumber,
		ID:        q.ID,
		Title:     q.Title,
		URL:       q.URL,
		Requester: q.Requester,
		Likes:     q.Likes,
		Status:    q.Status,
		Reason:    q.Reason,
		ImageURL:  q.ImageURL,
		ISBN:      q.ISBN,
	}
}
