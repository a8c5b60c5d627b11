package books

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"portal-backend/internal/platform/sheetdb"
)

const (
	StatusAvailable = "貸出可"
	StatusOnLoan    = "貸出中"
)

var Schema = sheetdb.Schema{
	Name:    "図書管理",
	Columns: []string{"書籍名", "種類", "保管場所/URL", "所持者/状態", "画像URL", "ISBN", "レビュー", "いいね数", "登録者"},
}

const (
	colTitle   = 1
	colStatus  = 4
	colReviews = 7
	colLikes   = 8
)

type Book struct {
	RowNumber  int
	ID         string
	Title      string
	Type       string // 書籍 / PDF
	Location   string // 紙なら保管場所、PDF なら URL
	Status     string // "貸出可" or "貸出中: <名前>"
	ImageURL   string
	ISBN       string
	Reviews    string // 1行1件
	Likes      string
	Registrant string
}

// NewBook は入力から新しい行を組み立てる。レビューは空、いいねは 0。
func NewBook(in SaveBookRequest) Book {
	status := in.Status
	if status == "" {
		status = StatusAvailable
	}
	return Book{
		Title:      in.Title,
		Type:       in.Type,
		Location:   in.Location,
		Status:     status,
		ImageURL:   in.ImageURL,
		ISBN:       NormalizeISBN(in.ISBN),
		Registrant: in.Registrant,
		Likes:      "0",
	}
}

func fromRow(r sheetdb.Row) Book {
	return Book{
		RowNumber:  r.RowNumber,
		ID:         r.ID,
		Title:      r.Cell(colTitle),
		Type:       r.Cell(2),
		Location:   r.Cell(3),
		Status:     r.Cell(colStatus),
		ImageURL:   r.Cell(5),
		ISBN:       r.Cell(6),
		Reviews:    r.Cell(colReviews),
		Likes:      r.Cell(colLikes),
		Registrant: r.Cell(9),
	}
}

// Values はシートに書く並び。いいね数は数値で置ける時は数値にする。
func (b Book) Values() []any {
	return []any{b.Title, b.Type, b.Location, b.Status, b.ImageURL, b.ISBN, b.Reviews, likeCell(b.Likes), b.Registrant}
}

func likeCell(s string) any {
	if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return n
	}
	return s
}

// LikeCount は数値でなければ 0。
func LikeCount(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(f)
}

func IsOnLoan(status string) bool {
	return strings.Contains(status, StatusOnLoan)
}

// NormalizeISBN は全角を半角に寄せ、ハイフンと空白を除く。
func NormalizeISBN(s string) string {
	s = width.Fold.String(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t':
			return -1
		case 'x':
			return 'X'
		}
		return r
	}, s)
	return s
}

func (b Book) toDTO() BookResponse {
	reviews := ParseReviews(b.Reviews)
	list := make([]ReviewResponse, 0, len(reviews))
	for i, r := range reviews {
		list = append(list, r.toDTO(i))
	}
	return BookResponse{
		RowNumber:  b.RowNumber,
		ID:         b.ID,
		Title:      b.Title,
		Type:       b.Type,
		Location:   b.Location,
		Status:     b.Status,
		OnLoan:     IsOnLoan(b.Status),
		ImageURL:   b.ImageURL,
		ISBN:       b.ISBN,
		Reviews:    b.Reviews,
		ReviewList: list,
		Likes:      LikeCount(b.Likes),
		Registrant: b.Registrant,
	}
}
