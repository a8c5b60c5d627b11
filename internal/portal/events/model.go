package events

import (
	"strconv"
	"strings"

	"portal-backend/internal/platform/sheetdb"
)

var Schema = sheetdb.Schema{
	Name:    "イベント履歴",
	Columns: []string{"開催日", "イベント名", "場所", "参加人数", "アルバムURL", "サムネイルURL", "関連資料URL", "参加メンバー"},
}

const (
	colAlbum = 5
	colThumb = 6
)

type Event struct {
	RowNumber    int
	ID           string
	Date         string
	Name         string
	Location     string
	Count        string
	AlbumURL     string
	ThumbnailURL string
	DocURL       string
	Members      string // カンマ区切り
}

func fromRow(r sheetdb.Row) Event {
	return Event{
		RowNumber:    r.RowNumber,
		ID:           r.ID,
		Date:         r.Cell(1),
		Name:         r.Cell(2),
		Location:     r.Cell(3),
		Count:        r.Cell(4),
		AlbumURL:     r.Cell(colAlbum),
		ThumbnailURL: r.Cell(colThumb),
		DocURL:       r.Cell(7),
		Members:      r.Cell(8),
	}
}

func (e Event) values() []any {
	var count any = e.Count
	if n, err := strconv.ParseInt(strings.TrimSpace(e.Count), 10, 64); err == nil {
		count = n
	}
	return []any{e.Date, e.Name, e.Location, count, e.AlbumURL, e.ThumbnailURL, e.DocURL, e.Members}
}

func splitMembers(s string) []string {
	out := []string{}
	for _, m := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '、' }) {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func (e Event) toDTO() EventResponse {
	return EventResponse{
		RowNumber:    e.RowNumber,
		ID:           e.ID,
		Date:         e.Date,
		Name:         e.Name,
		Location:     e.Location,
		Count:        e.Count,
		AlbumURL:     e.AlbumURL,
		ThumbnailURL: e.ThumbnailURL,
		DocURL:       e.DocURL,
		Members:      e.Members,
		MemberList:   splitMembers(e.Members),
	}
}
