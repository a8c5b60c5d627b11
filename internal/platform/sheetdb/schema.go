package sheetdb

import (
	"fmt"
	"strconv"
	"strings"
)

// IDColumn は各シート末尾に置く非表示の安定ID列。
const IDColumn = "ID"

// Schema はシート名と表示列（ID列を除く）の並び。
// Internal なシート（アカウント等）は一覧・エクスポートに出さない。
type Schema struct {
	Name     string
	Columns  []string
	Internal bool
}

// Headers は ID 列込みのヘッダー行。
func (s Schema) Headers() []string {
	out := make([]string, 0, len(s.Columns)+1)
	out = append(out, s.Columns...)
	return append(out, IDColumn)
}

func (s Schema) width() int { return len(s.Columns) }

// Index は列名の 1 始まりの位置。無ければ 0。
func (s Schema) Index(column string) int {
	for i, c := range s.Columns {
		if c == column {
			return i + 1
		}
	}
	return 0
}

// Row はデータ行。RowNumber はヘッダーを 1 とした位置で、削除が起きるとずれる。
type Row struct {
	RowNumber int
	ID        string
	Data      []string
}

// Cell は 1 始まりの列の値。範囲外は空文字。
func (r Row) Cell(col int) string {
	if col < 1 || col > len(r.Data) {
		return ""
	}
	return r.Data[col-1]
}

// Key は行の指定。ID があれば位置より ID を優先して現在位置を引き直す。
type Key struct {
	RowNumber int
	ID        string
}

func (k Key) IsZero() bool { return k.RowNumber == 0 && k.ID == "" }

func (k Key) String() string {
	if k.ID == "" {
		return strconv.Itoa(k.RowNumber)
	}
	return fmt.Sprintf("%d(%s)", k.RowNumber, k.ID)
}

// ParseKey は URL の :row と任意の id から Key を作る。
func ParseKey(row, id string) (Key, error) {
	n, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil || n < 2 {
		return Key{}, ErrBadKey
	}
	return Key{RowNumber: n, ID: strings.TrimSpace(id)}, nil
}
