// Package tablestore はスプレッドシート（シート＝テーブル）の読み書き口。
// 行・列は 1 始まり、1 行目はヘッダー。
package tablestore

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrTableNotFound = errors.New("tablestore: table not found")
	ErrRowOutOfRange = errors.New("tablestore: row out of range")
)

// TableStore は外部のシートストレージ。
// セル値は string / int64 / float64 / bool / time.Time のいずれか。
type TableStore interface {
	RowCount(ctx context.Context, table string) (int, error)
	ColumnCount(ctx context.Context, table string) (int, error)
	ReadRange(ctx context.Context, table string, rowStart, rowCount, colCount int) ([][]any, error)
	WriteRow(ctx context.Context, table string, row int, values []any) error
	WriteCell(ctx context.Context, table string, row, col int, value any) error
	AppendRow(ctx context.Context, table string, values []any) error
	DeleteRow(ctx context.Context, table string, row int) error
	EnsureTable(ctx context.Context, table string, headers []string) error
	Tables(ctx context.Context) ([]string, error)
}

func checkRange(rowStart, rowCount, last int) error {
	if rowStart < 1 || rowCount < 0 || rowStart+rowCount-1 > last {
		return fmt.Errorf("%w: rows %d..%d (last=%d)", ErrRowOutOfRange, rowStart, rowStart+rowCount-1, last)
	}
	return nil
}

// padRow は colCount 幅に揃える（足りないセルは空文字）。
func padRow(src []any, colCount int) []any {
	out := make([]any, colCount)
	for i := range out {
		if i < len(src) && src[i] != nil {
			out[i] = src[i]
		} else {
			out[i] = ""
		}
	}
	return out
}

func headerCells(headers []string) []any {
	out := make([]any, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}
