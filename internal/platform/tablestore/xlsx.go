package tablestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSX はブック1ファイルをDBとして扱う。更新のたびにファイルへ保存する。
type XLSX struct {
	mu   sync.Mutex
	path string
	f    *excelize.File
	loc  *time.Location

	dateStyles map[int]bool // スタイルID → 日付書式か
}

// OpenXLSX はファイルがあれば開き、無ければ新規ブックを作る（保存は最初の更新時）。
// loc は日付セル（シリアル値）をどのタイムゾーンの日付として読むか。nil なら UTC。
func OpenXLSX(path string, loc *time.Location) (*XLSX, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("ブックを開けません: %w", err)
		}
		f = excelize.NewFile()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &XLSX{path: path, f: f, loc: loc, dateStyles: make(map[int]bool)}, nil
}

func (x *XLSX) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.f.Close()
}

func (x *XLSX) exists(table string) bool {
	idx, err := x.f.GetSheetIndex(table)
	return err == nil && idx >= 0
}

func (x *XLSX) rows(table string) ([][]string, error) {
	if !x.exists(table) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	return x.f.GetRows(table)
}

func (x *XLSX) RowCount(_ context.Context, table string) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	rows, err := x.rows(table)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (x *XLSX) ColumnCount(_ context.Context, table string) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	rows, err := x.rows(table)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows[0]), nil
}

func (x *XLSX) ReadRange(_ context.Context, table string, rowStart, rowCount, colCount int) ([][]any, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	rows, err := x.rows(table)
	if err != nil {
		return nil, err
	}
	if err := checkRange(rowStart, rowCount, len(rows)); err != nil {
		return nil, err
	}
	// 表示文字列は書式次第で "Apr-24" などになるので、日付セルだけ生の値から読み直す
	raw, err := x.f.GetRows(table, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	out := make([][]any, 0, rowCount)
	for r := rowStart; r < rowStart+rowCount; r++ {
		src := rows[r-1]
		cells := make([]any, len(src))
		for i, v := range src {
			cells[i] = v
			if r-1 < len(raw) && i < len(raw[r-1]) {
				if t, ok := x.dateCell(table, r, i+1, raw[r-1][i]); ok {
					cells[i] = t
				}
			}
		}
		out = append(out, padRow(cells, colCount))
	}
	return out, nil
}

// dateCell は日付書式の数値セルを time.Time にする。
func (x *XLSX) dateCell(table string, row, col int, raw string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return time.Time{}, false
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return time.Time{}, false
	}
	styleID, err := x.f.GetCellStyle(table, cell)
	if err != nil || !x.isDateStyle(styleID) {
		return time.Time{}, false
	}
	props, _ := x.f.GetWorkbookProps()
	t, err := excelize.ExcelDateToTime(serial, props.Date1904 != nil && *props.Date1904)
	if err != nil {
		return time.Time{}, false
	}
	// シリアル値はタイムゾーンを持たない壁時計
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, x.loc), true
}

// 組み込み書式のうち日付を含むもの（時刻だけの 18-21, 45-47 は除く）
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

func (x *XLSX) isDateStyle(styleID int) bool {
	if v, ok := x.dateStyles[styleID]; ok {
		return v
	}
	v := false
	if st, err := x.f.GetStyle(styleID); err == nil && st != nil {
		if st.CustomNumFmt != nil {
			v = isDateFormatCode(*st.CustomNumFmt)
		} else {
			v = builtinDateFormats[st.NumFmt]
		}
	}
	x.dateStyles[styleID] = v
	return v
}

// isDateFormatCode は書式コードに年か日が含まれるかを見る。"..." と [...] は無視する。
func isDateFormatCode(code string) bool {
	inQuote, inBracket, escaped := false, false, false
	for _, r := range strings.ToLower(code) {
		switch {
		case escaped:
			escaped = false
		case inQuote:
			inQuote = r != '"'
		case inBracket:
			inBracket = r != ']'
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = true
		case r == '[':
			inBracket = true
		case r == 'y' || r == 'd':
			return true
		}
	}
	return false
}

func (x *XLSX) WriteRow(_ context.Context, table string, row int, values []any) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	rows, err := x.rows(table)
	if err != nil {
		return err
	}
	if err := checkRange(row, 1, len(rows)); err != nil {
		return err
	}
	if err := x.setRow(table, row, values); err != nil {
		return err
	}
	return x.save()
}

func (x *XLSX) WriteCell(_ context.Context, table string, row, col int, value any) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	rows, err := x.rows(table)
	if err != nil {
		return err
	}
	if err := checkRange(row, 1, len(rows)); err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := x.f.SetCellValue(table, cell, value); err != nil {
		return err
	}
	return x.save()
}

func (x *XLSX) AppendRow(_ context.Context, table string, values []any) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	rows, err := x.rows(table)
	if err != nil {
		return err
	}
	if err := x.setRow(table, len(rows)+1, values); err != nil {
		return err
	}
	return x.save()
}

func (x *XLSX) DeleteRow(_ context.Context, table string, row int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	rows, err := x.rows(table)
	if err != nil {
		return err
	}
	if row < 2 {
		return fmt.Errorf("%w: header row cannot be deleted", ErrRowOutOfRange)
	}
	if err := checkRange(row, 1, len(rows)); err != nil {
		return err
	}
	if err := x.f.RemoveRow(table, row); err != nil {
		return err
	}
	return x.save()
}

// EnsureTable はシートが無ければ作り、1行目にヘッダーを書いて装飾する。
func (x *XLSX) EnsureTable(_ context.Context, table string, headers []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if !x.exists(table) {
		// 新規ブックの空 Sheet1 はそのまま改名して使う
		list := x.f.GetSheetList()
		if len(list) == 1 && list[0] == defaultSheet && table != defaultSheet && x.isEmpty(defaultSheet) {
			if err := x.f.SetSheetName(defaultSheet, table); err != nil {
				return err
			}
		} else if _, err := x.f.NewSheet(table); err != nil {
			return fmt.Errorf("シート作成に失敗: %w", err)
		}
	}

	if err := x.setRow(table, 1, headerCells(headers)); err != nil {
		return err
	}

	style, err := x.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F3F3F3"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("ヘッダースタイル作成に失敗: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := x.f.SetCellStyle(table, "A1", last, style); err != nil {
		return err
	}
	return x.save()
}

func (x *XLSX) Tables(_ context.Context) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.f.GetSheetList(), nil
}

func (x *XLSX) isEmpty(sheet string) bool {
	rows, err := x.f.GetRows(sheet)
	return err == nil && len(rows) == 0
}

func (x *XLSX) setRow(table string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]any, len(values))
	copy(vals, values)
	return x.f.SetSheetRow(table, cell, &vals)
}

func (x *XLSX) save() error {
	if err := os.MkdirAll(filepath.Dir(x.path), 0o755); err != nil {
		return err
	}
	if err := x.f.SaveAs(x.path); err != nil {
		return fmt.Errorf("ブックの保存に失敗: %w", err)
	}
	return nil
}
