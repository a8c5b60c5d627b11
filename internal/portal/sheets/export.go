// Package sheets はシート単位の管理操作（CSV 書き出し・初期化）。
package sheets

import (
	"bytes"
	"encoding/csv"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"portal-backend/internal/platform/sheetdb"
)

type Encoding string

const (
	EncodingUTF8     Encoding = "utf8"
	EncodingShiftJIS Encoding = "sjis" // Excel の「ANSI（CP932）」向け
)

const utf8BOM = "\ufeff"

// ParseEncoding は空なら utf8。
func ParseEncoding(s string) (Encoding, bool) {
	switch s {
	case "", "utf8", "utf-8":
		return EncodingUTF8, true
	case "sjis", "shift_jis", "cp932":
		return EncodingShiftJIS, true
	}
	return "", false
}

func (e Encoding) ContentType() string {
	if e == EncodingShiftJIS {
		return "text/csv; charset=Shift_JIS"
	}
	return "text/csv; charset=utf-8"
}

// writeCSV はヘッダー行＋データ行を書く。ID 列は出さない。
// Shift_JIS で表せない文字（絵文字など）は置き換える。
func writeCSV(s sheetdb.Schema, rows []sheetdb.Row, enc Encoding) ([]byte, error) {
	var b bytes.Buffer
	var out io.Writer = &b
	switch enc {
	case EncodingShiftJIS:
		out = transform.NewWriter(&b, encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()))
	default:
		b.WriteString(utf8BOM)
	}

	w := csv.NewWriter(out)
	if err := w.Write(s.Columns); err != nil {
		return nil, err
	}
	for _, r := range rows {
		record := make([]string, len(s.Columns))
		for i := range record {
			record[i] = r.Cell(i + 1)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if c, ok := out.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return nil, err
		}
	}
	return b.Bytes(), nil
}
