package tablestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	json "github.com/goccy/go-json"

	"portal-backend/internal/platform/db"
)

// SQL はシートを2テーブル（ヘッダーと行）に載せる。MySQL / SQLite 両対応の素のSQLのみ使う。
type SQL struct {
	db *sql.DB
}

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS sheet_headers (
		sheet_name VARCHAR(191) NOT NULL PRIMARY KEY,
		headers    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sheet_rows (
		sheet_name VARCHAR(191) NOT NULL,
		row_no     INTEGER NOT NULL,
		cells      MEDIUMTEXT NOT NULL,
		PRIMARY KEY (sheet_name, row_no)
	)`,
}

func NewSQL(ctx context.Context, conn *sql.DB) (*SQL, error) {
	for _, q := range schemaDDL {
		if _, err := conn.ExecContext(ctx, q); err != nil {
			return nil, fmt.Errorf("スキーマ作成に失敗: %w", err)
		}
	}
	return &SQL{db: conn}, nil
}

// 日付はJSONに載せると文字列に化けるので印を付けて保存する
type dateCell struct {
	T time.Time `json:"$date"`
}

func encodeCells(values []any) (string, error) {
	enc := make([]any, len(values))
	for i, v := range values {
		if t, ok := v.(time.Time); ok {
			enc[i] = dateCell{T: t}
			continue
		}
		enc[i] = v
	}
	b, err := json.Marshal(enc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeCells(s string) ([]any, error) {
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	for i, v := range raw {
		switch x := v.(type) {
		case float64:
			if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
				raw[i] = int64(x)
			}
		case map[string]any:
			if ts, ok := x["$date"].(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
					raw[i] = t
				}
			}
		case nil:
			raw[i] = ""
		}
	}
	return raw, nil
}

func (s *SQL) headers(ctx context.Context, q db.DBTX, table string) ([]any, error) {
	var h string
	err := q.QueryRowContext(ctx, `SELECT headers FROM sheet_headers WHERE sheet_name = ?`, table).Scan(&h)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	if err != nil {
		return nil, err
	}
	return decodeCells(h)
}

func (s *SQL) count(ctx context.Context, q db.DBTX, table string) (int, error) {
	if _, err := s.headers(ctx, q, table); err != nil {
		return 0, err
	}
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheet_rows WHERE sheet_name = ?`, table).Scan(&n); err != nil {
		return 0, err
	}
	return n + 1, nil
}

func (s *SQL) RowCount(ctx context.Context, table string) (int, error) {
	return s.count(ctx, s.db, table)
}

func (s *SQL) ColumnCount(ctx context.Context, table string) (int, error) {
	h, err := s.headers(ctx, s.db, table)
	if err != nil {
		return 0, err
	}
	return len(h), nil
}

func (s *SQL) ReadRange(ctx context.Context, table string, rowStart, rowCount, colCount int) ([][]any, error) {
	last, err := s.count(ctx, s.db, table)
	if err != nil {
		return nil, err
	}
	if err := checkRange(rowStart, rowCount, last); err != nil {
		return nil, err
	}

	out := make([][]any, 0, rowCount)
	if rowStart == 1 {
		h, err := s.headers(ctx, s.db, table)
		if err != nil {
			return nil, err
		}
		out = append(out, padRow(h, colCount))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT cells FROM sheet_rows WHERE sheet_name = ? AND row_no BETWEEN ? AND ? ORDER BY row_no`,
		table, rowStart, rowStart+rowCount-1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cells, err := decodeCells(c)
		if err != nil {
			return nil, err
		}
		out = append(out, padRow(cells, colCount))
	}
	return out, rows.Err()
}

func (s *SQL) WriteRow(ctx context.Context, table string, row int, values []any) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return s.merge(ctx, tx, table, row, func(cur []any) []any {
			if len(cur) < len(values) {
				cur = padRow(cur, len(values))
			}
			copy(cur, values)
			return cur
		})
	})
}

func (s *SQL) WriteCell(ctx context.Context, table string, row, col int, value any) error {
	if col < 1 {
		return fmt.Errorf("tablestore: invalid column %d", col)
	}
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return s.merge(ctx, tx, table, row, func(cur []any) []any {
			if len(cur) < col {
				cur = padRow(cur, col)
			}
			cur[col-1] = value
			return cur
		})
	})
}

// merge は1行を読み出して fn で書き換え、書き戻す。row=1 はヘッダー。
func (s *SQL) merge(ctx context.Context, tx db.DBTX, table string, row int, fn func([]any) []any) error {
	last, err := s.count(ctx, tx, table)
	if err != nil {
		return err
	}
	if err := checkRange(row, 1, last); err != nil {
		return err
	}

	if row == 1 {
		h, err := s.headers(ctx, tx, table)
		if err != nil {
			return err
		}
		enc, err := encodeCells(fn(h))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE sheet_headers SET headers = ? WHERE sheet_name = ?`, enc, table)
		return err
	}

	var c string
	if err := tx.QueryRowContext(ctx,
		`SELECT cells FROM sheet_rows WHERE sheet_name = ? AND row_no = ?`, table, row).Scan(&c); err != nil {
		return err
	}
	cur, err := decodeCells(c)
	if err != nil {
		return err
	}
	enc, err := encodeCells(fn(cur))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE sheet_rows SET cells = ? WHERE sheet_name = ? AND row_no = ?`, enc, table, row)
	return err
}

func (s *SQL) AppendRow(ctx context.Context, table string, values []any) error {
	enc, err := encodeCells(values)
	if err != nil {
		return err
	}
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		last, err := s.count(ctx, tx, table)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (sheet_name, row_no, cells) VALUES (?, ?, ?)`, table, last+1, enc)
		return err
	})
}

// DeleteRow は行を消して以降の行番号を1つずつ詰める。
func (s *SQL) DeleteRow(ctx context.Context, table string, row int) error {
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		last, err := s.count(ctx, tx, table)
		if err != nil {
			return err
		}
		if row < 2 {
			return fmt.Errorf("%w: header row cannot be deleted", ErrRowOutOfRange)
		}
		if err := checkRange(row, 1, last); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM sheet_rows WHERE sheet_name = ? AND row_no = ?`, table, row); err != nil {
			return err
		}
		// 主キーがあるので一度負に退避してから詰める（更新順に依存しない）
		if _, err := tx.ExecContext(ctx,
			`UPDATE sheet_rows SET row_no = -row_no WHERE sheet_name = ? AND row_no > ?`, table, row); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE sheet_rows SET row_no = -row_no - 1 WHERE sheet_name = ? AND row_no < 0`, table)
		return err
	})
}

func (s *SQL) EnsureTable(ctx context.Context, table string, headers []string) error {
	enc, err := encodeCells(headerCells(headers))
	if err != nil {
		return err
	}
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		res, err := tx.ExecContext(ctx, `UPDATE sheet_headers SET headers = ? WHERE sheet_name = ?`, enc, table)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return nil
		}
		// MySQL は値が同じだと RowsAffected=0 を返すので存在確認してから入れる
		var exists int
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sheet_headers WHERE sheet_name = ?`, table).Scan(&exists)
		if err != nil || exists > 0 {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO sheet_headers (sheet_name, headers) VALUES (?, ?)`, table, enc)
		return err
	})
}

func (s *SQL) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sheet_name FROM sheet_headers ORDER BY sheet_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
