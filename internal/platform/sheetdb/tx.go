package sheetdb

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"portal-backend/internal/platform/tablestore"
)

// Tx はロック保持中の操作口。Engine.Update の中だけで使う。
type Tx struct {
	ctx context.Context
	e   *Engine
}

func (tx *Tx) Context() context.Context { return tx.ctx }

// Rows はヘッダーを除く全行。シートが無ければ空。
func (tx *Tx) Rows(table string) ([]Row, error) {
	s, err := tx.e.schema(table)
	if err != nil {
		return nil, err
	}
	last, err := tx.e.store.RowCount(tx.ctx, table)
	if errors.Is(err, tablestore.ErrTableNotFound) {
		return []Row{}, nil
	}
	if err != nil {
		return nil, err
	}
	if last < 2 {
		return []Row{}, nil
	}

	grid, err := tx.e.store.ReadRange(tx.ctx, table, 2, last-1, s.width()+1)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(grid))
	for i, cells := range grid {
		out = append(out, tx.e.toRow(s, i+2, cells))
	}
	return out, nil
}

// Get は key の行を読む。
func (tx *Tx) Get(table string, key Key) (Row, error) {
	s, err := tx.e.schema(table)
	if err != nil {
		return Row{}, err
	}
	n, err := tx.resolve(s, key)
	if err != nil {
		return Row{}, err
	}
	grid, err := tx.e.store.ReadRange(tx.ctx, table, n, 1, s.width()+1)
	if err != nil {
		return Row{}, err
	}
	return tx.e.toRow(s, n, grid[0]), nil
}

// Put は key が空なら追加、あれば上書き。ID 列が空の古い行にはここで ID を振る。
func (tx *Tx) Put(table string, key Key, values []any) (Row, error) {
	s, err := tx.e.schema(table)
	if err != nil {
		return Row{}, err
	}
	if len(values) > s.width() {
		return Row{}, fmt.Errorf("%w: %s has %d columns, got %d", ErrTooManyCells, table, s.width(), len(values))
	}

	if key.IsZero() {
		id, err := tx.e.ids.New()
		if err != nil {
			return Row{}, err
		}
		last, err := tx.e.store.RowCount(tx.ctx, table)
		if errors.Is(err, tablestore.ErrTableNotFound) {
			// 初期化前のシートは最初の登録時に作る
			if err = tx.e.store.EnsureTable(tx.ctx, table, s.Headers()); err == nil {
				last = 1
			}
		}
		if err != nil {
			return Row{}, err
		}
		cells := tx.e.layout(s, values, id)
		if err := tx.e.store.AppendRow(tx.ctx, table, cells); err != nil {
			return Row{}, err
		}
		tx.e.log.Debug("row appended", zap.String("table", table), zap.Int("row", last+1), zap.String("id", id))
		return tx.e.toRow(s, last+1, cells), nil
	}

	n, err := tx.resolve(s, key)
	if err != nil {
		return Row{}, err
	}
	id := key.ID
	if id == "" {
		cur, err := tx.e.store.ReadRange(tx.ctx, table, n, 1, s.width()+1)
		if err != nil {
			return Row{}, err
		}
		id = tx.e.cellString(cur[0][s.width()])
	}
	if id == "" {
		if id, err = tx.e.ids.New(); err != nil {
			return Row{}, err
		}
	}
	cells := tx.e.layout(s, values, id)
	if err := tx.e.store.WriteRow(tx.ctx, table, n, cells); err != nil {
		return Row{}, err
	}
	return tx.e.toRow(s, n, cells), nil
}

// SetCell は1セルだけ書く。col は表示列の 1 始まり。
func (tx *Tx) SetCell(table string, key Key, col int, value any) error {
	s, err := tx.e.schema(table)
	if err != nil {
		return err
	}
	if col < 1 || col > s.width() {
		return fmt.Errorf("%w: column %d of %s", ErrTooManyCells, col, table)
	}
	n, err := tx.resolve(s, key)
	if err != nil {
		return err
	}
	return tx.e.store.WriteCell(tx.ctx, table, n, col, value)
}

// Remove は1行消す。
func (tx *Tx) Remove(table string, key Key) error {
	s, err := tx.e.schema(table)
	if err != nil {
		return err
	}
	n, err := tx.resolve(s, key)
	if err != nil {
		return err
	}
	if err := tx.e.store.DeleteRow(tx.ctx, table, n); err != nil {
		return err
	}
	tx.e.log.Debug("row deleted", zap.String("table", table), zap.Int("row", n))
	return nil
}

// resolve は key を現在の行番号に直す。
// ID 付きの key は、その位置の ID が一致しなければ全行から探し直す。
func (tx *Tx) resolve(s Schema, key Key) (int, error) {
	if key.IsZero() {
		return 0, ErrBadKey
	}
	last, err := tx.e.store.RowCount(tx.ctx, s.Name)
	if errors.Is(err, tablestore.ErrTableNotFound) {
		return 0, fmt.Errorf("%w: %s", ErrRowNotFound, s.Name)
	}
	if err != nil {
		return 0, err
	}

	inRange := key.RowNumber >= 2 && key.RowNumber <= last
	if key.ID == "" {
		if !inRange {
			return 0, fmt.Errorf("%w: %s row %d", ErrRowNotFound, s.Name, key.RowNumber)
		}
		return key.RowNumber, nil
	}

	idCol := s.width() + 1
	if inRange {
		cur, err := tx.e.store.ReadRange(tx.ctx, s.Name, key.RowNumber, 1, idCol)
		if err != nil {
			return 0, err
		}
		if tx.e.cellString(cur[0][idCol-1]) == key.ID {
			return key.RowNumber, nil
		}
	}
	if last < 2 {
		return 0, fmt.Errorf("%w: %s", ErrStaleRow, key)
	}
	grid, err := tx.e.store.ReadRange(tx.ctx, s.Name, 2, last-1, idCol)
	if err != nil {
		return 0, err
	}
	for i, cells := range grid {
		if tx.e.cellString(cells[idCol-1]) == key.ID {
			if key.RowNumber != 0 {
				tx.e.log.Info("row moved", zap.String("table", s.Name), zap.Int("from", key.RowNumber), zap.Int("to", i+2))
			}
			return i + 2, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrStaleRow, key)
}

// layout は表示列の幅まで空文字で埋め、末尾に ID を付ける。
func (e *Engine) layout(s Schema, values []any, id string) []any {
	cells := make([]any, s.width()+1)
	for i := 0; i < s.width(); i++ {
		if i < len(values) && values[i] != nil {
			cells[i] = values[i]
		} else {
			cells[i] = ""
		}
	}
	cells[s.width()] = id
	return cells
}

func (e *Engine) toRow(s Schema, n int, cells []any) Row {
	data := make([]string, s.width())
	for i := range data {
		if i < len(cells) {
			data[i] = e.cellString(cells[i])
		}
	}
	var id string
	if len(cells) > s.width() {
		id = e.cellString(cells[s.width()])
	}
	return Row{RowNumber: n, ID: id, Data: data}
}
