package tablestore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory はプロセス内だけのストア。テストと memory バックエンド用。
type Memory struct {
	mu     sync.RWMutex
	tables map[string][][]any // [0] がヘッダー行
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string][][]any)}
}

func (m *Memory) table(name string) ([][]any, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

func (m *Memory) RowCount(_ context.Context, table string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, err := m.table(table)
	if err != nil {
		return 0, err
	}
	return len(t), nil
}

func (m *Memory) ColumnCount(_ context.Context, table string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, err := m.table(table)
	if err != nil {
		return 0, err
	}
	if len(t) == 0 {
		return 0, nil
	}
	return len(t[0]), nil
}

func (m *Memory) ReadRange(_ context.Context, table string, rowStart, rowCount, colCount int) ([][]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	if err := checkRange(rowStart, rowCount, len(t)); err != nil {
		return nil, err
	}
	out := make([][]any, 0, rowCount)
	for r := rowStart; r < rowStart+rowCount; r++ {
		out = append(out, padRow(t[r-1], colCount))
	}
	return out, nil
}

func (m *Memory) WriteRow(_ context.Context, table string, row int, values []any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(table)
	if err != nil {
		return err
	}
	if err := checkRange(row, 1, len(t)); err != nil {
		return err
	}
	cur := t[row-1]
	if len(cur) < len(values) {
		cur = padRow(cur, len(values))
	}
	copy(cur, values)
	t[row-1] = cur
	return nil
}

func (m *Memory) WriteCell(_ context.Context, table string, row, col int, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(table)
	if err != nil {
		return err
	}
	if err := checkRange(row, 1, len(t)); err != nil {
		return err
	}
	if col < 1 {
		return fmt.Errorf("tablestore: invalid column %d", col)
	}
	cur := t[row-1]
	if len(cur) < col {
		cur = padRow(cur, col)
	}
	cur[col-1] = value
	t[row-1] = cur
	return nil
}

func (m *Memory) AppendRow(_ context.Context, table string, values []any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(table)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	copy(row, values)
	m.tables[table] = append(t, row)
	return nil
}

func (m *Memory) DeleteRow(_ context.Context, table string, row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(table)
	if err != nil {
		return err
	}
	if row < 2 {
		return fmt.Errorf("%w: header row cannot be deleted", ErrRowOutOfRange)
	}
	if err := checkRange(row, 1, len(t)); err != nil {
		return err
	}
	m.tables[table] = append(t[:row-1], t[row:]...)
	return nil
}

func (m *Memory) EnsureTable(_ context.Context, table string, headers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok || len(t) == 0 {
		m.tables[table] = [][]any{headerCells(headers)}
		return nil
	}
	t[0] = headerCells(headers)
	return nil
}

func (m *Memory) Tables(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.tables))
	for n := range m.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
