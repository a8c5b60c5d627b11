// Package sheetdb はシートを行の集まりとして扱う汎用 CRUD。
// 全機能がここを通してストアに触る。
package sheetdb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"portal-backend/internal/platform/lock"
	"portal-backend/internal/platform/tablestore"
)

const DateLayout = "2006-01-02"

var (
	ErrReadFailed   = errors.New("データの読み込みに失敗しました。再読み込みしてください。")
	ErrBusy         = errors.New("sheetdb: table is busy, try again")
	ErrRowNotFound  = errors.New("sheetdb: row not found")
	ErrStaleRow     = errors.New("sheetdb: row was moved or deleted")
	ErrUnknownTable = errors.New("sheetdb: table is not registered")
	ErrTooManyCells = errors.New("sheetdb: more cells than columns")
	ErrBadKey       = errors.New("sheetdb: row must be an integer >= 2")
)

type Options struct {
	Location  *time.Location
	ReadWait  time.Duration
	WriteWait time.Duration
	IDs       IDGen
	Logger    *zap.Logger
}

type Engine struct {
	store tablestore.TableStore
	lock  *lock.Advisory
	loc   *time.Location
	ids   IDGen
	log   *zap.Logger

	readWait  time.Duration
	writeWait time.Duration

	mu      sync.RWMutex
	schemas map[string]Schema
	order   []string
}

func New(store tablestore.TableStore, l *lock.Advisory, opt Options) *Engine {
	if opt.Location == nil {
		opt.Location = time.UTC
	}
	if opt.ReadWait <= 0 {
		opt.ReadWait = 10 * time.Second
	}
	if opt.WriteWait <= 0 {
		opt.WriteWait = 5 * time.Second
	}
	if opt.IDs == nil {
		opt.IDs = NewULIDGen(nil)
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if l == nil {
		l = lock.New()
	}
	return &Engine{
		store:     store,
		lock:      l,
		loc:       opt.Location,
		ids:       opt.IDs,
		log:       opt.Logger,
		readWait:  opt.ReadWait,
		writeWait: opt.WriteWait,
		schemas:   make(map[string]Schema),
	}
}

// Register はシートの列定義を登録する（同名は上書き）。
func (e *Engine) Register(s Schema) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.schemas[s.Name]; !ok {
		e.order = append(e.order, s.Name)
	}
	e.schemas[s.Name] = s
}

func (e *Engine) Schema(table string) (Schema, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.schemas[table]
	return s, ok
}

// Schemas は登録順。
func (e *Engine) Schemas() []Schema {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Schema, 0, len(e.order))
	for _, n := range e.order {
		out = append(out, e.schemas[n])
	}
	return out
}

func (e *Engine) schema(table string) (Schema, error) {
	s, ok := e.Schema(table)
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return s, nil
}

// List は全データ行を返す。シートが無い・ヘッダーだけなら空。
func (e *Engine) List(ctx context.Context, table string) ([]Row, error) {
	release, err := e.lock.Acquire(ctx, e.readWait)
	if err != nil {
		e.log.Warn("read lock timeout", zap.String("table", table), zap.Error(err))
		return nil, fmt.Errorf("%w (%v)", ErrReadFailed, err)
	}
	defer release()

	rows, err := e.tx(ctx).Rows(table)
	if err != nil {
		if errors.Is(err, ErrUnknownTable) {
			return nil, err
		}
		e.log.Error("read failed", zap.String("table", table), zap.Error(err))
		return nil, fmt.Errorf("%w (%v)", ErrReadFailed, err)
	}
	return rows, nil
}

// Save は key が空なら末尾に追加、そうでなければその行を上書きする。
func (e *Engine) Save(ctx context.Context, table string, key Key, values []any) (Row, error) {
	var out Row
	err := e.Update(ctx, func(tx *Tx) error {
		var err error
		out, err = tx.Put(table, key, values)
		return err
	})
	return out, err
}

// Delete は1行消す。以降の行は1つずつ繰り上がる。
func (e *Engine) Delete(ctx context.Context, table string, key Key) error {
	return e.Update(ctx, func(tx *Tx) error {
		return tx.Remove(table, key)
	})
}

// Update は書き込みロックを取ったまま fn を実行する。
// 読んでから書く処理はすべてここで行う。
func (e *Engine) Update(ctx context.Context, fn func(tx *Tx) error) error {
	release, err := e.lock.Acquire(ctx, e.writeWait)
	if err != nil {
		e.log.Warn("write lock timeout", zap.Error(err))
		if errors.Is(err, lock.ErrTimeout) {
			return ErrBusy
		}
		return err
	}
	defer release()
	return fn(e.tx(ctx))
}

// Init は登録済みの全シートを作成し、ヘッダーを書き直す。
func (e *Engine) Init(ctx context.Context) ([]string, error) {
	var done []string
	err := e.Update(ctx, func(tx *Tx) error {
		for _, s := range e.Schemas() {
			if err := e.store.EnsureTable(ctx, s.Name, s.Headers()); err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}
			done = append(done, s.Name)
		}
		return nil
	})
	if err == nil {
		e.log.Info("sheets initialized", zap.Strings("tables", done))
	}
	return done, err
}

func (e *Engine) tx(ctx context.Context) *Tx {
	return &Tx{ctx: ctx, e: e}
}

// cellString はセル値を文字列にそろえる。日付は設定タイムゾーンの yyyy-MM-dd。
func (e *Engine) cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.In(e.loc).Format(DateLayout)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(x)
	}
}
