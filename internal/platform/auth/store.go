package auth

import (
	"context"
	"strings"
	"time"

	"portal-backend/internal/platform/sheetdb"
)

type Account struct {
	ID           string
	PasswordHash string
	Role         string
	IsDisabled   bool
	CreatedAt    string
}

type AccountStore interface {
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Delete(ctx context.Context, id string) (int64, error)
	UpdateID(ctx context.Context, oldID, newID string) (int64, error)
}

// アカウントも他の機能と同じくシートに置く
var AccountSchema = sheetdb.Schema{
	Name:     "アカウント",
	Columns:  []string{"ログインID", "パスワードハッシュ", "ロール", "無効", "作成日時"},
	Internal: true,
}

const (
	colLoginID  = 1
	colDisabled = 4
)

type Store struct {
	db  *sheetdb.Engine
	now func() time.Time
}

func NewStore(db *sheetdb.Engine) AccountStore {
	db.Register(AccountSchema)
	return &Store{db: db, now: time.Now}
}

func toAccount(r sheetdb.Row) *Account {
	return &Account{
		ID:           r.Cell(colLoginID),
		PasswordHash: r.Cell(2),
		Role:         r.Cell(3),
		IsDisabled:   isTrue(r.Cell(colDisabled)),
		CreatedAt:    r.Cell(5),
	}
}

func isTrue(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE", "1", "YES":
		return true
	}
	return false
}

func find(rows []sheetdb.Row, id string) (sheetdb.Row, bool) {
	for _, r := range rows {
		if r.Cell(colLoginID) == id {
			return r, true
		}
	}
	return sheetdb.Row{}, false
}

func (s *Store) GetByID(ctx context.Context, id string) (*Account, error) {
	rows, err := s.db.List(ctx, AccountSchema.Name)
	if err != nil {
		return nil, err
	}
	r, ok := find(rows, id)
	if !ok {
		return nil, nil
	}
	return toAccount(r), nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	return s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		rows, err := tx.Rows(AccountSchema.Name)
		if err != nil {
			return err
		}
		if _, ok := find(rows, a.ID); ok {
			return ErrAlreadyExists
		}
		_, err = tx.Put(AccountSchema.Name, sheetdb.Key{}, []any{
			a.ID, a.PasswordHash, a.Role, "FALSE", s.now().Format(time.RFC3339),
		})
		return err
	})
}

func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	var n int64
	err := s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		rows, err := tx.Rows(AccountSchema.Name)
		if err != nil {
			return err
		}
		r, ok := find(rows, id)
		if !ok {
			return nil
		}
		if err := tx.Remove(AccountSchema.Name, sheetdb.Key{RowNumber: r.RowNumber, ID: r.ID}); err != nil {
			return err
		}
		n = 1
		return nil
	})
	return n, err
}

func (s *Store) UpdateID(ctx context.Context, oldID, newID string) (int64, error) {
	var n int64
	err := s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		rows, err := tx.Rows(AccountSchema.Name)
		if err != nil {
			return err
		}
		if _, taken := find(rows, newID); taken {
			return ErrAlreadyExists
		}
		r, ok := find(rows, oldID)
		if !ok {
			return nil
		}
		if err := tx.SetCell(AccountSchema.Name, sheetdb.Key{RowNumber: r.RowNumber, ID: r.ID}, colLoginID, newID); err != nil {
			return err
		}
		n = 1
		return nil
	})
	return n, err
}
