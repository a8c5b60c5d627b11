package books

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"portal-backend/internal/notify"
	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/portal"
)

type Service struct {
	db       *sheetdb.Engine
	notifier notify.Notifier
	ids      sheetdb.IDGen
	now      func() time.Time
	log      *zap.Logger
}

func NewService(db *sheetdb.Engine, n notify.Notifier, log *zap.Logger) *Service {
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	db.Register(Schema)
	return &Service{db: db, notifier: n, ids: sheetdb.NewULIDGen(nil), now: time.Now, log: log}
}

func (s *Service) List(ctx context.Context) ([]Book, error) {
	rows, err := s.db.List(ctx, Schema.Name)
	if err != nil {
		return nil, portal.ToAPIError(err)
	}
	out := make([]Book, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

// Save: 編集時はレビューといいね数を読み直し、送られてこなかった方は既存値を残す。
func (s *Service) Save(ctx context.Context, key sheetdb.Key, in SaveBookRequest) (Book, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Book{}, apierr.ErrInvalid("title is required")
	}
	b := NewBook(in)

	var out Book
	err := s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		if !key.IsZero() {
			cur, err := tx.Get(Schema.Name, key)
			if err != nil {
				return err
			}
			b.Reviews = cur.Cell(colReviews)
			b.Likes = cur.Cell(colLikes)
			// 状態が送られてこない編集で貸出中を消さない
			if strings.TrimSpace(in.Status) == "" {
				b.Status = cur.Cell(colStatus)
			}
		}
		if in.Reviews != nil {
			b.Reviews = *in.Reviews
		}
		if in.Likes != nil {
			b.Likes = strconv.Itoa(*in.Likes)
		}
		row, err := tx.Put(Schema.Name, key, b.Values())
		if err != nil {
			return err
		}
		out = fromRow(row)
		return nil
	})
	if err != nil {
		return Book{}, portal.ToAPIError(err)
	}
	return out, nil
}

// Borrow は貸出中でなければ状態を「貸出中: <名前>」にして通知する。
// 既に貸出中なら何も書かず ALREADY_BORROWED。
func (s *Service) Borrow(ctx context.Context, key sheetdb.Key, bookTitle, userName string) (string, error) {
	if strings.TrimSpace(userName) == "" {
		return "", apierr.ErrInvalid("userName is required")
	}
	result := portal.ResultSuccess
	err := s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		cur, err := tx.Get(Schema.Name, key)
		if err != nil {
			return err
		}
		if IsOnLoan(cur.Cell(colStatus)) {
			result = portal.ResultAlreadyBorrowed
			return nil
		}
		if bookTitle == "" {
			bookTitle = cur.Cell(colTitle)
		}
		return tx.SetCell(Schema.Name, key, colStatus, fmt.Sprintf("%s: %s", StatusOnLoan, userName))
	})
	if err != nil {
		return "", portal.ToAPIError(err)
	}
	if result == portal.ResultSuccess {
		s.notifier.Notify(ctx, fmt.Sprintf("📚 *図書貸出通知*\n%s さんが『%s』を借りました！\n感想が楽しみですね！", userName, bookTitle))
	}
	return result, nil
}

func (s *Service) Return(ctx context.Context, key sheetdb.Key, bookTitle, userName string) error {
	err := s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		if bookTitle == "" {
			cur, err := tx.Get(Schema.Name, key)
			if err != nil {
				return err
			}
			bookTitle = cur.Cell(colTitle)
		}
		return tx.SetCell(Schema.Name, key, colStatus, StatusAvailable)
	})
	if err != nil {
		return portal.ToAPIError(err)
	}
	s.notifier.Notify(ctx, fmt.Sprintf("↩️ *図書返却通知*\n%s さんが『%s』を返却しました。", userName, bookTitle))
	return nil
}

// AddReview は1件追記し、追加した位置（DeleteReview の index）を返す。
func (s *Service) AddReview(ctx context.Context, key sheetdb.Key, rating int, comment, userName string) (Review, int, error) {
	if rating < 1 || rating > 5 {
		return Review{}, 0, apierr.ErrInvalid("rating must be 1..5")
	}
	id, err := s.ids.New()
	if err != nil {
		return Review{}, 0, apierr.ErrInternal(err.Error())
	}
	r := Review{
		ID:        id,
		Rating:    rating,
		Comment:   comment,
		Author:    userName,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}

	var index int
	err = s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		cur, err := tx.Get(Schema.Name, key)
		if err != nil {
			return err
		}
		cell, err := appendReview(cur.Cell(colReviews), r)
		if err != nil {
			return err
		}
		index = len(ParseReviews(cell)) - 1
		return tx.SetCell(Schema.Name, key, colReviews, cell)
	})
	if err != nil {
		return Review{}, 0, portal.ToAPIError(err)
	}
	return r, index, nil
}

// DeleteReview は index 番目（空行を除いて数える）を消す。範囲外なら何も書かない。
func (s *Service) DeleteReview(ctx context.Context, key sheetdb.Key, index int) error {
	err := s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		cur, err := tx.Get(Schema.Name, key)
		if err != nil {
			return err
		}
		reviews := ParseReviews(cur.Cell(colReviews))
		if index < 0 || index >= len(reviews) {
			return nil
		}
		reviews = append(reviews[:index], reviews[index+1:]...)
		cell, err := FormatReviews(reviews)
		if err != nil {
			return err
		}
		return tx.SetCell(Schema.Name, key, colReviews, cell)
	})
	return portal.ToAPIError(err)
}

func (s *Service) Delete(ctx context.Context, key sheetdb.Key) error {
	if err := s.db.Delete(ctx, Schema.Name, key); err != nil {
		s.log.Warn("book delete failed", zap.Stringer("key", key), zap.Error(err))
		api, _ := portal.ToAPIError(err).(*apierr.APIError)
		return &apierr.APIError{Code: api.Code, Message: "削除に失敗しました: " + api.Message}
	}
	return nil
}
