package requests

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/portal"
	"portal-backend/internal/portal/books"
)

type Service struct {
	db  *sheetdb.Engine
	log *zap.Logger
}

func NewService(db *sheetdb.Engine, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	db.Register(Schema)
	db.Register(books.Schema)
	return &Service{db: db, log: log}
}

func (s *Service) List(ctx context.Context) ([]Request, error) {
	rows, err := s.db.List(ctx, Schema.Name)
	if err != nil {
		return nil, portal.ToAPIError(err)
	}
	out := make([]Request, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

// Save はステータスを常に「申請中」にする。編集時はいいね数を読み直して残す。
func (s *Service) Save(ctx context.Context, key sheetdb.Key, in SaveRequestRequest) (Request, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Request{}, apierr.ErrInvalid("title is required")
	}
	q := Request{
		Title:     in.Title,
		URL:       in.URL,
		Requester: in.Requester,
		Status:    StatusPending,
		Reason:    in.Reason,
		ImageURL:  in.ImageURL,
		ISBN:      books.NormalizeISBN(in.ISBN),
	}

	var out Request
	err := s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		if !key.IsZero() {
			cur, err := tx.Get(Schema.Name, key)
			if err != nil {
				return err
			}
			q.Likes = likes(cur.Cell(colLikes))
		}
		row, err := tx.Put(Schema.Name, key, q.values())
		if err != nil {
			return err
		}
		out = fromRow(row)
		return nil
	})
	if err != nil {
		return Request{}, portal.ToAPIError(err)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, key sheetdb.Key) error {
	return portal.ToAPIError(s.db.Delete(ctx, Schema.Name, key))
}

// AddLike はいいね数を 1 増やし、増えた後の値を返す。
func (s *Service) AddLike(ctx context.Context, key sheetdb.Key) (int, error) {
	var n int
	err := s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		cur, err := tx.Get(Schema.Name, key)
		if err != nil {
			return err
		}
		n = likes(cur.Cell(colLikes)) + 1
		return tx.SetCell(Schema.Name, key, colLikes, int64(n))
	})
	if err != nil {
		return 0, portal.ToAPIError(err)
	}
	return n, nil
}

// PromoteResult は購入完了処理の結果。Result は SUCCESS か
// "BOOK_SAVED_BUT_DELETE_FAILED: <原因>"。
type PromoteResult struct {
	Result string
	Book   sheetdb.Row
	Cause  error
}

// Promote は図書管理に1行追加してからリクエスト行を消す。
// 追加後の削除に失敗した場合はエラーにせず、その旨を Result で返す（図書は残る）。
func (s *Service) Promote(ctx context.Context, key sheetdb.Key, in PromoteBook) (PromoteResult, error) {
	res := PromoteResult{Result: portal.ResultSuccess}
	err := s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		cur, err := tx.Get(Schema.Name, key)
		if err != nil {
			return err
		}
		req := fromRow(cur)
		if strings.TrimSpace(in.Title) == "" {
			in.Title = req.Title
		}
		if in.ImageURL == "" {
			in.ImageURL = req.ImageURL
		}
		if in.ISBN == "" {
			in.ISBN = req.ISBN
		}
		if strings.TrimSpace(in.Title) == "" {
			return apierr.ErrInvalid("book title is required")
		}

		b := books.NewBook(in.toSave())
		row, err := tx.Put(books.Schema.Name, sheetdb.Key{}, b.Values())
		if err != nil {
			return err
		}
		res.Book = row

		// 追加した図書行は別シートなので、リクエスト側の key はそのまま使える
		if err := tx.Remove(Schema.Name, sheetdb.Key{RowNumber: cur.RowNumber, ID: cur.ID}); err != nil {
			s.log.Error("request promoted but not removed",
				zap.Stringer("key", key), zap.Int("book_row", row.RowNumber), zap.Error(err))
			res.Result = portal.ResultBookSavedButDeleteFailed + ": " + err.Error()
			res.Cause = err
		}
		return nil
	})
	if err != nil {
		return PromoteResult{}, portal.ToAPIError(err)
	}
	return res, nil
}
