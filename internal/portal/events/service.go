package events

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"portal-backend/internal/photos"
	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/portal"
)

// 一覧時にサムネイルを取りに行く同時数
const enrichLimit = 4

type Service struct {
	db     *sheetdb.Engine
	thumbs photos.ThumbnailProvider
	log    *zap.Logger
}

func NewService(db *sheetdb.Engine, thumbs photos.ThumbnailProvider, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	db.Register(Schema)
	return &Service{db: db, thumbs: thumbs, log: log}
}

// List はアルバム URL から取れたサムネイルで応答を差し替える（シートには書かない）。
// 取得はロックを離してから行い、失敗した行は保存済みの値のまま。
func (s *Service) List(ctx context.Context) ([]Event, error) {
	rows, err := s.db.List(ctx, Schema.Name)
	if err != nil {
		return nil, portal.ToAPIError(err)
	}
	out := make([]Event, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	if s.thumbs == nil {
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(enrichLimit)
	for i := range out {
		if !photos.IsAlbumURL(out[i].AlbumURL) {
			continue
		}
		g.Go(func() error {
			if thumb := s.thumbs.Thumbnail(ctx, out[i].AlbumURL); thumb != "" {
				out[i].ThumbnailURL = thumb
			} else {
				s.log.Debug("thumbnail kept", zap.String("event", out[i].Name), zap.String("album_url", out[i].AlbumURL))
			}
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// Save は編集時に前のサムネイルを引き継ぎ、取得できた時だけ上書きする。
func (s *Service) Save(ctx context.Context, key sheetdb.Key, in SaveEventRequest) (Event, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Event{}, apierr.ErrInvalid("name is required")
	}
	// 通信はロックの外で済ませる
	var fresh string
	if s.thumbs != nil && photos.IsAlbumURL(in.AlbumURL) {
		fresh = s.thumbs.Thumbnail(ctx, in.AlbumURL)
	}

	e := Event{
		Date:     in.Date,
		Name:     in.Name,
		Location: in.Location,
		Count:    in.Count,
		AlbumURL: in.AlbumURL,
		DocURL:   in.DocURL,
		Members:  in.Members,
	}
	var out Event
	err := s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		if !key.IsZero() {
			cur, err := tx.Get(Schema.Name, key)
			if err != nil {
				return err
			}
			e.ThumbnailURL = cur.Cell(colThumb)
		}
		if fresh != "" {
			e.ThumbnailURL = fresh
		}
		row, err := tx.Put(Schema.Name, key, e.values())
		if err != nil {
			return err
		}
		out = fromRow(row)
		return nil
	})
	if err != nil {
		return Event{}, portal.ToAPIError(err)
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, key sheetdb.Key) error {
	return portal.ToAPIError(s.db.Delete(ctx, Schema.Name, key))
}

// AllPhotos はアルバム内の全写真 URL（1600px）。取得に失敗したら空。
func (s *Service) AllPhotos(ctx context.Context, albumURL string) ([]string, error) {
	if strings.TrimSpace(albumURL) == "" {
		return nil, apierr.ErrInvalid("album_url is required")
	}
	if s.thumbs == nil {
		return []string{}, nil
	}
	return s.thumbs.AllPhotos(ctx, albumURL), nil
}
