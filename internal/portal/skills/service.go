package skills

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/imagedata"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/portal"
)

type Service struct {
	db          *sheetdb.Engine
	log         *zap.Logger
	maxPhotoLen int
}

func NewService(db *sheetdb.Engine, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	db.Register(Schema)
	return &Service{db: db, log: log, maxPhotoLen: imagedata.DefaultMaxLen}
}

func (s *Service) List(ctx context.Context) ([]Skill, error) {
	rows, err := s.db.List(ctx, Schema.Name)
	if err != nil {
		return nil, portal.ToAPIError(err)
	}
	out := make([]Skill, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

func (s *Service) Save(ctx context.Context, key sheetdb.Key, in SaveSkillRequest) (Skill, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Skill{}, apierr.ErrInvalid("name is required")
	}
	status := in.Status
	if status == "" {
		status = DefaultStatus
	}

	// 埋め込み画像はセル上限に収まるよう縮める
	photo, err := imagedata.Shrink(in.PhotoURL, s.maxPhotoLen)
	if err != nil {
		if errors.Is(err, imagedata.ErrNotDataURL) {
			return Skill{}, apierr.ErrInvalid("photoUrl is not a valid image data URL")
		}
		s.log.Warn("photo shrink failed", zap.String("name", in.Name), zap.Error(err))
		return Skill{}, apierr.ErrInvalid("画像を読み込めませんでした")
	}

	sk := Skill{
		Name:     in.Name,
		Dept:     in.Dept,
		Skills:   in.Skills,
		Studying: in.Studying,
		Status:   status,
		SlackID:  in.SlackID,
		PhotoURL: photo,
		Comment:  in.Comment,
		MBTI:     in.MBTI,
	}
	row, err := s.db.Save(ctx, Schema.Name, key, sk.values())
	if err != nil {
		return Skill{}, portal.ToAPIError(err)
	}
	return fromRow(row), nil
}

// UpdateStatus はステータス列だけを書き換える。
func (s *Service) UpdateStatus(ctx context.Context, key sheetdb.Key, status string) error {
	err := s.db.Update(ctx, func(tx *sheetdb.Tx) error {
		return tx.SetCell(Schema.Name, key, colStatus, status)
	})
	return portal.ToAPIError(err)
}

func (s *Service) Delete(ctx context.Context, key sheetdb.Key) error {
	return portal.ToAPIError(s.db.Delete(ctx, Schema.Name, key))
}
