package equipment

import (
	"context"
	"strings"

	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/portal"
)

type Service struct {
	db *sheetdb.Engine
}

func NewService(db *sheetdb.Engine) *Service {
	db.Register(Schema)
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context) ([]Equipment, error) {
	rows, err := s.db.List(ctx, Schema.Name)
	if err != nil {
		return nil, portal.ToAPIError(err)
	}
	out := make([]Equipment, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

// Save は key が空なら新規登録、あれば上書き。
func (s *Service) Save(ctx context.Context, key sheetdb.Key, in SaveEquipmentRequest) (Equipment, error) {
	if strings.TrimSpace(in.PCName) == "" {
		return Equipment{}, apierr.ErrInvalid("pcName is required")
	}
	e := Equipment{PCName: in.PCName, Holder: in.Holder, Date: in.Date, Note: in.Note}
	row, err := s.db.Save(ctx, Schema.Name, key, e.values())
	if err != nil {
		return Equipment{}, portal.ToAPIError(err)
	}
	return fromRow(row), nil
}

func (s *Service) Delete(ctx context.Context, key sheetdb.Key) error {
	return portal.ToAPIError(s.db.Delete(ctx, Schema.Name, key))
}
