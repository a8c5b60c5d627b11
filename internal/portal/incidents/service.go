package incidents

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

func (s *Service) List(ctx context.Context) ([]Incident, error) {
	rows, err := s.db.List(ctx, Schema.Name)
	if err != nil {
		return nil, portal.ToAPIError(err)
	}
	out := make([]Incident, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

// Save はステータスが空なら「未対応」で保存する。
func (s *Service) Save(ctx context.Context, key sheetdb.Key, in SaveIncidentRequest) (Incident, error) {
	if strings.TrimSpace(in.Title) == "" {
		return Incident{}, apierr.ErrInvalid("title is required")
	}
	status := in.Status
	if status == "" {
		status = StatusOpen
	}
	i := Incident{
		Date:     in.Date,
		Type:     in.Type,
		Title:    in.Title,
		Fact:     in.Fact,
		Cause:    in.Cause,
		Measure:  in.Measure,
		Status:   status,
		Kaizen:   in.Kaizen,
		Reporter: in.Reporter,
	}
	row, err := s.db.Save(ctx, Schema.Name, key, i.values())
	if err != nil {
		return Incident{}, portal.ToAPIError(err)
	}
	return fromRow(row), nil
}

func (s *Service) Delete(ctx context.Context, key sheetdb.Key) error {
	return portal.ToAPIError(s.db.Delete(ctx, Schema.Name, key))
}
