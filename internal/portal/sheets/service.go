package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/portal"
)

type Service struct {
	db  *sheetdb.Engine
	log *zap.Logger
}

func NewService(db *sheetdb.Engine, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}

type SheetInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

// Sheets は登録済みのシート（登録順）。
func (s *Service) Sheets() []SheetInfo {
	out := []SheetInfo{}
	for _, sc := range s.db.Schemas() {
		if sc.Internal {
			continue
		}
		out = append(out, SheetInfo{Name: sc.Name, Columns: sc.Columns})
	}
	return out
}

// Export は1シート分の CSV。
func (s *Service) Export(ctx context.Context, name string, enc Encoding) ([]byte, error) {
	sc, ok := s.db.Schema(name)
	if !ok || sc.Internal {
		return nil, apierr.ErrNotFound(fmt.Sprintf("sheet %q is not defined", name))
	}
	rows, err := s.db.List(ctx, name)
	if err != nil {
		return nil, portal.ToAPIError(err)
	}
	b, err := writeCSV(sc, rows, enc)
	if err != nil {
		return nil, apierr.ErrInternal(err.Error())
	}
	s.log.Info("sheet exported", zap.String("sheet", name), zap.String("encoding", string(enc)), zap.Int("rows", len(rows)))
	return b, nil
}

// Init は全シートを作り、ヘッダー行を書き直す。既存データ行には触らない。
func (s *Service) Init(ctx context.Context) ([]string, error) {
	done, err := s.db.Init(ctx)
	out := make([]string, 0, len(done))
	for _, name := range done {
		if sc, ok := s.db.Schema(name); ok && sc.Internal {
			continue
		}
		out = append(out, name)
	}
	if err != nil {
		return out, portal.ToAPIError(err)
	}
	return out, nil
}
