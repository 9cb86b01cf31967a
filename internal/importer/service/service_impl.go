package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/internal/clock"
	"github.com/openimob/rentshare/internal/importer/domain"
	participationdomain "github.com/openimob/rentshare/internal/participation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Repo           domain.Repository
	Participations participationdomain.Service
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	repo           domain.Repository
	participations participationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("importer.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		repo:           p.Repo,
		participations: p.Participations,
	}
}

// Import replaces the active ledger version with the given rows. Rows
// with a blank percentage are skipped rather than failing the run. The
// run itself is logged whether it succeeds or not.
func (s *Service) Import(ctx context.Context, req domain.ImportRequest) (*domain.ImportResponse, error) {
	if len(req.Rows) == 0 {
		return nil, domain.ErrNoRows
	}

	started := s.clock.Now().UTC()
	entry := domain.ImportLog{
		ID:        s.genID.Generate(),
		Filename:  strings.TrimSpace(req.Filename),
		State:     domain.StateProcessing,
		TotalRows: len(req.Rows),
		StartedAt: started,
		CreatedAt: started,
	}
	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		return nil, err
	}

	items := make([]participationdomain.ReplaceItem, 0, len(req.Rows))
	skipped := 0
	for _, row := range req.Rows {
		if strings.TrimSpace(row.Percentage) == "" {
			skipped++
			continue
		}
		items = append(items, participationdomain.ReplaceItem{
			PropertyID: row.PropertyID,
			OwnerID:    row.OwnerID,
			Percentage: row.Percentage,
		})
	}

	result, err := s.participations.ReplaceVersion(ctx, participationdomain.ReplaceVersionRequest{Items: items})
	finished := s.clock.Now().UTC()
	entry.FinishedAt = &finished
	entry.DurationMs = finished.Sub(started).Milliseconds()
	entry.Skipped = skipped

	if err != nil {
		entry.State = domain.StateFailed
		entry.Detail = mustJSON(map[string]any{"error": err.Error()})
		if updateErr := s.repo.Update(ctx, s.db, &entry); updateErr != nil {
			s.log.Error("import log update failed", zap.Error(updateErr))
		}
		return nil, err
	}

	entry.State = domain.StateCompleted
	entry.Imported = result.Count
	entry.VersionID = result.VersionID
	if len(result.Warnings) > 0 {
		entry.Detail = mustJSON(map[string]any{"warnings": result.Warnings})
	}
	if err := s.repo.Update(ctx, s.db, &entry); err != nil {
		return nil, err
	}

	s.log.Info("import completed",
		zap.String("import_id", entry.ID.String()),
		zap.String("version_id", result.VersionID),
		zap.Int("imported", result.Count),
		zap.Int("skipped", skipped),
		zap.Int64("duration_ms", entry.DurationMs),
	)
	return &domain.ImportResponse{
		ImportID:  entry.ID.String(),
		State:     entry.State,
		VersionID: result.VersionID,
		TotalRows: entry.TotalRows,
		Imported:  result.Count,
		Skipped:   skipped,
		Warnings:  result.Warnings,
	}, nil
}

func (s *Service) Get(ctx context.Context, req domain.GetImportRequest) (*domain.ImportLog, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return nil, domain.ErrInvalidID
	}
	entry, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context, req domain.ListImportsRequest) (*domain.ListImportsResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 2000 {
		limit = 100
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	logs, total, err := s.repo.List(ctx, s.db, offset, limit)
	if err != nil {
		return nil, err
	}
	return &domain.ListImportsResponse{Imports: logs, Total: total}, nil
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(`{}`)
	}
	return data
}
