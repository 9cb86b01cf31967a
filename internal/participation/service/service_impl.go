package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/openimob/rentshare/internal/clock"
	"github.com/openimob/rentshare/internal/config"
	"github.com/openimob/rentshare/internal/observability/metrics"
	ownerdomain "github.com/openimob/rentshare/internal/owner/domain"
	"github.com/openimob/rentshare/internal/participation/domain"
	propertydomain "github.com/openimob/rentshare/internal/property/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// versionTimeLayout identifies a ledger version by its
	// registration timestamp.
	versionTimeLayout = "2006-01-02T15:04:05.000000Z"

	// maxTimestampAttempts bounds the collision retry loop.
	maxTimestampAttempts = 1000

	sourceLedger  = "ledger"
	sourceHistory = "history"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Calc       *config.CalcConfigHolder
	Repo       domain.Repository
	Properties propertydomain.Repository
	Owners     ownerdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	calc       *config.CalcConfigHolder
	repo       domain.Repository
	properties propertydomain.Repository
	owners     ownerdomain.Repository

	// mu serializes read-modify-write cycles on the ledger so two
	// concurrent mutations cannot both copy forward the same latest
	// version.
	mu sync.Mutex
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("participation.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		calc:       p.Calc,
		repo:       p.Repo,
		properties: p.Properties,
		owners:     p.Owners,
	}
}

func (s *Service) GetLatestVersion(ctx context.Context) (*domain.VersionResponse, error) {
	ts, ok, err := s.repo.FindLatestTimestamp(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &domain.VersionResponse{Items: []domain.Participation{}}, nil
	}
	items, err := s.repo.FindByTimestamp(ctx, s.db, ts)
	if err != nil {
		return nil, err
	}
	return &domain.VersionResponse{RegisteredAt: &ts, Items: items}, nil
}

func (s *Service) GetVersionAt(ctx context.Context, req domain.GetVersionAtRequest) (*domain.VersionResponse, error) {
	ts := req.Timestamp.UTC()
	items, err := s.repo.FindByTimestamp(ctx, s.db, ts)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrVersionNotFound
	}
	return &domain.VersionResponse{RegisteredAt: &ts, Items: items}, nil
}

func (s *Service) GetVersionAsOf(ctx context.Context, req domain.GetVersionAsOfRequest) (*domain.VersionResponse, error) {
	day := req.Date.UTC()
	endOfDay := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 999999000, time.UTC)

	ts, ok, err := s.repo.FindLatestTimestampBefore(ctx, s.db, endOfDay)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrVersionNotFound
	}
	items, err := s.repo.FindByTimestamp(ctx, s.db, ts)
	if err != nil {
		return nil, err
	}
	return &domain.VersionResponse{RegisteredAt: &ts, Items: items}, nil
}

// Upsert creates a new full-ledger version. Every pair of the latest
// version is copied forward under a fresh timestamp with only the
// targeted pair replaced or added.
func (s *Service) Upsert(ctx context.Context, req domain.UpsertRequest) (*domain.Participation, error) {
	propertyID, err := parseRef(req.PropertyID, domain.ErrPropertyNotFound)
	if err != nil {
		return nil, err
	}
	ownerID, err := parseRef(req.OwnerID, domain.ErrOwnerNotFound)
	if err != nil {
		return nil, err
	}
	pct, err := domain.ParsePercentage(req.Percentage)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var created domain.Participation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkRefs(ctx, tx, propertyID, ownerID); err != nil {
			return err
		}

		previous, err := s.latestRows(ctx, tx)
		if err != nil {
			return err
		}
		if err := s.archiveLocked(ctx, tx, previous); err != nil {
			return err
		}

		ts, err := s.newVersionTimestamp(ctx, tx)
		if err != nil {
			return err
		}

		rows := make([]domain.Participation, 0, len(previous)+1)
		for _, p := range previous {
			if p.PropertyID == propertyID && p.OwnerID == ownerID {
				continue
			}
			rows = append(rows, domain.Participation{
				ID:           s.genID.Generate(),
				PropertyID:   p.PropertyID,
				OwnerID:      p.OwnerID,
				Percentage:   p.Percentage,
				RegisteredAt: ts,
				Active:       p.Active,
				CreatedAt:    ts,
			})
		}
		created = domain.Participation{
			ID:           s.genID.Generate(),
			PropertyID:   propertyID,
			OwnerID:      ownerID,
			Percentage:   pct,
			RegisteredAt: ts,
			Active:       true,
			CreatedAt:    ts,
		}
		rows = append(rows, created)

		if err := s.repo.InsertBatch(ctx, tx, rows); err != nil {
			return err
		}

		metrics.VersionsCreated.Inc()
		s.log.Info("ledger version created",
			zap.Time("registered_at", ts),
			zap.Int("rows", len(rows)),
			zap.String("property_id", propertyID.String()),
			zap.String("owner_id", ownerID.String()),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ReplaceVersion swaps the whole active set for the given items in one
// new version. Duplicate pairs in the input are summed. Per-property
// totals off 100 are reported as warnings, never rejected.
func (s *Service) ReplaceVersion(ctx context.Context, req domain.ReplaceVersionRequest) (*domain.ReplaceVersionResponse, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyVersion
	}

	order := make([]pairKey, 0, len(req.Items))
	merged := make(map[pairKey]decimal.Decimal, len(req.Items))
	for _, item := range req.Items {
		propertyID, err := parseRef(item.PropertyID, domain.ErrPropertyNotFound)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrPropertyNotFound, item.PropertyID)
		}
		ownerID, err := parseRef(item.OwnerID, domain.ErrOwnerNotFound)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrOwnerNotFound, item.OwnerID)
		}
		pct, err := domain.ParsePercentage(item.Percentage)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPercentage, item.Percentage)
		}
		key := pairKey{property: propertyID, owner: ownerID}
		if existing, ok := merged[key]; ok {
			merged[key] = existing.Add(pct)
			continue
		}
		merged[key] = pct
		order = append(order, key)
	}

	warnings := s.percentageWarnings(order, merged)

	s.mu.Lock()
	defer s.mu.Unlock()

	var resp domain.ReplaceVersionResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, key := range order {
			if err := s.checkRefs(ctx, tx, key.property, key.owner); err != nil {
				return err
			}
		}

		previous, err := s.latestRows(ctx, tx)
		if err != nil {
			return err
		}
		if err := s.archiveLocked(ctx, tx, previous); err != nil {
			return err
		}

		ts, err := s.newVersionTimestamp(ctx, tx)
		if err != nil {
			return err
		}
		versionID := ts.Format(versionTimeLayout)

		rows := make([]domain.Participation, 0, len(order))
		history := make([]domain.ParticipationHistory, 0, len(order))
		for _, key := range order {
			rows = append(rows, domain.Participation{
				ID:           s.genID.Generate(),
				PropertyID:   key.property,
				OwnerID:      key.owner,
				Percentage:   merged[key],
				RegisteredAt: ts,
				Active:       true,
				CreatedAt:    ts,
			})
			history = append(history, domain.ParticipationHistory{
				ID:           s.genID.Generate(),
				VersionID:    versionID,
				PropertyID:   key.property,
				OwnerID:      key.owner,
				Percentage:   merged[key],
				RegisteredAt: ts,
				Active:       true,
				SnapshotAt:   ts,
				CreatedAt:    ts,
			})
		}

		if err := s.repo.InsertBatch(ctx, tx, rows); err != nil {
			return err
		}
		if err := s.repo.InsertHistoryBatch(ctx, tx, history); err != nil {
			return err
		}

		resp = domain.ReplaceVersionResponse{
			VersionID:    versionID,
			RegisteredAt: ts,
			Count:        len(rows),
			Warnings:     warnings,
		}

		metrics.VersionsCreated.Inc()
		s.log.Info("ledger version replaced",
			zap.String("version_id", versionID),
			zap.Int("rows", len(rows)),
			zap.Int("warnings", len(warnings)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SnapshotNow mirrors the active set into history. When the newest
// history version already matches the active set, the existing version
// id is returned and nothing is written.
func (s *Service) SnapshotNow(ctx context.Context) (*domain.SnapshotResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var resp *domain.SnapshotResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := s.latestRows(ctx, tx)
		if err != nil {
			return err
		}
		if len(active) == 0 {
			return domain.ErrEmptyVersion
		}
		resp, err = s.snapshotLocked(ctx, tx, active)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) ListVersions(ctx context.Context) ([]domain.VersionSummary, error) {
	historyVersions, err := s.repo.ListHistoryVersions(ctx, s.db)
	if err != nil {
		return nil, err
	}
	stamps, err := s.repo.ListTimestamps(ctx, s.db)
	if err != nil {
		return nil, err
	}

	// One entry per calendar day per source, keeping the newest.
	summaries := make([]domain.VersionSummary, 0, len(historyVersions)+len(stamps))
	seenDay := make(map[string]bool)
	for _, hv := range historyVersions {
		day := sourceHistory + "|" + hv.SnapshotAt.UTC().Format("2006-01-02")
		if seenDay[day] {
			continue
		}
		seenDay[day] = true
		summaries = append(summaries, domain.VersionSummary{
			VersionID: hv.VersionID,
			Label:     "History snapshot " + hv.SnapshotAt.UTC().Format("2006-01-02 15:04:05"),
			Date:      hv.SnapshotAt.UTC(),
			Source:    sourceHistory,
			Rows:      hv.Rows,
		})
	}
	for _, stamp := range stamps {
		day := sourceLedger + "|" + stamp.RegisteredAt.Format("2006-01-02")
		if seenDay[day] {
			continue
		}
		seenDay[day] = true
		summaries = append(summaries, domain.VersionSummary{
			VersionID: stamp.RegisteredAt.Format(versionTimeLayout),
			Label:     "Ledger version " + stamp.RegisteredAt.Format("2006-01-02 15:04:05"),
			Date:      stamp.RegisteredAt,
			Source:    sourceLedger,
			Rows:      stamp.Rows,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Date.After(summaries[j].Date)
	})
	return summaries, nil
}

func (s *Service) HistoryByVersion(ctx context.Context, req domain.HistoryByVersionRequest) ([]domain.ParticipationHistory, error) {
	versionID := strings.TrimSpace(req.VersionID)
	if versionID == "" {
		return nil, domain.ErrVersionNotFound
	}

	if versionID == domain.ActiveVersionID {
		active, err := s.latestRows(ctx, s.db)
		if err != nil {
			return nil, err
		}
		now := s.clock.Now().UTC()
		rows := make([]domain.ParticipationHistory, 0, len(active))
		for _, p := range active {
			rows = append(rows, domain.ParticipationHistory{
				ID:           p.ID,
				VersionID:    domain.ActiveVersionID,
				PropertyID:   p.PropertyID,
				OwnerID:      p.OwnerID,
				Percentage:   p.Percentage,
				RegisteredAt: p.RegisteredAt,
				Active:       p.Active,
				SnapshotAt:   now,
				CreatedAt:    p.CreatedAt,
			})
		}
		return rows, nil
	}

	rows, err := s.repo.FindHistoryByVersion(ctx, s.db, versionID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrVersionNotFound
	}
	return rows, nil
}

func (s *Service) HistoryByProperty(ctx context.Context, req domain.HistoryByPropertyRequest) ([]domain.ParticipationHistory, error) {
	propertyID, err := parseRef(req.PropertyID, domain.ErrPropertyNotFound)
	if err != nil {
		return nil, err
	}
	ok, err := s.properties.Exists(ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	return s.repo.FindHistoryByProperty(ctx, s.db, propertyID)
}

// checkRefs confirms both sides of a pair exist before the ledger is
// touched.
func (s *Service) checkRefs(ctx context.Context, tx *gorm.DB, propertyID, ownerID snowflake.ID) error {
	ok, err := s.properties.Exists(ctx, tx, propertyID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrPropertyNotFound, propertyID)
	}
	owner, err := s.owners.FindByID(ctx, tx, ownerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return fmt.Errorf("%w: %s", domain.ErrOwnerNotFound, ownerID)
	}
	return nil
}

// latestRows loads the complete latest version, empty when the ledger
// has no rows yet.
func (s *Service) latestRows(ctx context.Context, tx *gorm.DB) ([]domain.Participation, error) {
	ts, ok, err := s.repo.FindLatestTimestamp(ctx, tx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.repo.FindByTimestamp(ctx, tx, ts)
}

// archiveLocked snapshots the prior active set before a mutation so
// the superseded state stays reachable through history. No-op for an
// empty ledger or when history already holds an identical version.
func (s *Service) archiveLocked(ctx context.Context, tx *gorm.DB, active []domain.Participation) error {
	if len(active) == 0 {
		return nil
	}
	_, err := s.snapshotLocked(ctx, tx, active)
	return err
}

func (s *Service) snapshotLocked(ctx context.Context, tx *gorm.DB, active []domain.Participation) (*domain.SnapshotResponse, error) {
	latest, latestRows, ok, err := s.repo.FindLatestHistoryVersion(ctx, tx)
	if err != nil {
		return nil, err
	}
	if ok && sameVersion(active, latestRows) {
		return &domain.SnapshotResponse{
			VersionID: latest.VersionID,
			Created:   false,
			Rows:      len(latestRows),
		}, nil
	}

	now := s.clock.Now().UTC()
	versionID := fmt.Sprintf("v_%s_%s", now.Format("20060102_150405"), uuid.NewString()[:8])

	rows := make([]domain.ParticipationHistory, 0, len(active))
	for _, p := range active {
		if !p.Active {
			continue
		}
		rows = append(rows, domain.ParticipationHistory{
			ID:           s.genID.Generate(),
			VersionID:    versionID,
			PropertyID:   p.PropertyID,
			OwnerID:      p.OwnerID,
			Percentage:   p.Percentage,
			RegisteredAt: p.RegisteredAt,
			Active:       p.Active,
			SnapshotAt:   now,
			CreatedAt:    now,
		})
	}
	if err := s.repo.InsertHistoryBatch(ctx, tx, rows); err != nil {
		return nil, err
	}

	metrics.SnapshotsTaken.Inc()
	s.log.Info("ledger snapshot created",
		zap.String("version_id", versionID),
		zap.Int("rows", len(rows)),
	)
	return &domain.SnapshotResponse{
		VersionID: versionID,
		Created:   true,
		Rows:      len(rows),
	}, nil
}

// newVersionTimestamp issues a registration timestamp unused by any
// existing version, stepping forward a microsecond at a time on
// collision.
func (s *Service) newVersionTimestamp(ctx context.Context, tx *gorm.DB) (time.Time, error) {
	ts := s.clock.Now().UTC().Truncate(time.Microsecond)
	for attempt := 0; attempt < maxTimestampAttempts; attempt++ {
		exists, err := s.repo.TimestampExists(ctx, tx, ts)
		if err != nil {
			return time.Time{}, err
		}
		if !exists {
			return ts, nil
		}
		ts = ts.Add(time.Microsecond)
	}
	return time.Time{}, domain.ErrTimestampExhausted
}

type pairKey struct {
	property snowflake.ID
	owner    snowflake.ID
}

// percentageWarnings reports properties whose totals stray from 100
// beyond the configured tolerance. Deviations are reported, never
// rejected; partial and over-allocated ownership may exist transiently.
func (s *Service) percentageWarnings(order []pairKey, merged map[pairKey]decimal.Decimal) []string {
	totals := make(map[snowflake.ID]decimal.Decimal)
	propertyOrder := make([]snowflake.ID, 0)
	for _, key := range order {
		if _, ok := totals[key.property]; !ok {
			propertyOrder = append(propertyOrder, key.property)
		}
		totals[key.property] = totals[key.property].Add(merged[key])
	}

	tolerance := decimal.NewFromFloat(s.calc.Get().PercentTolerance)
	var warnings []string
	for _, propertyID := range propertyOrder {
		total := totals[propertyID]
		if total.Sub(hundred).Abs().GreaterThan(tolerance) {
			warning := fmt.Sprintf("property %s percentages sum to %s, not 100", propertyID, total.String())
			warnings = append(warnings, warning)
			s.log.Warn("participation percentages do not sum to 100",
				zap.String("property_id", propertyID.String()),
				zap.String("total", total.String()),
			)
		}
	}
	return warnings
}

var hundred = decimal.NewFromInt(100)

func parseRef(value string, notFound error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, notFound
	}
	return id, nil
}

// sameVersion compares two versions as sets of (property, owner,
// percentage) triples.
func sameVersion(active []domain.Participation, history []domain.ParticipationHistory) bool {
	if len(active) != len(history) {
		return false
	}
	pairs := make(map[string]decimal.Decimal, len(active))
	for _, p := range active {
		pairs[p.PropertyID.String()+"|"+p.OwnerID.String()] = p.Percentage
	}
	for _, h := range history {
		pct, ok := pairs[h.PropertyID.String()+"|"+h.OwnerID.String()]
		if !ok || !pct.Equal(h.Percentage) {
			return false
		}
	}
	return true
}
