package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/internal/clock"
	"github.com/openimob/rentshare/internal/config"
	"github.com/openimob/rentshare/internal/observability/metrics"
	ownerdomain "github.com/openimob/rentshare/internal/owner/domain"
	participationdomain "github.com/openimob/rentshare/internal/participation/domain"
	propertydomain "github.com/openimob/rentshare/internal/property/domain"
	"github.com/openimob/rentshare/internal/rent/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	GenID          *snowflake.Node
	Clock          clock.Clock
	Calc           *config.CalcConfigHolder
	Repo           domain.Repository
	Participations participationdomain.Repository
	Properties     propertydomain.Repository
	Owners         ownerdomain.Repository
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	genID          *snowflake.Node
	clock          clock.Clock
	calc           *config.CalcConfigHolder
	repo           domain.Repository
	participations participationdomain.Repository
	properties     propertydomain.Repository
	owners         ownerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("rent.service"),
		genID:          p.GenID,
		clock:          p.Clock,
		calc:           p.Calc,
		repo:           p.Repo,
		participations: p.Participations,
		properties:     p.Properties,
		owners:         p.Owners,
	}
}

// Distribute splits gross rent and the administration fee for one
// property-period across the owners of the latest ledger version.
// Amounts stay unrounded through the arithmetic and are rounded to two
// decimals only when persisted.
func (s *Service) Distribute(ctx context.Context, req domain.DistributeRequest) (*domain.DistributeResponse, error) {
	propertyID, err := s.parseID(req.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := s.validatePeriod(req.Month, req.Year); err != nil {
		return nil, err
	}
	if !isFinite(req.GrossRent) || !isFinite(req.TotalFee) {
		return nil, domain.ErrInvalidAmount
	}

	var resp *domain.DistributeResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resp, err = s.distributeTx(ctx, tx, propertyID, req.Month, req.Year,
			decimal.NewFromFloat(req.GrossRent), decimal.NewFromFloat(req.TotalFee))
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) distributeTx(ctx context.Context, tx *gorm.DB, propertyID snowflake.ID, month, year int, gross, totalFee decimal.Decimal) (*domain.DistributeResponse, error) {
	ok, err := s.properties.Exists(ctx, tx, propertyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPropertyNotFound, propertyID)
	}

	// The latest ledger version is read on tx so the whole
	// read-compute-write sequence shares one transaction.
	var shares []participationdomain.Participation
	ts, found, err := s.participations.FindLatestTimestamp(ctx, tx)
	if err != nil {
		return nil, err
	}
	if found {
		items, err := s.participations.FindByTimestamp(ctx, tx, ts)
		if err != nil {
			return nil, err
		}
		for _, p := range items {
			if p.PropertyID == propertyID && p.Percentage.IsPositive() {
				shares = append(shares, p)
			}
		}
	}
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoParticipations, propertyID)
	}

	var warnings []string
	sum := decimal.Zero
	for _, share := range shares {
		sum = sum.Add(share.Percentage)
	}
	tolerance := decimal.NewFromFloat(s.calc.Get().PercentTolerance)
	if sum.Sub(hundred).Abs().GreaterThan(tolerance) {
		warning := fmt.Sprintf("property %s percentages sum to %s, not 100; distributing as given", propertyID, sum.String())
		warnings = append(warnings, warning)
		s.log.Warn("distribution percentages do not sum to 100",
			zap.String("property_id", propertyID.String()),
			zap.String("total", sum.String()),
			zap.Int("month", month),
			zap.Int("year", year),
		)
	}

	now := s.clock.Now().UTC()
	records := make([]domain.RentRecord, 0, len(shares))
	for _, share := range shares {
		ratio := share.Percentage.Div(hundred)
		grossOwner := gross.Mul(ratio)
		feeOwner := totalFee.Mul(ratio)
		netOwner := grossOwner.Sub(feeOwner)

		record, err := s.repo.FindByKey(ctx, tx, propertyID, share.OwnerID, month, year)
		if err != nil {
			return nil, err
		}
		if record == nil {
			record = &domain.RentRecord{
				ID:           s.genID.Generate(),
				PropertyID:   propertyID,
				OwnerID:      share.OwnerID,
				Month:        month,
				Year:         year,
				TotalFee:     totalFee.Round(2),
				OwnerFee:     feeOwner.Round(2),
				NetAmount:    netOwner.Round(2),
				RegisteredAt: now,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := s.repo.Insert(ctx, tx, record); err != nil {
				return nil, err
			}
		} else {
			record.TotalFee = totalFee.Round(2)
			record.OwnerFee = feeOwner.Round(2)
			record.NetAmount = netOwner.Round(2)
			record.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, record); err != nil {
				return nil, err
			}
		}
		records = append(records, *record)
	}

	metrics.DistributionsComputed.Inc()
	return &domain.DistributeResponse{Records: records, Warnings: warnings}, nil
}

// RecomputeAll re-runs the distribution for every stored period using
// the figures reconstructed from the rows themselves. Gross rent is
// taken as the sum of the stored owner fee and net amounts; the fee
// total is taken as already correct and only redistributed. Each
// period commits in its own transaction so one failure never discards
// the rest of the run.
func (s *Service) RecomputeAll(ctx context.Context) (*domain.RecomputeSummary, error) {
	periods, err := s.repo.ListPeriods(ctx, s.db)
	if err != nil {
		return nil, err
	}

	summary := &domain.RecomputeSummary{Total: len(periods)}
	for _, period := range periods {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			figures, err := s.repo.FindPeriodFigures(ctx, tx, period)
			if err != nil {
				return err
			}
			_, err = s.distributeTx(ctx, tx, period.PropertyID, period.Month, period.Year,
				decimal.NewFromFloat(figures.Gross), decimal.NewFromFloat(figures.TotalFee))
			return err
		})
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("property %s %02d/%d: %v", period.PropertyID, period.Month, period.Year, err))
			metrics.RecomputeFailures.Inc()
			continue
		}
		summary.Succeeded++
	}

	if summary.Total > 0 {
		rate := float64(summary.Succeeded) / float64(summary.Total) * 100
		summary.SuccessRate = math.Round(rate*100) / 100
	}

	s.log.Info("recompute finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// ComputeTaxes applies the flat-rate withholding rule. Amounts at or
// below the threshold withhold nothing.
func (s *Service) ComputeTaxes(ctx context.Context, req domain.ComputeTaxesRequest) (*domain.ComputeTaxesResponse, error) {
	if !isFinite(req.NetAmount) {
		return nil, domain.ErrInvalidAmount
	}
	cfg := s.calc.Get()
	base := decimal.NewFromFloat(req.NetAmount).Round(2)
	withheld := decimal.Zero
	if base.GreaterThan(decimal.NewFromFloat(cfg.WithholdingThreshold)) {
		withheld = base.Mul(decimal.NewFromFloat(cfg.WithholdingRate)).Round(2)
	}
	net := base.Sub(withheld)

	baseF, _ := base.Float64()
	withheldF, _ := withheld.Float64()
	netF, _ := net.Float64()
	return &domain.ComputeTaxesResponse{
		Base:                baseF,
		Withheld:            withheldF,
		NetAfterWithholding: netF,
	}, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRentRecordRequest) (*domain.RentRecord, error) {
	propertyID, err := s.parseID(req.PropertyID)
	if err != nil {
		return nil, err
	}
	ownerID, err := s.parseID(req.OwnerID)
	if err != nil {
		return nil, err
	}
	if err := s.validatePeriod(req.Month, req.Year); err != nil {
		return nil, err
	}
	if !isFinite(req.TotalFee) || !isFinite(req.OwnerFee) || !isFinite(req.NetAmount) {
		return nil, domain.ErrInvalidAmount
	}

	var record domain.RentRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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

		existing, err := s.repo.FindByKey(ctx, tx, propertyID, ownerID, req.Month, req.Year)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicatePeriod
		}

		now := s.clock.Now().UTC()
		record = domain.RentRecord{
			ID:           s.genID.Generate(),
			PropertyID:   propertyID,
			OwnerID:      ownerID,
			Month:        req.Month,
			Year:         req.Year,
			TotalFee:     decimal.NewFromFloat(req.TotalFee).Round(2),
			OwnerFee:     decimal.NewFromFloat(req.OwnerFee).Round(2),
			NetAmount:    decimal.NewFromFloat(req.NetAmount).Round(2),
			RegisteredAt: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return s.repo.Insert(ctx, tx, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRentRecordRequest) (*domain.RentRecord, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}

	if req.TotalFee != nil {
		if !isFinite(*req.TotalFee) {
			return nil, domain.ErrInvalidAmount
		}
		record.TotalFee = decimal.NewFromFloat(*req.TotalFee).Round(2)
	}
	if req.OwnerFee != nil {
		if !isFinite(*req.OwnerFee) {
			return nil, domain.ErrInvalidAmount
		}
		record.OwnerFee = decimal.NewFromFloat(*req.OwnerFee).Round(2)
	}
	if req.NetAmount != nil {
		if !isFinite(*req.NetAmount) {
			return nil, domain.ErrInvalidAmount
		}
		record.NetAmount = decimal.NewFromFloat(*req.NetAmount).Round(2)
	}
	record.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.Update(ctx, s.db, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) Get(ctx context.Context, req domain.GetRentRecordRequest) (*domain.RentRecord, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRentRecordsRequest) (*domain.ListRentRecordsResponse, error) {
	filter := domain.ListRentFilter{
		Month:  req.Month,
		Year:   req.Year,
		Offset: req.Offset,
		Limit:  req.Limit,
	}
	if strings.TrimSpace(req.PropertyID) != "" {
		id, err := s.parseID(req.PropertyID)
		if err != nil {
			return nil, err
		}
		filter.PropertyID = id
	}
	if strings.TrimSpace(req.OwnerID) != "" {
		id, err := s.parseID(req.OwnerID)
		if err != nil {
			return nil, err
		}
		filter.OwnerID = id
	}
	if filter.Limit <= 0 || filter.Limit > 2000 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	records, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	return &domain.ListRentRecordsResponse{Records: records, Total: total}, nil
}

func (s *Service) Delete(ctx context.Context, req domain.DeleteRentRecordRequest) error {
	id, err := s.parseID(req.ID)
	if err != nil {
		return err
	}
	record, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if record == nil {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) TotalsByProperty(ctx context.Context, req domain.YearRequest) ([]domain.PropertyTotal, error) {
	return s.repo.TotalsByProperty(ctx, s.db, req.Year)
}

func (s *Service) TotalsByMonth(ctx context.Context, req domain.YearRequest) ([]domain.MonthTotal, error) {
	return s.repo.TotalsByMonth(ctx, s.db, req.Year)
}

func (s *Service) Matrix(ctx context.Context, req domain.MatrixRequest) ([]domain.MatrixCell, error) {
	if req.Year == 0 {
		return nil, domain.ErrInvalidYear
	}
	if req.Month != 0 && (req.Month < 1 || req.Month > 12) {
		return nil, domain.ErrInvalidMonth
	}
	return s.repo.Matrix(ctx, s.db, req.Month, req.Year)
}

func (s *Service) AvailableYears(ctx context.Context) ([]int, error) {
	return s.repo.DistinctYears(ctx, s.db)
}

func (s *Service) LastPeriod(ctx context.Context) (*domain.LastPeriodResponse, error) {
	month, year, registeredAt, ok, err := s.repo.LastPeriod(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.LastPeriodResponse{
		Month:        month,
		Year:         year,
		RegisteredAt: registeredAt,
	}, nil
}

func (s *Service) validatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return domain.ErrInvalidMonth
	}
	cfg := s.calc.Get()
	if year < cfg.MinYear || year > cfg.MaxYear {
		return domain.ErrInvalidYear
	}
	return nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
