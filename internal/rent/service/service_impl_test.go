package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/openimob/rentshare/internal/clock"
	"github.com/openimob/rentshare/internal/config"
	ownerdomain "github.com/openimob/rentshare/internal/owner/domain"
	ownerrepository "github.com/openimob/rentshare/internal/owner/repository"
	participationdomain "github.com/openimob/rentshare/internal/participation/domain"
	participationrepository "github.com/openimob/rentshare/internal/participation/repository"
	participationservice "github.com/openimob/rentshare/internal/participation/service"
	propertydomain "github.com/openimob/rentshare/internal/property/domain"
	propertyrepository "github.com/openimob/rentshare/internal/property/repository"
	"github.com/openimob/rentshare/internal/rent/domain"
	"github.com/openimob/rentshare/internal/rent/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type rentTestEnv struct {
	db             *gorm.DB
	clock          *clock.FakeClock
	node           *snowflake.Node
	svc            domain.Service
	participations participationdomain.Service
}

func setupRentTest(t *testing.T) *rentTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&propertydomain.Property{},
		&ownerdomain.Owner{},
		&participationdomain.Participation{},
		&participationdomain.ParticipationHistory{},
		&domain.RentRecord{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 4, 5, 9, 0, 0, 0, time.UTC))
	calc := &config.CalcConfigHolder{}
	log := zaptest.NewLogger(t)

	participations := participationservice.New(participationservice.Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      fake,
		Calc:       calc,
		Repo:       participationrepository.Provide(),
		Properties: propertyrepository.Provide(),
		Owners:     ownerrepository.Provide(),
	})
	svc := New(Params{
		DB:             db,
		Log:            log,
		GenID:          node,
		Clock:          fake,
		Calc:           calc,
		Repo:           repository.Provide(),
		Participations: participationrepository.Provide(),
		Properties:     propertyrepository.Provide(),
		Owners:         ownerrepository.Provide(),
	})
	return &rentTestEnv{db: db, clock: fake, node: node, svc: svc, participations: participations}
}

func (e *rentTestEnv) property(t *testing.T, name string) propertydomain.Property {
	t.Helper()
	property := propertydomain.Property{
		ID:        e.node.Generate(),
		Name:      name,
		Address:   "Av. Principal 100",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.db.Create(&property).Error)
	return property
}

func (e *rentTestEnv) owner(t *testing.T, name string) ownerdomain.Owner {
	t.Helper()
	owner := ownerdomain.Owner{
		ID:        e.node.Generate(),
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.db.Create(&owner).Error)
	return owner
}

func (e *rentTestEnv) participate(t *testing.T, property propertydomain.Property, owner ownerdomain.Owner, pct string) {
	t.Helper()
	_, err := e.participations.Upsert(context.Background(), participationdomain.UpsertRequest{
		PropertyID: property.ID.String(),
		OwnerID:    owner.ID.String(),
		Percentage: pct,
	})
	require.NoError(t, err)
	e.clock.Advance(time.Second)
}

func TestDistributeSplitsByPercentage(t *testing.T) {
	env := setupRentTest(t)
	ctx := context.Background()

	p1 := env.property(t, "Casa A")
	a := env.owner(t, "Alice")
	b := env.owner(t, "Bruno")
	env.participate(t, p1, a, "60")
	env.participate(t, p1, b, "40")

	resp, err := env.svc.Distribute(ctx, domain.DistributeRequest{
		PropertyID: p1.ID.String(),
		Month:      4,
		Year:       2025,
		GrossRent:  1000.00,
		TotalFee:   100.00,
	})
	require.NoError(t, err)
	require.Len(t, resp.Records, 2)
	assert.Empty(t, resp.Warnings)

	byOwner := map[snowflake.ID]domain.RentRecord{}
	for _, r := range resp.Records {
		byOwner[r.OwnerID] = r
	}

	fa, _ := byOwner[a.ID].OwnerFee.Float64()
	na, _ := byOwner[a.ID].NetAmount.Float64()
	fb, _ := byOwner[b.ID].OwnerFee.Float64()
	nb, _ := byOwner[b.ID].NetAmount.Float64()
	assert.InDelta(t, 60.00, fa, 0.001)
	assert.InDelta(t, 540.00, na, 0.001)
	assert.InDelta(t, 40.00, fb, 0.001)
	assert.InDelta(t, 360.00, nb, 0.001)

	// Shares add back up to the period figures.
	gross := byOwner[a.ID].GrossAmount().Add(byOwner[b.ID].GrossAmount())
	fee := byOwner[a.ID].OwnerFee.Add(byOwner[b.ID].OwnerFee)
	gf, _ := gross.Float64()
	ff, _ := fee.Float64()
	assert.InDelta(t, 1000.00, gf, 0.001)
	assert.InDelta(t, 100.00, ff, 0.001)

	var stored []domain.RentRecord
	require.NoError(t, env.db.Where("property_id = ?", p1.ID).Find(&stored).Error)
	assert.Len(t, stored, 2)
}

func TestDistributeUpsertsExistingPeriod(t *testing.T) {
	env := setupRentTest(t)
	ctx := context.Background()

	p1 := env.property(t, "Casa A")
	a := env.owner(t, "Alice")
	env.participate(t, p1, a, "100")

	_, err := env.svc.Distribute(ctx, domain.DistributeRequest{
		PropertyID: p1.ID.String(), Month: 4, Year: 2025, GrossRent: 1000, TotalFee: 100,
	})
	require.NoError(t, err)
	resp, err := env.svc.Distribute(ctx, domain.DistributeRequest{
		PropertyID: p1.ID.String(), Month: 4, Year: 2025, GrossRent: 1200, TotalFee: 120,
	})
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)

	// Still one row per owner-period.
	var count int64
	require.NoError(t, env.db.Model(&domain.RentRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	net, _ := resp.Records[0].NetAmount.Float64()
	assert.InDelta(t, 1080.00, net, 0.001)
}

func TestDistributeNegativeNet(t *testing.T) {
	env := setupRentTest(t)
	ctx := context.Background()

	p1 := env.property(t, "Casa A")
	a := env.owner(t, "Alice")
	env.participate(t, p1, a, "100")

	// Vacancy month, the fee exceeds the rent collected.
	resp, err := env.svc.Distribute(ctx, domain.DistributeRequest{
		PropertyID: p1.ID.String(), Month: 7, Year: 2025, GrossRent: 0, TotalFee: 150.50,
	})
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)

	net, _ := resp.Records[0].NetAmount.Float64()
	assert.InDelta(t, -150.50, net, 0.001)

	var stored domain.RentRecord
	require.NoError(t, env.db.First(&stored, "property_id = ?", p1.ID).Error)
	storedNet, _ := stored.NetAmount.Float64()
	assert.InDelta(t, -150.50, storedNet, 0.001)
}

func TestDistributeWithoutParticipations(t *testing.T) {
	env := setupRentTest(t)
	ctx := context.Background()

	p1 := env.property(t, "Casa A")
	_, err := env.svc.Distribute(ctx, domain.DistributeRequest{
		PropertyID: p1.ID.String(), Month: 4, Year: 2025, GrossRent: 1000, TotalFee: 100,
	})
	require.ErrorIs(t, err, domain.ErrNoParticipations)

	var count int64
	require.NoError(t, env.db.Model(&domain.RentRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDistributeWarnsOnPartialAllocation(t *testing.T) {
	env := setupRentTest(t)
	ctx := context.Background()

	p1 := env.property(t, "Casa A")
	a := env.owner(t, "Alice")
	env.participate(t, p1, a, "50")

	resp, err := env.svc.Distribute(ctx, domain.DistributeRequest{
		PropertyID: p1.ID.String(), Month: 4, Year: 2025, GrossRent: 1000, TotalFee: 100,
	})
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.NotEmpty(t, resp.Warnings)

	// The share is computed as given, not renormalized.
	net, _ := resp.Records[0].NetAmount.Float64()
	assert.InDelta(t, 450.00, net, 0.001)
}

func TestDistributeValidation(t *testing.T) {
	env := setupRentTest(t)
	ctx := context.Background()

	p1 := env.property(t, "Casa A")

	_, err := env.svc.Distribute(ctx, domain.DistributeRequest{
		PropertyID: p1.ID.String(), Month: 13, Year: 2025, GrossRent: 1000, TotalFee: 100,
	})
	require.ErrorIs(t, err, domain.ErrInvalidMonth)

	_, err = env.svc.Distribute(ctx, domain.DistributeRequest{
		PropertyID: p1.ID.String(), Month: 4, Year: 1999, GrossRent: 1000, TotalFee: 100,
	})
	require.ErrorIs(t, err, domain.ErrInvalidYear)

	_, err = env.svc.Distribute(ctx, domain.DistributeRequest{
		PropertyID: "not-a-number", Month: 4, Year: 2025, GrossRent: 1000, TotalFee: 100,
	})
	require.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestRecomputeAllFailSoft(t *testing.T) {
	env := setupRentTest(t)
	ctx := context.Background()

	good := env.property(t, "Casa A")
	orphan := env.property(t, "Casa B")
	a := env.owner(t, "Alice")
	env.participate(t, good, a, "100")

	for month := 1; month <= 9; month++ {
		_, err := env.svc.Distribute(ctx, domain.DistributeRequest{
			PropertyID: good.ID.String(), Month: month, Year: 2025,
			GrossRent: 1000, TotalFee: 100,
		})
		require.NoError(t, err)
	}

	// A stored row whose property lost every participation. The
	// recompute must fail for this period without aborting the rest.
	require.NoError(t, env.db.Create(&domain.RentRecord{
		ID:           env.node.Generate(),
		PropertyID:   orphan.ID,
		OwnerID:      a.ID,
		Month:        1,
		Year:         2025,
		RegisteredAt: env.clock.Now(),
		CreatedAt:    env.clock.Now(),
		UpdatedAt:    env.clock.Now(),
	}).Error)

	summary, err := env.svc.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Total)
	assert.Equal(t, 9, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Errors, 1)
	assert.InDelta(t, 90.0, summary.SuccessRate, 0.001)

	// Recomputed rows keep their original figures.
	var row domain.RentRecord
	require.NoError(t, env.db.First(&row, "property_id = ? AND month = ?", good.ID, 3).Error)
	net, _ := row.NetAmount.Float64()
	assert.InDelta(t, 900.00, net, 0.001)
}

func TestComputeTaxes(t *testing.T) {
	env := setupRentTest(t)
	ctx := context.Background()

	// Below the exemption threshold nothing is withheld.
	resp, err := env.svc.ComputeTaxes(ctx, domain.ComputeTaxesRequest{NetAmount: 1903.98})
	require.NoError(t, err)
	assert.InDelta(t, 1903.98, resp.Base, 0.001)
	assert.Zero(t, resp.Withheld)
	assert.InDelta(t, 1903.98, resp.NetAfterWithholding, 0.001)

	resp, err = env.svc.ComputeTaxes(ctx, domain.ComputeTaxesRequest{NetAmount: 3000})
	require.NoError(t, err)
	assert.InDelta(t, 3000.00, resp.Base, 0.001)
	assert.InDelta(t, 450.00, resp.Withheld, 0.001)
	assert.InDelta(t, 2550.00, resp.NetAfterWithholding, 0.001)

	resp, err = env.svc.ComputeTaxes(ctx, domain.ComputeTaxesRequest{NetAmount: 2000.004})
	require.NoError(t, err)
	assert.InDelta(t, 2000.00, resp.Base, 0.001)
	assert.InDelta(t, 300.00, resp.Withheld, 0.001)
}

func TestCreateRejectsDuplicatePeriod(t *testing.T) {
	env := setupRentTest(t)
	ctx := context.Background()

	p1 := env.property(t, "Casa A")
	a := env.owner(t, "Alice")

	_, err := env.svc.Create(ctx, domain.CreateRentRecordRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(),
		Month: 4, Year: 2025, TotalFee: 100, OwnerFee: 100, NetAmount: 900,
	})
	require.NoError(t, err)

	_, err = env.svc.Create(ctx, domain.CreateRentRecordRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(),
		Month: 4, Year: 2025, TotalFee: 100, OwnerFee: 100, NetAmount: 900,
	})
	require.ErrorIs(t, err, domain.ErrDuplicatePeriod)
}

func TestReportsAndLastPeriod(t *testing.T) {
	env := setupRentTest(t)
	ctx := context.Background()

	p1 := env.property(t, "Casa A")
	a := env.owner(t, "Alice")
	b := env.owner(t, "Bruno")
	env.participate(t, p1, a, "60")
	env.participate(t, p1, b, "40")

	for _, month := range []int{1, 2} {
		_, err := env.svc.Distribute(ctx, domain.DistributeRequest{
			PropertyID: p1.ID.String(), Month: month, Year: 2025,
			GrossRent: 1000, TotalFee: 100,
		})
		require.NoError(t, err)
	}

	totals, err := env.svc.TotalsByProperty(ctx, domain.YearRequest{Year: 2025})
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.InDelta(t, 1800.00, totals[0].Net, 0.001)

	months, err := env.svc.TotalsByMonth(ctx, domain.YearRequest{Year: 2025})
	require.NoError(t, err)
	assert.Len(t, months, 2)

	years, err := env.svc.AvailableYears(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2025}, years)

	last, err := env.svc.LastPeriod(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, last.Month)
	assert.Equal(t, 2025, last.Year)
}

func TestMatrixByOwnerAndProperty(t *testing.T) {
	env := setupRentTest(t)
	ctx := context.Background()

	p1 := env.property(t, "Casa A")
	p2 := env.property(t, "Casa B")
	a := env.owner(t, "Alice")
	b := env.owner(t, "Bruno")
	env.participate(t, p1, a, "60")
	env.participate(t, p1, b, "40")
	env.participate(t, p2, a, "100")

	for _, month := range []int{1, 2} {
		for _, p := range []propertydomain.Property{p1, p2} {
			_, err := env.svc.Distribute(ctx, domain.DistributeRequest{
				PropertyID: p.ID.String(), Month: month, Year: 2025,
				GrossRent: 1000, TotalFee: 100,
			})
			require.NoError(t, err)
		}
	}

	cellNet := func(cells []domain.MatrixCell, owner ownerdomain.Owner, property propertydomain.Property) float64 {
		for _, cell := range cells {
			if cell.OwnerID == owner.ID && cell.PropertyID == property.ID {
				return cell.Net
			}
		}
		t.Fatalf("no cell for owner %s property %s", owner.ID, property.ID)
		return 0
	}

	// One month keeps each property's split in its own column.
	cells, err := env.svc.Matrix(ctx, domain.MatrixRequest{Month: 1, Year: 2025})
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.InDelta(t, 540.00, cellNet(cells, a, p1), 0.001)
	assert.InDelta(t, 900.00, cellNet(cells, a, p2), 0.001)
	assert.InDelta(t, 360.00, cellNet(cells, b, p1), 0.001)

	// Month zero sums every month of the year.
	cells, err = env.svc.Matrix(ctx, domain.MatrixRequest{Year: 2025})
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.InDelta(t, 1080.00, cellNet(cells, a, p1), 0.001)
	assert.InDelta(t, 1800.00, cellNet(cells, a, p2), 0.001)
	assert.InDelta(t, 720.00, cellNet(cells, b, p1), 0.001)

	_, err = env.svc.Matrix(ctx, domain.MatrixRequest{Month: 13, Year: 2025})
	require.ErrorIs(t, err, domain.ErrInvalidMonth)
}
