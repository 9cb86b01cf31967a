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
	"github.com/openimob/rentshare/internal/participation/domain"
	"github.com/openimob/rentshare/internal/participation/repository"
	propertydomain "github.com/openimob/rentshare/internal/property/domain"
	propertyrepository "github.com/openimob/rentshare/internal/property/repository"
	rentdomain "github.com/openimob/rentshare/internal/rent/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupLedgerTest(t *testing.T) (*gorm.DB, *clock.FakeClock, domain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&propertydomain.Property{},
		&ownerdomain.Owner{},
		&domain.Participation{},
		&domain.ParticipationHistory{},
		&rentdomain.RentRecord{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:         db,
		Log:        zaptest.NewLogger(t),
		GenID:      node,
		Clock:      fake,
		Calc:       &config.CalcConfigHolder{},
		Repo:       repository.Provide(),
		Properties: propertyrepository.Provide(),
		Owners:     ownerrepository.Provide(),
	})
	return db, fake, svc, node
}

func seedProperty(t *testing.T, db *gorm.DB, node *snowflake.Node, name string) propertydomain.Property {
	t.Helper()
	property := propertydomain.Property{
		ID:        node.Generate(),
		Name:      name,
		Address:   "Rua Teste 1",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&property).Error)
	return property
}

func seedOwner(t *testing.T, db *gorm.DB, node *snowflake.Node, name string) ownerdomain.Owner {
	t.Helper()
	owner := ownerdomain.Owner{
		ID:        node.Generate(),
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&owner).Error)
	return owner
}

func TestUpsertCreatesCompleteVersion(t *testing.T) {
	db, fake, svc, node := setupLedgerTest(t)
	ctx := context.Background()

	p1 := seedProperty(t, db, node, "Casa A")
	p2 := seedProperty(t, db, node, "Casa B")
	a := seedOwner(t, db, node, "Alice")
	b := seedOwner(t, db, node, "Bruno")

	_, err := svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "60",
	})
	require.NoError(t, err)
	fake.Advance(time.Second)
	_, err = svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: b.ID.String(), Percentage: "40",
	})
	require.NoError(t, err)
	fake.Advance(time.Second)
	_, err = svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p2.ID.String(), OwnerID: a.ID.String(), Percentage: "100",
	})
	require.NoError(t, err)

	// The latest version carries every pair across all properties.
	latest, err := svc.GetLatestVersion(ctx)
	require.NoError(t, err)
	require.Len(t, latest.Items, 3)

	byPair := map[string]decimal.Decimal{}
	for _, item := range latest.Items {
		byPair[item.PropertyID.String()+"|"+item.OwnerID.String()] = item.Percentage
		assert.True(t, item.RegisteredAt.Equal(*latest.RegisteredAt))
	}
	assert.True(t, byPair[p1.ID.String()+"|"+a.ID.String()].Equal(decimal.NewFromInt(60)))
	assert.True(t, byPair[p1.ID.String()+"|"+b.ID.String()].Equal(decimal.NewFromInt(40)))
	assert.True(t, byPair[p2.ID.String()+"|"+a.ID.String()].Equal(decimal.NewFromInt(100)))

	// Changing one pair copies the others forward untouched.
	fake.Advance(time.Second)
	_, err = svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "55",
	})
	require.NoError(t, err)

	next, err := svc.GetLatestVersion(ctx)
	require.NoError(t, err)
	require.Len(t, next.Items, 3)
	assert.True(t, next.RegisteredAt.After(*latest.RegisteredAt))
	for _, item := range next.Items {
		switch {
		case item.PropertyID == p1.ID && item.OwnerID == a.ID:
			assert.True(t, item.Percentage.Equal(decimal.RequireFromString("55")))
		default:
			prior := byPair[item.PropertyID.String()+"|"+item.OwnerID.String()]
			assert.True(t, item.Percentage.Equal(prior))
		}
	}

	// Old versions stay in place, superseded rather than deleted.
	var count int64
	require.NoError(t, db.Model(&domain.Participation{}).Count(&count).Error)
	assert.Equal(t, int64(1+2+3+3), count)
}

func TestUpsertTimestampCollision(t *testing.T) {
	db, _, svc, node := setupLedgerTest(t)
	ctx := context.Background()

	p1 := seedProperty(t, db, node, "Casa A")
	a := seedOwner(t, db, node, "Alice")
	b := seedOwner(t, db, node, "Bruno")

	// The clock never advances, so both calls see the same "now"
	// and the second must step forward by microseconds.
	first, err := svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "50",
	})
	require.NoError(t, err)
	second, err := svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: b.ID.String(), Percentage: "50",
	})
	require.NoError(t, err)

	assert.NotEqual(t, first.RegisteredAt, second.RegisteredAt)
	assert.True(t, second.RegisteredAt.After(first.RegisteredAt))

	latest, err := svc.GetLatestVersion(ctx)
	require.NoError(t, err)
	assert.Len(t, latest.Items, 2)
}

func TestUpsertUnknownReferences(t *testing.T) {
	db, _, svc, node := setupLedgerTest(t)
	ctx := context.Background()

	p1 := seedProperty(t, db, node, "Casa A")
	a := seedOwner(t, db, node, "Alice")

	_, err := svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: node.Generate().String(), OwnerID: a.ID.String(), Percentage: "100",
	})
	require.ErrorIs(t, err, domain.ErrPropertyNotFound)

	_, err = svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: node.Generate().String(), Percentage: "100",
	})
	require.ErrorIs(t, err, domain.ErrOwnerNotFound)

	var count int64
	require.NoError(t, db.Model(&domain.Participation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReplaceVersionScenario(t *testing.T) {
	db, fake, svc, node := setupLedgerTest(t)
	ctx := context.Background()

	p1 := seedProperty(t, db, node, "Casa A")
	p2 := seedProperty(t, db, node, "Casa B")
	a := seedOwner(t, db, node, "Alice")
	b := seedOwner(t, db, node, "Bruno")
	c := seedOwner(t, db, node, "Clara")

	_, err := svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "60",
	})
	require.NoError(t, err)
	fake.Advance(time.Second)
	_, err = svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: b.ID.String(), Percentage: "40",
	})
	require.NoError(t, err)
	fake.Advance(time.Second)

	resp, err := svc.ReplaceVersion(ctx, domain.ReplaceVersionRequest{
		Items: []domain.ReplaceItem{
			{PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "70"},
			{PropertyID: p1.ID.String(), OwnerID: b.ID.String(), Percentage: "30"},
			{PropertyID: p2.ID.String(), OwnerID: c.ID.String(), Percentage: "100"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Count)
	assert.NotEmpty(t, resp.VersionID)

	latest, err := svc.GetLatestVersion(ctx)
	require.NoError(t, err)
	require.Len(t, latest.Items, 3)

	// Prior versions are superseded, not deleted.
	var total int64
	require.NoError(t, db.Model(&domain.Participation{}).Count(&total).Error)
	assert.Greater(t, total, int64(3))

	// History mirrors the new version under its timestamp id.
	history, err := svc.HistoryByVersion(ctx, domain.HistoryByVersionRequest{VersionID: resp.VersionID})
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestReplaceVersionSumsDuplicatePairs(t *testing.T) {
	db, _, svc, node := setupLedgerTest(t)
	ctx := context.Background()

	p1 := seedProperty(t, db, node, "Casa A")
	a := seedOwner(t, db, node, "Alice")

	resp, err := svc.ReplaceVersion(ctx, domain.ReplaceVersionRequest{
		Items: []domain.ReplaceItem{
			{PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "40"},
			{PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "35,5"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)

	latest, err := svc.GetLatestVersion(ctx)
	require.NoError(t, err)
	require.Len(t, latest.Items, 1)
	assert.True(t, latest.Items[0].Percentage.Equal(decimal.RequireFromString("75.5")))
	assert.NotEmpty(t, resp.Warnings)
}

func TestReplaceVersionUnknownReferences(t *testing.T) {
	db, _, svc, node := setupLedgerTest(t)
	ctx := context.Background()

	p1 := seedProperty(t, db, node, "Casa A")
	a := seedOwner(t, db, node, "Alice")

	_, err := svc.ReplaceVersion(ctx, domain.ReplaceVersionRequest{
		Items: []domain.ReplaceItem{
			{PropertyID: node.Generate().String(), OwnerID: a.ID.String(), Percentage: "100"},
		},
	})
	require.ErrorIs(t, err, domain.ErrPropertyNotFound)

	_, err = svc.ReplaceVersion(ctx, domain.ReplaceVersionRequest{
		Items: []domain.ReplaceItem{
			{PropertyID: p1.ID.String(), OwnerID: node.Generate().String(), Percentage: "100"},
		},
	})
	require.ErrorIs(t, err, domain.ErrOwnerNotFound)

	// Nothing half-written.
	var count int64
	require.NoError(t, db.Model(&domain.Participation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSnapshotIdempotence(t *testing.T) {
	db, fake, svc, node := setupLedgerTest(t)
	ctx := context.Background()

	p1 := seedProperty(t, db, node, "Casa A")
	a := seedOwner(t, db, node, "Alice")
	_, err := svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "100",
	})
	require.NoError(t, err)

	fake.Advance(time.Minute)
	first, err := svc.SnapshotNow(ctx)
	require.NoError(t, err)

	fake.Advance(time.Minute)
	second, err := svc.SnapshotNow(ctx)
	require.NoError(t, err)

	assert.Equal(t, first.VersionID, second.VersionID)
	assert.False(t, second.Created)

	var rows int64
	require.NoError(t, db.Model(&domain.ParticipationHistory{}).
		Where("version_id = ?", first.VersionID).
		Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	// A mutation invalidates the idempotence match.
	fake.Advance(time.Minute)
	_, err = svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "80",
	})
	require.NoError(t, err)

	fake.Advance(time.Minute)
	third, err := svc.SnapshotNow(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.VersionID, third.VersionID)
	assert.True(t, third.Created)
}

func TestGetVersionAtUnknownTimestamp(t *testing.T) {
	_, _, svc, _ := setupLedgerTest(t)

	_, err := svc.GetVersionAt(context.Background(), domain.GetVersionAtRequest{
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, domain.ErrVersionNotFound)
}

func TestGetVersionAsOf(t *testing.T) {
	db, fake, svc, node := setupLedgerTest(t)
	ctx := context.Background()

	p1 := seedProperty(t, db, node, "Casa A")
	a := seedOwner(t, db, node, "Alice")

	_, err := svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "100",
	})
	require.NoError(t, err)

	fake.Advance(48 * time.Hour)
	_, err = svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "50",
	})
	require.NoError(t, err)

	// The day of the first version resolves to the old percentages.
	resp, err := svc.GetVersionAsOf(ctx, domain.GetVersionAsOfRequest{
		Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].Percentage.Equal(decimal.NewFromInt(100)))

	_, err = svc.GetVersionAsOf(ctx, domain.GetVersionAsOfRequest{
		Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, domain.ErrVersionNotFound)
}

func TestListVersionsMergesSources(t *testing.T) {
	db, fake, svc, node := setupLedgerTest(t)
	ctx := context.Background()

	p1 := seedProperty(t, db, node, "Casa A")
	a := seedOwner(t, db, node, "Alice")

	_, err := svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "100",
	})
	require.NoError(t, err)
	fake.Advance(time.Minute)
	_, err = svc.SnapshotNow(ctx)
	require.NoError(t, err)

	versions, err := svc.ListVersions(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, versions)

	sources := map[string]bool{}
	for i, v := range versions {
		sources[v.Source] = true
		if i > 0 {
			assert.False(t, versions[i-1].Date.Before(v.Date))
		}
	}
	assert.True(t, sources["ledger"])
	assert.True(t, sources["history"])
}

func TestHistoryByVersionActiveAlias(t *testing.T) {
	db, _, svc, node := setupLedgerTest(t)
	ctx := context.Background()

	p1 := seedProperty(t, db, node, "Casa A")
	a := seedOwner(t, db, node, "Alice")
	_, err := svc.Upsert(ctx, domain.UpsertRequest{
		PropertyID: p1.ID.String(), OwnerID: a.ID.String(), Percentage: "100",
	})
	require.NoError(t, err)

	rows, err := svc.HistoryByVersion(ctx, domain.HistoryByVersionRequest{VersionID: domain.ActiveVersionID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.ActiveVersionID, rows[0].VersionID)

	_, err = svc.HistoryByVersion(ctx, domain.HistoryByVersionRequest{VersionID: "v_19990101_000000_deadbeef"})
	require.ErrorIs(t, err, domain.ErrVersionNotFound)
}
