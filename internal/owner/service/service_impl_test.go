package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/openimob/rentshare/internal/owner/domain"
	"github.com/openimob/rentshare/internal/owner/repository"
	participationdomain "github.com/openimob/rentshare/internal/participation/domain"
	propertydomain "github.com/openimob/rentshare/internal/property/domain"
	rentdomain "github.com/openimob/rentshare/internal/rent/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupOwnerTest(t *testing.T) (*gorm.DB, domain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&propertydomain.Property{},
		&domain.Owner{},
		&participationdomain.Participation{},
		&rentdomain.RentRecord{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return db, svc, node
}

func TestCreateOwnerWithDocument(t *testing.T) {
	_, svc, _ := setupOwnerTest(t)
	ctx := context.Background()

	owner, err := svc.Create(ctx, domain.CreateOwnerRequest{
		Name:     "Alice",
		Surname:  "Souza",
		Document: "529.982.247-25",
	})
	require.NoError(t, err)
	require.NotNil(t, owner.Document)
	assert.Equal(t, "52998224725", *owner.Document)
	assert.Equal(t, domain.DocumentTypeCPF, owner.DocumentType)
	assert.Equal(t, "Alice Souza", owner.FullName())
	assert.True(t, owner.Active)

	_, err = svc.Create(ctx, domain.CreateOwnerRequest{
		Name:     "Other",
		Document: "52998224725",
	})
	require.ErrorIs(t, err, domain.ErrDuplicateDocument)

	_, err = svc.Create(ctx, domain.CreateOwnerRequest{
		Name:     "Bad",
		Document: "111.111.111-11",
	})
	require.ErrorIs(t, err, domain.ErrInvalidDocument)

	_, err = svc.Create(ctx, domain.CreateOwnerRequest{Name: "   "})
	require.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestUpdateOwnerClearsDocument(t *testing.T) {
	_, svc, _ := setupOwnerTest(t)
	ctx := context.Background()

	owner, err := svc.Create(ctx, domain.CreateOwnerRequest{
		Name:     "Empresa",
		Document: "11.222.333/0001-81",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeCNPJ, owner.DocumentType)

	empty := ""
	updated, err := svc.Update(ctx, domain.UpdateOwnerRequest{
		ID:       owner.ID.String(),
		Document: &empty,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Document)
	assert.Empty(t, updated.DocumentType)
}

func TestDeleteOwnerGuards(t *testing.T) {
	db, svc, node := setupOwnerTest(t)
	ctx := context.Background()

	owner, err := svc.Create(ctx, domain.CreateOwnerRequest{Name: "Alice"})
	require.NoError(t, err)

	property := propertydomain.Property{
		ID: node.Generate(), Name: "Casa A", Address: "Rua 1",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&property).Error)

	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&participationdomain.Participation{
		ID: node.Generate(), PropertyID: property.ID, OwnerID: owner.ID,
		Percentage: decimal.NewFromInt(100), RegisteredAt: now, Active: true, CreatedAt: now,
	}).Error)

	_, err = svc.Delete(ctx, domain.DeleteOwnerRequest{ID: owner.ID.String()})
	require.ErrorIs(t, err, domain.ErrHasParticipations)

	// Zeroed-out stakes no longer block deletion and get purged.
	require.NoError(t, db.Model(&participationdomain.Participation{}).
		Where("owner_id = ?", owner.ID).
		Update("percentage", decimal.Zero).Error)

	resp, err := svc.Delete(ctx, domain.DeleteOwnerRequest{ID: owner.ID.String()})
	require.NoError(t, err)
	assert.True(t, resp.Deleted)
	assert.Equal(t, int64(1), resp.EmptyParticipationsRemoved)

	var remaining int64
	require.NoError(t, db.Model(&participationdomain.Participation{}).
		Where("owner_id = ?", owner.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	_, err = svc.Get(ctx, domain.GetOwnerRequest{ID: owner.ID.String()})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteOwnerBlockedByHistoricalVersion(t *testing.T) {
	db, svc, node := setupOwnerTest(t)
	ctx := context.Background()

	alice, err := svc.Create(ctx, domain.CreateOwnerRequest{Name: "Alice"})
	require.NoError(t, err)
	bruno, err := svc.Create(ctx, domain.CreateOwnerRequest{Name: "Bruno"})
	require.NoError(t, err)

	property := propertydomain.Property{
		ID: node.Generate(), Name: "Casa A", Address: "Rua 1",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&property).Error)

	// First version splits the property, the next hands it all to
	// Bruno. Alice keeps a stake only in the older version.
	v1 := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	v2 := v1.Add(time.Hour)
	rows := []participationdomain.Participation{
		{ID: node.Generate(), PropertyID: property.ID, OwnerID: alice.ID,
			Percentage: decimal.NewFromInt(50), RegisteredAt: v1, Active: true, CreatedAt: v1},
		{ID: node.Generate(), PropertyID: property.ID, OwnerID: bruno.ID,
			Percentage: decimal.NewFromInt(50), RegisteredAt: v1, Active: true, CreatedAt: v1},
		{ID: node.Generate(), PropertyID: property.ID, OwnerID: bruno.ID,
			Percentage: decimal.NewFromInt(100), RegisteredAt: v2, Active: true, CreatedAt: v2},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	_, err = svc.Delete(ctx, domain.DeleteOwnerRequest{ID: alice.ID.String()})
	require.ErrorIs(t, err, domain.ErrHasParticipations)

	// The historical row survives untouched.
	var count int64
	require.NoError(t, db.Model(&participationdomain.Participation{}).
		Where("owner_id = ?", alice.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDeleteOwnerWithRentRecords(t *testing.T) {
	db, svc, node := setupOwnerTest(t)
	ctx := context.Background()

	owner, err := svc.Create(ctx, domain.CreateOwnerRequest{Name: "Bruno"})
	require.NoError(t, err)

	property := propertydomain.Property{
		ID: node.Generate(), Name: "Casa B", Address: "Rua 2",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&property).Error)

	now := time.Now().UTC()
	require.NoError(t, db.Create(&rentdomain.RentRecord{
		ID: node.Generate(), PropertyID: property.ID, OwnerID: owner.ID,
		Month: 3, Year: 2025,
		TotalFee: decimal.NewFromInt(100), OwnerFee: decimal.NewFromInt(100),
		NetAmount: decimal.NewFromInt(900),
		RegisteredAt: now, CreatedAt: now, UpdatedAt: now,
	}).Error)

	_, err = svc.Delete(ctx, domain.DeleteOwnerRequest{ID: owner.ID.String()})
	require.ErrorIs(t, err, domain.ErrHasRentRecords)
}

func TestListOwnersFilter(t *testing.T) {
	_, svc, _ := setupOwnerTest(t)
	ctx := context.Background()

	for _, name := range []string{"Alice", "Bruno", "Clara"} {
		_, err := svc.Create(ctx, domain.CreateOwnerRequest{Name: name})
		require.NoError(t, err)
	}
	inactive := false
	all, err := svc.List(ctx, domain.ListOwnersRequest{})
	require.NoError(t, err)
	require.Len(t, all.Owners, 3)

	_, err = svc.Update(ctx, domain.UpdateOwnerRequest{
		ID: all.Owners[0].ID.String(), Active: &inactive,
	})
	require.NoError(t, err)

	active, err := svc.List(ctx, domain.ListOwnersRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active.Owners, 2)
	assert.Equal(t, int64(2), active.Total)

	search, err := svc.List(ctx, domain.ListOwnersRequest{Search: "bru"})
	require.NoError(t, err)
	require.Len(t, search.Owners, 1)
	assert.Equal(t, "Bruno", search.Owners[0].Name)
}
