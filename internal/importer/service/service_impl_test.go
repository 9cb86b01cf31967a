package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/openimob/rentshare/internal/clock"
	"github.com/openimob/rentshare/internal/config"
	"github.com/openimob/rentshare/internal/importer/domain"
	"github.com/openimob/rentshare/internal/importer/repository"
	ownerdomain "github.com/openimob/rentshare/internal/owner/domain"
	ownerrepository "github.com/openimob/rentshare/internal/owner/repository"
	participationdomain "github.com/openimob/rentshare/internal/participation/domain"
	participationrepository "github.com/openimob/rentshare/internal/participation/repository"
	participationservice "github.com/openimob/rentshare/internal/participation/service"
	propertydomain "github.com/openimob/rentshare/internal/property/domain"
	propertyrepository "github.com/openimob/rentshare/internal/property/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupImportTest(t *testing.T) (*gorm.DB, domain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&propertydomain.Property{},
		&ownerdomain.Owner{},
		&participationdomain.Participation{},
		&participationdomain.ParticipationHistory{},
		&domain.ImportLog{},
	))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	log := zaptest.NewLogger(t)

	participations := participationservice.New(participationservice.Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Clock:      fake,
		Calc:       &config.CalcConfigHolder{},
		Repo:       participationrepository.Provide(),
		Properties: propertyrepository.Provide(),
		Owners:     ownerrepository.Provide(),
	})
	svc := New(Params{
		DB:             db,
		Log:            log,
		GenID:          node,
		Clock:          fake,
		Repo:           repository.Provide(),
		Participations: participations,
	})
	return db, svc, node
}

func TestImportReplacesVersion(t *testing.T) {
	db, svc, node := setupImportTest(t)
	ctx := context.Background()

	property := propertydomain.Property{
		ID: node.Generate(), Name: "Casa A", Address: "Rua 1",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&property).Error)
	a := ownerdomain.Owner{ID: node.Generate(), Name: "Alice", Active: true}
	b := ownerdomain.Owner{ID: node.Generate(), Name: "Bruno", Active: true}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	resp, err := svc.Import(ctx, domain.ImportRequest{
		Filename: "planilha-2025.csv",
		Rows: []domain.ImportRow{
			{PropertyID: property.ID.String(), OwnerID: a.ID.String(), Percentage: "60"},
			{PropertyID: property.ID.String(), OwnerID: b.ID.String(), Percentage: "40"},
			{PropertyID: property.ID.String(), OwnerID: b.ID.String(), Percentage: "   "},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, resp.State)
	assert.Equal(t, 3, resp.TotalRows)
	assert.Equal(t, 2, resp.Imported)
	assert.Equal(t, 1, resp.Skipped)
	assert.NotEmpty(t, resp.VersionID)

	var count int64
	require.NoError(t, db.Model(&participationdomain.Participation{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	entry, err := svc.Get(ctx, domain.GetImportRequest{ID: resp.ImportID})
	require.NoError(t, err)
	assert.Equal(t, domain.StateCompleted, entry.State)
	assert.Equal(t, resp.VersionID, entry.VersionID)
	require.NotNil(t, entry.FinishedAt)
}

func TestImportFailureIsLogged(t *testing.T) {
	db, svc, node := setupImportTest(t)
	ctx := context.Background()

	// Unknown property, the replace fails and the log records it.
	_, err := svc.Import(ctx, domain.ImportRequest{
		Filename: "quebrada.csv",
		Rows: []domain.ImportRow{
			{PropertyID: node.Generate().String(), OwnerID: node.Generate().String(), Percentage: "100"},
		},
	})
	require.ErrorIs(t, err, participationdomain.ErrPropertyNotFound)

	var logs []domain.ImportLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.StateFailed, logs[0].State)
	assert.Contains(t, string(logs[0].Detail), "participation_property_not_found")

	list, err := svc.List(ctx, domain.ListImportsRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
}

func TestImportRejectsEmptyPayload(t *testing.T) {
	_, svc, _ := setupImportTest(t)

	_, err := svc.Import(context.Background(), domain.ImportRequest{Filename: "vazia.csv"})
	require.ErrorIs(t, err, domain.ErrNoRows)
}
