package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/openimob/rentshare/internal/audit/auditcontext"
	"github.com/openimob/rentshare/internal/audit/domain"
	"github.com/openimob/rentshare/internal/audit/repository"
	"github.com/openimob/rentshare/internal/authcontext"
	"github.com/openimob/rentshare/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupAuditTest(t *testing.T) (*gorm.DB, domain.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.AuditLog{}))

	node, err := snowflake.NewNode(6)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:    db,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return db, svc
}

func TestRecordCapturesRequestContext(t *testing.T) {
	db, svc := setupAuditTest(t)

	ctx := authcontext.WithIdentity(context.Background(), authcontext.Identity{
		UserID: "u-42",
		Role:   "administrator",
	})
	ctx = auditcontext.WithIPAddress(ctx, "203.0.113.7")
	ctx = auditcontext.WithUserAgent(ctx, "curl/8.5")

	target := "12345"
	require.NoError(t, svc.Record(ctx, "participation.replace_version", "participation", &target, map[string]any{
		"count": 3,
	}))

	var entry domain.AuditLog
	require.NoError(t, db.First(&entry).Error)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, "u-42", *entry.ActorID)
	assert.Equal(t, "administrator", entry.ActorRole)
	assert.Equal(t, "participation.replace_version", entry.Action)
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, "12345", *entry.TargetID)
	require.NotNil(t, entry.IPAddress)
	assert.Equal(t, "203.0.113.7", *entry.IPAddress)
}

func TestRecordAnonymousActor(t *testing.T) {
	db, svc := setupAuditTest(t)

	require.NoError(t, svc.Record(context.Background(), "rent.recompute_all", "rent", nil, nil))

	var entry domain.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Nil(t, entry.ActorID)
	assert.Empty(t, entry.ActorRole)
	assert.Nil(t, entry.TargetID)
}

func TestRecordRejectsBlankAction(t *testing.T) {
	_, svc := setupAuditTest(t)

	err := svc.Record(context.Background(), "  ", "rent", nil, nil)
	require.ErrorIs(t, err, domain.ErrInvalidAction)
}

func TestListFilters(t *testing.T) {
	_, svc := setupAuditTest(t)
	ctx := context.Background()

	for _, action := range []string{"property.create", "property.delete", "owner.create"} {
		require.NoError(t, svc.Record(ctx, action, "property", nil, nil))
	}

	all, err := svc.List(ctx, domain.ListAuditLogRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)

	filtered, err := svc.List(ctx, domain.ListAuditLogRequest{Action: "property.create"})
	require.NoError(t, err)
	require.Len(t, filtered.AuditLogs, 1)
	assert.Equal(t, "property.create", filtered.AuditLogs[0].Action)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.List(ctx, domain.ListAuditLogRequest{StartAt: &start, EndAt: &end})
	require.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}
