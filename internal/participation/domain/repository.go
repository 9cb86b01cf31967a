package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// HistoryVersion summarizes one stored history version.
type HistoryVersion struct {
	VersionID  string
	SnapshotAt time.Time
	Rows       int64
}

// VersionStamp summarizes one ledger version by its timestamp.
type VersionStamp struct {
	RegisteredAt time.Time
	Rows         int64
}

// Repository is the persistence boundary for the participation ledger.
type Repository interface {
	// FindLatestTimestamp returns the maximum registration timestamp,
	// or ok=false when the ledger is empty.
	FindLatestTimestamp(ctx context.Context, tx *gorm.DB) (time.Time, bool, error)

	// FindLatestTimestampBefore returns the newest registration
	// timestamp at or before the given instant.
	FindLatestTimestampBefore(ctx context.Context, tx *gorm.DB, at time.Time) (time.Time, bool, error)

	// FindByTimestamp returns every row of the version registered at
	// exactly the given timestamp.
	FindByTimestamp(ctx context.Context, tx *gorm.DB, ts time.Time) ([]Participation, error)

	// TimestampExists reports whether any row carries the timestamp.
	TimestampExists(ctx context.Context, tx *gorm.DB, ts time.Time) (bool, error)

	// InsertBatch persists a full new version in one shot.
	InsertBatch(ctx context.Context, tx *gorm.DB, rows []Participation) error

	// ListTimestamps returns all distinct registration timestamps with
	// their row counts, newest first.
	ListTimestamps(ctx context.Context, tx *gorm.DB) ([]VersionStamp, error)

	InsertHistoryBatch(ctx context.Context, tx *gorm.DB, rows []ParticipationHistory) error
	ListHistoryVersions(ctx context.Context, tx *gorm.DB) ([]HistoryVersion, error)
	FindHistoryByVersion(ctx context.Context, tx *gorm.DB, versionID string) ([]ParticipationHistory, error)
	FindHistoryByProperty(ctx context.Context, tx *gorm.DB, propertyID snowflake.ID) ([]ParticipationHistory, error)

	// FindLatestHistoryVersion returns the most recent history version
	// and its rows, or ok=false when no history exists.
	FindLatestHistoryVersion(ctx context.Context, tx *gorm.DB) (HistoryVersion, []ParticipationHistory, bool, error)
}
