package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrVersionNotFound    = errors.New("participation_version_not_found")
	ErrPropertyNotFound   = errors.New("participation_property_not_found")
	ErrOwnerNotFound      = errors.New("participation_owner_not_found")
	ErrInvalidPercentage  = errors.New("participation_invalid_percentage")
	ErrEmptyVersion       = errors.New("participation_empty_version")
	ErrTimestampExhausted = errors.New("participation_timestamp_exhausted")
)

// ActiveVersionID is the sentinel accepted by HistoryByVersion to
// address the live active set instead of a stored history version.
const ActiveVersionID = "active"

type GetVersionAtRequest struct {
	Timestamp time.Time `json:"-"`
}

type GetVersionAsOfRequest struct {
	Date time.Time `json:"-"`
}

type VersionResponse struct {
	RegisteredAt *time.Time      `json:"registered_at"`
	Items        []Participation `json:"items"`
}

type UpsertRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
	OwnerID    string `json:"owner_id" binding:"required"`
	Percentage string `json:"percentage" binding:"required"`
}

type ReplaceItem struct {
	PropertyID string `json:"property_id" binding:"required"`
	OwnerID    string `json:"owner_id" binding:"required"`
	Percentage string `json:"percentage" binding:"required"`
}

type ReplaceVersionRequest struct {
	Items []ReplaceItem `json:"items" binding:"required"`
}

type ReplaceVersionResponse struct {
	VersionID    string    `json:"version_id"`
	RegisteredAt time.Time `json:"registered_at"`
	Count        int       `json:"count"`
	Warnings     []string  `json:"warnings,omitempty"`
}

type SnapshotResponse struct {
	VersionID string `json:"version_id"`
	Created   bool   `json:"created"`
	Rows      int    `json:"rows"`
}

// VersionSummary is one entry of the merged version listing.
type VersionSummary struct {
	VersionID string    `json:"version_id"`
	Label     string    `json:"label"`
	Date      time.Time `json:"date"`
	Source    string    `json:"source"`
	Rows      int64     `json:"rows"`
}

type HistoryByVersionRequest struct {
	VersionID string `json:"-"`
}

type HistoryByPropertyRequest struct {
	PropertyID string `json:"-"`
}

// Service is the participation versioning engine.
type Service interface {
	// GetLatestVersion returns the complete ledger version carrying
	// the newest registration timestamp, empty when no rows exist.
	GetLatestVersion(ctx context.Context) (*VersionResponse, error)

	// GetVersionAt returns the version registered at exactly the
	// given timestamp.
	GetVersionAt(ctx context.Context, req GetVersionAtRequest) (*VersionResponse, error)

	// GetVersionAsOf returns the newest version registered at or
	// before the end of the given day.
	GetVersionAsOf(ctx context.Context, req GetVersionAsOfRequest) (*VersionResponse, error)

	// Upsert creates a new full-ledger version identical to the
	// latest one except for the targeted pair.
	Upsert(ctx context.Context, req UpsertRequest) (*Participation, error)

	// ReplaceVersion replaces the whole active set in one new version
	// and mirrors it into history.
	ReplaceVersion(ctx context.Context, req ReplaceVersionRequest) (*ReplaceVersionResponse, error)

	// SnapshotNow copies the active set into history, skipping the
	// write when the newest history version is already identical.
	SnapshotNow(ctx context.Context) (*SnapshotResponse, error)

	// ListVersions merges history versions and active-set timestamps
	// into one descending list, one entry per day per source.
	ListVersions(ctx context.Context) ([]VersionSummary, error)

	HistoryByVersion(ctx context.Context, req HistoryByVersionRequest) ([]ParticipationHistory, error)
	HistoryByProperty(ctx context.Context, req HistoryByPropertyRequest) ([]ParticipationHistory, error)
}
