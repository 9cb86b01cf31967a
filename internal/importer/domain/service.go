package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("import_not_found")
	ErrInvalidID = errors.New("import_invalid_id")
	ErrNoRows    = errors.New("import_no_rows")
)

// ImportRow is one parsed spreadsheet row, already resolved to ids by
// the upload layer.
type ImportRow struct {
	PropertyID string `json:"property_id" binding:"required"`
	OwnerID    string `json:"owner_id" binding:"required"`
	Percentage string `json:"percentage" binding:"required"`
}

type ImportRequest struct {
	Filename string      `json:"filename"`
	Rows     []ImportRow `json:"rows" binding:"required"`
}

type ImportResponse struct {
	ImportID  string   `json:"import_id"`
	State     string   `json:"state"`
	VersionID string   `json:"version_id,omitempty"`
	TotalRows int      `json:"total_rows"`
	Imported  int      `json:"imported"`
	Skipped   int      `json:"skipped"`
	Warnings  []string `json:"warnings,omitempty"`
}

type GetImportRequest struct {
	ID string `json:"-"`
}

type ListImportsRequest struct {
	Offset int `form:"offset,default=0"`
	Limit  int `form:"limit,default=100"`
}

type ListImportsResponse struct {
	Imports []ImportLog `json:"imports"`
	Total   int64       `json:"total"`
}

// Service runs bulk participation imports.
type Service interface {
	// Import replaces the active ledger version with the given rows
	// and records the run.
	Import(ctx context.Context, req ImportRequest) (*ImportResponse, error)

	Get(ctx context.Context, req GetImportRequest) (*ImportLog, error)
	List(ctx context.Context, req ListImportsRequest) (*ListImportsResponse, error)
}
