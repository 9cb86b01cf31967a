package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ListFilter narrows List results.
type ListFilter struct {
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
	Offset     int
	Limit      int
}

// Repository is the persistence boundary for audit logs.
type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, tx *gorm.DB, filter ListFilter) ([]AuditLog, int64, error)
}
