package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidAction    = errors.New("audit_invalid_action")
	ErrInvalidTimeRange = errors.New("audit_invalid_time_range")
)

type ListAuditLogRequest struct {
	Action     string     `form:"action"`
	TargetType string     `form:"target_type"`
	TargetID   string     `form:"target_id"`
	StartAt    *time.Time `form:"start_at" time_format:"2006-01-02T15:04:05Z07:00"`
	EndAt      *time.Time `form:"end_at" time_format:"2006-01-02T15:04:05Z07:00"`
	Offset     int        `form:"offset,default=0"`
	Limit      int        `form:"limit,default=100"`
}

type ListAuditLogResponse struct {
	AuditLogs []AuditLog `json:"audit_logs"`
	Total     int64      `json:"total"`
}

// Service records and lists audit entries. Record never fails the
// surrounding operation; write errors are logged and swallowed by the
// caller's discretion.
type Service interface {
	Record(ctx context.Context, action, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (*ListAuditLogResponse, error)
}
