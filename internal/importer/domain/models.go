// Package domain contains the bulk import model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StateProcessing = "processing"
	StateCompleted  = "completed"
	StateFailed     = "failed"
)

// ImportLog records one bulk participation import run.
type ImportLog struct {
	ID         snowflake.ID   `gorm:"primaryKey" json:"id"`
	Filename   string         `gorm:"type:text;not null" json:"filename"`
	State      string         `gorm:"type:text;not null" json:"state"`
	TotalRows  int            `gorm:"not null" json:"total_rows"`
	Imported   int            `gorm:"not null" json:"imported"`
	Skipped    int            `gorm:"not null" json:"skipped"`
	VersionID  string         `gorm:"type:text" json:"version_id"`
	Detail     datatypes.JSON `gorm:"type:jsonb" json:"detail"`
	StartedAt  time.Time      `gorm:"not null" json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at"`
	DurationMs int64          `gorm:"not null;default:0" json:"duration_ms"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ImportLog) TableName() string { return "import_logs" }
