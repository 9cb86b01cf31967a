// Package domain holds the transfer model. A transfer moves an amount
// between owners of a group, outside the regular rent distribution.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transfer records one movement tied to an owner group. Shares holds
// the per-owner breakdown as JSON; source and target are optional and
// survive owner deletion as nulls.
type Transfer struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	GroupID       snowflake.ID    `gorm:"not null;index" json:"group_id"`
	Name          string          `gorm:"type:text;not null" json:"name"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Shares        datatypes.JSON  `gorm:"type:jsonb" json:"shares"`
	SourceOwnerID *snowflake.ID   `json:"source_owner_id"`
	TargetOwnerID *snowflake.ID   `json:"target_owner_id"`
	StartedAt     time.Time       `gorm:"not null" json:"started_at"`
	EndedAt       *time.Time      `json:"ended_at"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Transfer) TableName() string { return "transfers" }
