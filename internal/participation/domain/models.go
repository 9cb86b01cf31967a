// Package domain contains the participation ledger model.
//
// Every Participation row sharing one RegisteredAt timestamp forms a
// complete version of the ownership ledger across all properties. The
// ledger is append-only: rows are superseded by newer timestamps,
// never edited in place.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Participation records that an owner holds a percentage of a property
// as of a registration timestamp.
type Participation struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	PropertyID   snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_participation_version,priority:2" json:"property_id"`
	OwnerID      snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_participation_version,priority:3" json:"owner_id"`
	Percentage   decimal.Decimal `gorm:"type:numeric(11,8);not null" json:"percentage"`
	RegisteredAt time.Time       `gorm:"not null;index;uniqueIndex:ux_participation_version,priority:1" json:"registered_at"`
	Active       bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Participation) TableName() string { return "participations" }

// ParticipationHistory is a write-once mirror of one ledger version.
type ParticipationHistory struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	VersionID    string          `gorm:"type:text;not null;index" json:"version_id"`
	PropertyID   snowflake.ID    `gorm:"not null;index" json:"property_id"`
	OwnerID      snowflake.ID    `gorm:"not null;index" json:"owner_id"`
	Percentage   decimal.Decimal `gorm:"type:numeric(11,8);not null" json:"percentage"`
	RegisteredAt time.Time       `gorm:"not null" json:"registered_at"`
	Active       bool            `gorm:"not null;default:true" json:"active"`
	SnapshotAt   time.Time       `gorm:"not null;index" json:"snapshot_at"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ParticipationHistory) TableName() string { return "participation_history" }
