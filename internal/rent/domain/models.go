// Package domain contains the rent distribution model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// RentRecord is one owner's computed share of a property's rent for a
// calendar month. Unique per (property, owner, month, year).
type RentRecord struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	PropertyID   snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_rent_period,priority:1" json:"property_id"`
	OwnerID      snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_rent_period,priority:2" json:"owner_id"`
	Month        int             `gorm:"not null;uniqueIndex:ux_rent_period,priority:3;check:month >= 1 AND month <= 12" json:"month"`
	Year         int             `gorm:"not null;uniqueIndex:ux_rent_period,priority:4" json:"year"`
	TotalFee     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_fee"`
	OwnerFee     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"owner_fee"`
	NetAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"net_amount"`
	RegisteredAt time.Time       `gorm:"not null" json:"registered_at"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (RentRecord) TableName() string { return "rent_records" }

// GrossAmount reconstructs the owner's gross share from the stored
// fee and net values.
func (r RentRecord) GrossAmount() decimal.Decimal {
	return r.OwnerFee.Add(r.NetAmount)
}
