// Package domain contains persistence models for properties.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Property represents a rental property.
type Property struct {
	ID             snowflake.ID     `gorm:"primaryKey" json:"id"`
	Name           string           `gorm:"type:text;not null;uniqueIndex:ux_property_name" json:"name"`
	Address        string           `gorm:"type:text;not null" json:"address"`
	Kind           string           `gorm:"type:text" json:"kind"`
	TotalArea      *decimal.Decimal `gorm:"type:numeric(10,2)" json:"total_area"`
	BuiltArea      *decimal.Decimal `gorm:"type:numeric(10,2)" json:"built_area"`
	AssessedValue  *decimal.Decimal `gorm:"type:numeric(15,2)" json:"assessed_value"`
	MarketValue    *decimal.Decimal `gorm:"type:numeric(15,2)" json:"market_value"`
	MonthlyTax     *decimal.Decimal `gorm:"type:numeric(10,2)" json:"monthly_tax"`
	MonthlyCondoFee *decimal.Decimal `gorm:"type:numeric(10,2)" json:"monthly_condo_fee"`
	Bedrooms       *int             `gorm:"" json:"bedrooms"`
	Bathrooms      *int             `gorm:"" json:"bathrooms"`
	GarageSpots    int              `gorm:"not null;default:0" json:"garage_spots"`
	Rented         bool             `gorm:"not null;default:false" json:"rented"`
	CreatedAt      time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Property) TableName() string { return "properties" }
