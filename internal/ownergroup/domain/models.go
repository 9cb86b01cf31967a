// Package domain holds the owner group model. A group names a set of
// owners so reports and transfers can address them collectively.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// OwnerGroup is a named set of owners. Membership is stored as a JSON
// array of owner ids.
type OwnerGroup struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"type:text;not null;uniqueIndex" json:"name"`
	MemberIDs datatypes.JSON `gorm:"type:jsonb" json:"member_ids"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (OwnerGroup) TableName() string { return "owner_groups" }
