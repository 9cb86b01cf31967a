// Package domain contains persistence models for owners.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Owner represents a person or company holding property stakes.
type Owner struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Surname      string       `gorm:"type:text" json:"surname"`
	Document     *string      `gorm:"type:text;uniqueIndex:ux_owner_document" json:"document"`
	DocumentType string       `gorm:"type:text" json:"document_type"`
	Address      string       `gorm:"type:text" json:"address"`
	Phone        string       `gorm:"type:text" json:"phone"`
	Email        string       `gorm:"type:text" json:"email"`
	Bank         string       `gorm:"type:text" json:"bank"`
	Branch       string       `gorm:"type:text" json:"branch"`
	Account      string       `gorm:"type:text" json:"account"`
	AccountType  string       `gorm:"type:text" json:"account_type"`
	Notes        string       `gorm:"type:text" json:"notes"`
	Active       bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Owner) TableName() string { return "owners" }

// FullName joins name and surname.
func (o Owner) FullName() string {
	if strings.TrimSpace(o.Surname) == "" {
		return o.Name
	}
	return o.Name + " " + o.Surname
}
