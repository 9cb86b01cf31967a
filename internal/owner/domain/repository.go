package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// ListOwnerFilter narrows List results.
type ListOwnerFilter struct {
	Search     string
	ActiveOnly bool
	Offset     int
	Limit      int
}

// Dependencies counts records that reference an owner. Participations
// spans every ledger version; a single historical row blocks deletion.
type Dependencies struct {
	RentRecords         int64
	Participations      int64
	EmptyParticipations int64
}

// Stats aggregates an owner's footprint across the system.
type Stats struct {
	Properties     int64
	TotalNet       float64
	LastPeriodYear int
	LastPeriodMon  int
}

// Repository is the persistence boundary for owners.
type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, owner *Owner) error
	Update(ctx context.Context, tx *gorm.DB, owner *Owner) error
	FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Owner, error)
	FindByIDs(ctx context.Context, tx *gorm.DB, ids []snowflake.ID) ([]Owner, error)
	FindByDocument(ctx context.Context, tx *gorm.DB, document string) (*Owner, error)
	List(ctx context.Context, tx *gorm.DB, filter ListOwnerFilter) ([]Owner, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
	FindDependencies(ctx context.Context, tx *gorm.DB, id snowflake.ID) (Dependencies, error)
	PurgeEmptyParticipations(ctx context.Context, tx *gorm.DB, id snowflake.ID) (int64, error)
	FindStats(ctx context.Context, tx *gorm.DB, id snowflake.ID) (Stats, error)
}
