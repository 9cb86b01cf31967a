package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/pkg/db/pagination"
	"gorm.io/gorm"
)

// Dependencies summarizes what still references a property.
// Participations spans every ledger version.
type Dependencies struct {
	RentRecords         int64
	Participations      int64
	EmptyParticipations int64
}

type ListPropertyFilter struct {
	Name   string
	Rented *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, property *Property) error
	Update(ctx context.Context, db *gorm.DB, property *Property) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Property, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Property, error)
	List(ctx context.Context, db *gorm.DB, filter ListPropertyFilter, page pagination.Pagination) ([]*Property, error)
	Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	// Dependency checks against the latest participation version and the
	// rent ledger; deletion is refused while any of them are nonzero.
	FindDependencies(ctx context.Context, db *gorm.DB, id snowflake.ID) (Dependencies, error)
	PurgeEmptyParticipations(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error)
}
