package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the persistence boundary for owner groups.
type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, group *OwnerGroup) error
	Update(ctx context.Context, tx *gorm.DB, group *OwnerGroup) error
	FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*OwnerGroup, error)
	FindByName(ctx context.Context, tx *gorm.DB, name string) (*OwnerGroup, error)
	List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]OwnerGroup, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
}
