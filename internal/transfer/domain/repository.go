package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the persistence boundary for transfers.
type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, transfer *Transfer) error
	Update(ctx context.Context, tx *gorm.DB, transfer *Transfer) error
	FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Transfer, error)
	List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]Transfer, int64, error)
	ListByGroup(ctx context.Context, tx *gorm.DB, groupID snowflake.ID) ([]Transfer, error)
	Delete(ctx context.Context, tx *gorm.DB, id snowflake.ID) error
}
