package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the persistence boundary for import logs.
type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, log *ImportLog) error
	Update(ctx context.Context, tx *gorm.DB, log *ImportLog) error
	FindByID(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*ImportLog, error)
	List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]ImportLog, int64, error)
}
