package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/internal/importer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, log *domain.ImportLog) error {
	return db.WithContext(ctx).Create(log).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, log *domain.ImportLog) error {
	return db.WithContext(ctx).Save(log).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ImportLog, error) {
	var log domain.ImportLog
	err := db.WithContext(ctx).First(&log, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ImportLog, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Model(&domain.ImportLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []domain.ImportLog
	err := db.WithContext(ctx).
		Order("started_at desc").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
