package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/internal/ownergroup/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, group *domain.OwnerGroup) error {
	return db.WithContext(ctx).Create(group).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, group *domain.OwnerGroup) error {
	return db.WithContext(ctx).Save(group).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.OwnerGroup, error) {
	var group domain.OwnerGroup
	err := db.WithContext(ctx).First(&group, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.OwnerGroup, error) {
	var group domain.OwnerGroup
	err := db.WithContext(ctx).First(&group, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.OwnerGroup, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.OwnerGroup{})

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var groups []domain.OwnerGroup
	err := stmt.
		Order("name asc").
		Offset(offset).
		Limit(limit).
		Find(&groups).Error
	if err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.OwnerGroup{}, "id = ?", id).Error
}
