package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/internal/property/domain"
	"github.com/openimob/rentshare/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Create(property).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Save(property).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).First(&property, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).First(&property, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPropertyFilter, page pagination.Pagination) ([]*domain.Property, error) {
	var properties []*domain.Property
	stmt := db.WithContext(ctx).Model(&domain.Property{})
	if filter.Name != "" {
		stmt = stmt.Where("name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Rented != nil {
		stmt = stmt.Where("rented = ?", *filter.Rented)
	}
	page = page.Normalize()
	err := stmt.
		Order("name asc").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *repo) Exists(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Property{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Property{}, "id = ?", id).Error
}

func (r *repo) FindDependencies(ctx context.Context, db *gorm.DB, id snowflake.ID) (domain.Dependencies, error) {
	var deps domain.Dependencies

	err := db.WithContext(ctx).
		Table("rent_records").
		Where("property_id = ?", id).
		Count(&deps.RentRecords).Error
	if err != nil {
		return deps, err
	}

	// Any version of the ledger blocks deletion, not just the latest.
	err = db.WithContext(ctx).
		Table("participations").
		Where("property_id = ? AND percentage > 0", id).
		Count(&deps.Participations).Error
	if err != nil {
		return deps, err
	}

	err = db.WithContext(ctx).
		Table("participations").
		Where("property_id = ? AND percentage = 0", id).
		Count(&deps.EmptyParticipations).Error
	return deps, err
}

func (r *repo) PurgeEmptyParticipations(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).
		Exec("DELETE FROM participations WHERE property_id = ? AND percentage = 0", id)
	return result.RowsAffected, result.Error
}
