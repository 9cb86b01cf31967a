package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/internal/owner/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, owner *domain.Owner) error {
	return db.WithContext(ctx).Create(owner).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, owner *domain.Owner) error {
	return db.WithContext(ctx).Save(owner).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Owner, error) {
	var owner domain.Owner
	err := db.WithContext(ctx).First(&owner, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.Owner, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var owners []domain.Owner
	err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("name asc, surname asc").
		Find(&owners).Error
	if err != nil {
		return nil, err
	}
	return owners, nil
}

func (r *repo) FindByDocument(ctx context.Context, db *gorm.DB, document string) (*domain.Owner, error) {
	var owner domain.Owner
	err := db.WithContext(ctx).First(&owner, "document = ?", document).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListOwnerFilter) ([]domain.Owner, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Owner{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where("name LIKE ? OR surname LIKE ? OR document LIKE ?", like, like, like)
	}
	if filter.ActiveOnly {
		stmt = stmt.Where("active = ?", true)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var owners []domain.Owner
	err := stmt.
		Order("name asc, surname asc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&owners).Error
	if err != nil {
		return nil, 0, err
	}
	return owners, total, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Owner{}, "id = ?", id).Error
}

func (r *repo) FindDependencies(ctx context.Context, db *gorm.DB, id snowflake.ID) (domain.Dependencies, error) {
	var deps domain.Dependencies

	err := db.WithContext(ctx).
		Table("rent_records").
		Where("owner_id = ?", id).
		Count(&deps.RentRecords).Error
	if err != nil {
		return deps, err
	}

	// Any version of the ledger blocks deletion, not just the latest.
	// Historical rows must never point at a missing owner.
	err = db.WithContext(ctx).
		Table("participations").
		Where("owner_id = ? AND percentage > 0", id).
		Count(&deps.Participations).Error
	if err != nil {
		return deps, err
	}

	err = db.WithContext(ctx).
		Table("participations").
		Where("owner_id = ? AND percentage = 0", id).
		Count(&deps.EmptyParticipations).Error
	return deps, err
}

func (r *repo) PurgeEmptyParticipations(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).
		Exec("DELETE FROM participations WHERE owner_id = ? AND percentage = 0", id)
	return result.RowsAffected, result.Error
}

func (r *repo) FindStats(ctx context.Context, db *gorm.DB, id snowflake.ID) (domain.Stats, error) {
	var stats domain.Stats

	latest := db.WithContext(ctx).
		Table("participations").
		Select("MAX(registered_at)")

	err := db.WithContext(ctx).
		Table("participations").
		Where("owner_id = ? AND registered_at = (?) AND percentage > 0", id, latest).
		Distinct("property_id").
		Count(&stats.Properties).Error
	if err != nil {
		return stats, err
	}

	row := db.WithContext(ctx).
		Table("rent_records").
		Where("owner_id = ?", id).
		Select("COALESCE(SUM(net_amount), 0)").
		Row()
	if err := row.Scan(&stats.TotalNet); err != nil {
		return stats, err
	}

	var period struct {
		Year  int
		Month int
	}
	err = db.WithContext(ctx).
		Table("rent_records").
		Where("owner_id = ?", id).
		Select("year, month").
		Order("year desc, month desc").
		Limit(1).
		Scan(&period).Error
	if err != nil {
		return stats, err
	}
	stats.LastPeriodYear = period.Year
	stats.LastPeriodMon = period.Month
	return stats, nil
}
