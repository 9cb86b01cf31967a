package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/internal/rent/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.RentRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, record *domain.RentRecord) error {
	return db.WithContext(ctx).Save(record).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.RentRecord, error) {
	var record domain.RentRecord
	err := db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, propertyID, ownerID snowflake.ID, month, year int) (*domain.RentRecord, error) {
	var record domain.RentRecord
	err := db.WithContext(ctx).
		Where("property_id = ? AND owner_id = ? AND month = ? AND year = ?", propertyID, ownerID, month, year).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRentFilter) ([]domain.RentRecord, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.RentRecord{})
	if filter.PropertyID != 0 {
		stmt = stmt.Where("property_id = ?", filter.PropertyID)
	}
	if filter.OwnerID != 0 {
		stmt = stmt.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Month != 0 {
		stmt = stmt.Where("month = ?", filter.Month)
	}
	if filter.Year != 0 {
		stmt = stmt.Where("year = ?", filter.Year)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []domain.RentRecord
	err := stmt.
		Order("year desc, month desc, property_id asc, owner_id asc").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.RentRecord{}, "id = ?", id).Error
}

func (r *repo) ListPeriods(ctx context.Context, db *gorm.DB) ([]domain.Period, error) {
	var periods []domain.Period
	err := db.WithContext(ctx).
		Model(&domain.RentRecord{}).
		Select("property_id, month, year").
		Group("property_id, month, year").
		Order("year asc, month asc, property_id asc").
		Scan(&periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

func (r *repo) FindPeriodFigures(ctx context.Context, db *gorm.DB, period domain.Period) (domain.PeriodFigures, error) {
	var figures domain.PeriodFigures
	err := db.WithContext(ctx).
		Model(&domain.RentRecord{}).
		Where("property_id = ? AND month = ? AND year = ?", period.PropertyID, period.Month, period.Year).
		Select("COALESCE(SUM(owner_fee + net_amount), 0) AS gross, COALESCE(MAX(total_fee), 0) AS total_fee, COUNT(*) AS rows").
		Scan(&figures).Error
	return figures, err
}

func (r *repo) TotalsByProperty(ctx context.Context, db *gorm.DB, year int) ([]domain.PropertyTotal, error) {
	stmt := db.WithContext(ctx).Model(&domain.RentRecord{})
	if year != 0 {
		stmt = stmt.Where("year = ?", year)
	}
	var totals []domain.PropertyTotal
	err := stmt.
		Select("property_id, COALESCE(SUM(owner_fee + net_amount), 0) AS gross, COALESCE(SUM(owner_fee), 0) AS fees, COALESCE(SUM(net_amount), 0) AS net, COUNT(*) AS records").
		Group("property_id").
		Order("property_id asc").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *repo) TotalsByMonth(ctx context.Context, db *gorm.DB, year int) ([]domain.MonthTotal, error) {
	stmt := db.WithContext(ctx).Model(&domain.RentRecord{})
	if year != 0 {
		stmt = stmt.Where("year = ?", year)
	}
	var totals []domain.MonthTotal
	err := stmt.
		Select("month, COALESCE(SUM(owner_fee + net_amount), 0) AS gross, COALESCE(SUM(owner_fee), 0) AS fees, COALESCE(SUM(net_amount), 0) AS net, COUNT(*) AS records").
		Group("month").
		Order("month asc").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *repo) Matrix(ctx context.Context, db *gorm.DB, month, year int) ([]domain.MatrixCell, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.RentRecord{}).
		Where("year = ?", year)
	if month != 0 {
		stmt = stmt.Where("month = ?", month)
	}
	var cells []domain.MatrixCell
	err := stmt.
		Select("owner_id, property_id, COALESCE(SUM(net_amount), 0) AS net").
		Group("owner_id, property_id").
		Order("owner_id asc, property_id asc").
		Scan(&cells).Error
	if err != nil {
		return nil, err
	}
	return cells, nil
}

func (r *repo) DistinctYears(ctx context.Context, db *gorm.DB) ([]int, error) {
	var years []int
	err := db.WithContext(ctx).
		Model(&domain.RentRecord{}).
		Distinct("year").
		Order("year desc").
		Pluck("year", &years).Error
	if err != nil {
		return nil, err
	}
	return years, nil
}

func (r *repo) LastPeriod(ctx context.Context, db *gorm.DB) (int, int, time.Time, bool, error) {
	var record domain.RentRecord
	err := db.WithContext(ctx).
		Order("year desc, month desc, registered_at desc").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, time.Time{}, false, nil
	}
	if err != nil {
		return 0, 0, time.Time{}, false, err
	}
	return record.Month, record.Year, record.RegisteredAt, true, nil
}
