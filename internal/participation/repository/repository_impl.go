package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openimob/rentshare/internal/participation/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindLatestTimestamp(ctx context.Context, db *gorm.DB) (time.Time, bool, error) {
	var latest domain.Participation
	err := db.WithContext(ctx).
		Order("registered_at desc").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return latest.RegisteredAt.UTC(), true, nil
}

func (r *repo) FindLatestTimestampBefore(ctx context.Context, db *gorm.DB, at time.Time) (time.Time, bool, error) {
	var latest domain.Participation
	err := db.WithContext(ctx).
		Where("registered_at <= ?", at).
		Order("registered_at desc").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return latest.RegisteredAt.UTC(), true, nil
}

func (r *repo) FindByTimestamp(ctx context.Context, db *gorm.DB, ts time.Time) ([]domain.Participation, error) {
	var rows []domain.Participation
	err := db.WithContext(ctx).
		Where("registered_at = ?", ts).
		Order("property_id asc, owner_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) TimestampExists(ctx context.Context, db *gorm.DB, ts time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Participation{}).
		Where("registered_at = ?", ts).
		Count(&count).Error
	return count > 0, err
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, rows []domain.Participation) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(rows, 200).Error
}

func (r *repo) ListTimestamps(ctx context.Context, db *gorm.DB) ([]domain.VersionStamp, error) {
	var stamps []domain.VersionStamp
	err := db.WithContext(ctx).
		Model(&domain.Participation{}).
		Select("registered_at, COUNT(*) AS rows").
		Group("registered_at").
		Order("registered_at desc").
		Scan(&stamps).Error
	if err != nil {
		return nil, err
	}
	for i := range stamps {
		stamps[i].RegisteredAt = stamps[i].RegisteredAt.UTC()
	}
	return stamps, nil
}

func (r *repo) InsertHistoryBatch(ctx context.Context, db *gorm.DB, rows []domain.ParticipationHistory) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(rows, 200).Error
}

func (r *repo) ListHistoryVersions(ctx context.Context, db *gorm.DB) ([]domain.HistoryVersion, error) {
	var versions []domain.HistoryVersion
	err := db.WithContext(ctx).
		Model(&domain.ParticipationHistory{}).
		Select("version_id, snapshot_at, COUNT(*) AS rows").
		Group("version_id, snapshot_at").
		Order("snapshot_at desc").
		Scan(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *repo) FindHistoryByVersion(ctx context.Context, db *gorm.DB, versionID string) ([]domain.ParticipationHistory, error) {
	var rows []domain.ParticipationHistory
	err := db.WithContext(ctx).
		Where("version_id = ?", versionID).
		Order("property_id asc, owner_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) FindHistoryByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]domain.ParticipationHistory, error) {
	var rows []domain.ParticipationHistory
	err := db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("snapshot_at desc, owner_id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) FindLatestHistoryVersion(ctx context.Context, db *gorm.DB) (domain.HistoryVersion, []domain.ParticipationHistory, bool, error) {
	var latest domain.ParticipationHistory
	err := db.WithContext(ctx).
		Order("snapshot_at desc").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.HistoryVersion{}, nil, false, nil
	}
	if err != nil {
		return domain.HistoryVersion{}, nil, false, err
	}

	rows, err := r.FindHistoryByVersion(ctx, db, latest.VersionID)
	if err != nil {
		return domain.HistoryVersion{}, nil, false, err
	}
	version := domain.HistoryVersion{
		VersionID:  latest.VersionID,
		SnapshotAt: latest.SnapshotAt.UTC(),
		Rows:       int64(len(rows)),
	}
	return version, rows, true, nil
}
