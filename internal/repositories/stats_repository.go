package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ecoscan/internal/models"
)

// StatsRepository serves the read-only analytics queries.
type StatsRepository interface {
	DailyByDate(ctx context.Context, date string) (*models.DailyStat, error)
	DailyRange(ctx context.Context, start, end string) ([]models.DailyStat, error)
	CountScans(ctx context.Context) (int64, error)
	CountScansSince(ctx context.Context, since time.Time) (int64, error)
	CategoryBreakdown(ctx context.Context) ([]models.CategoryCount, error)
}

// GORMStatsRepository is a GORM implementation of StatsRepository.
type GORMStatsRepository struct {
	db *gorm.DB
}

// NewGORMStatsRepository creates a new instance of GORMStatsRepository.
func NewGORMStatsRepository(db *gorm.DB) *GORMStatsRepository {
	return &GORMStatsRepository{db: db}
}

// DailyByDate returns the row for date, or a NotFound error.
func (r *GORMStatsRepository) DailyByDate(ctx context.Context, date string) (*models.DailyStat, error) {
	var stat models.DailyStat
	if err := r.db.WithContext(ctx).First(&stat, "date = ?", date).Error; err != nil {
		return nil, translate(err, "get daily stats")
	}
	return &stat, nil
}

// DailyRange returns rows with start <= date <= end, newest first. The bounds
// are not reordered, so start > end yields nothing.
func (r *GORMStatsRepository) DailyRange(ctx context.Context, start, end string) ([]models.DailyStat, error) {
	stats := []models.DailyStat{}
	err := r.db.WithContext(ctx).
		Where("date BETWEEN ? AND ?", start, end).
		Order("date DESC").
		Find(&stats).Error
	if err != nil {
		return nil, translate(err, "list daily stats")
	}
	return stats, nil
}

func (r *GORMStatsRepository) CountScans(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Scan{}).Count(&n).Error; err != nil {
		return 0, translate(err, "count scans")
	}
	return n, nil
}

func (r *GORMStatsRepository) CountScansSince(ctx context.Context, since time.Time) (int64, error) {
	n, err := scansSince(ctx, r.db, since)
	if err != nil {
		return 0, translate(err, "count recent scans")
	}
	return n, nil
}

// CategoryBreakdown groups all scans by category with their mean confidence.
func (r *GORMStatsRepository) CategoryBreakdown(ctx context.Context) ([]models.CategoryCount, error) {
	rows := []models.CategoryCount{}
	err := r.db.WithContext(ctx).Model(&models.Scan{}).
		Select("category, COUNT(*) AS count, AVG(confidence) AS avg_confidence").
		Group("category").
		Order("category").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "category breakdown")
	}
	return rows, nil
}
