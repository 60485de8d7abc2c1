package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecoscan/internal/models"
)

// GORMScanRepository is a GORM implementation of ScanRepository.
type GORMScanRepository struct {
	db *gorm.DB
}

// NewGORMScanRepository creates a new instance of GORMScanRepository.
func NewGORMScanRepository(db *gorm.DB) *GORMScanRepository {
	return &GORMScanRepository{
		db: db,
	}
}

// counterColumn picks the daily_stats column a category increments.
func counterColumn(c models.Category) (string, error) {
	switch c {
	case models.CategoryRecycle:
		return "recycle_count", nil
	case models.CategoryCompost:
		return "compost_count", nil
	case models.CategoryTrash:
		return "trash_count", nil
	default:
		return "", fmt.Errorf("unknown category %q", c)
	}
}

// Record inserts the scan and moves today's counters in one transaction, so
// total_scans always equals the sum of the category counters.
func (r *GORMScanRepository) Record(ctx context.Context, rec ScanRecord) error {
	col, err := counterColumn(rec.Scan.Category)
	if err != nil {
		return err
	}
	date := rec.Day.Format(models.DateLayout)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		firstOfDay := false
		if rec.Scan.UserID != nil {
			// row lock on the owner serializes that user's first-of-day check
			var owner models.User
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").Where("id = ?", *rec.Scan.UserID).Limit(1).Find(&owner).Error; err != nil {
				return fmt.Errorf("lock user: %w", err)
			}
			var prior int64
			if err := tx.Model(&models.Scan{}).
				Where("user_id = ? AND created_at >= ? AND created_at < ?", *rec.Scan.UserID, rec.Day, rec.Day.AddDate(0, 0, 1)).
				Count(&prior).Error; err != nil {
				return fmt.Errorf("count prior scans: %w", err)
			}
			firstOfDay = prior == 0
		}

		if err := tx.Create(rec.Scan).Error; err != nil {
			return fmt.Errorf("insert scan: %w", err)
		}

		stat := models.DailyStat{Date: date, TotalScans: 1}
		switch rec.Scan.Category {
		case models.CategoryRecycle:
			stat.RecycleCount = 1
		case models.CategoryCompost:
			stat.CompostCount = 1
		case models.CategoryTrash:
			stat.TrashCount = 1
		}
		updates := map[string]interface{}{
			"total_scans": gorm.Expr("daily_stats.total_scans + 1"),
			col:           gorm.Expr("daily_stats." + col + " + 1"),
		}
		if firstOfDay {
			stat.UniqueUsers = 1
			updates["unique_users"] = gorm.Expr("daily_stats.unique_users + 1")
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoUpdates: clause.Assignments(updates),
		}).Create(&stat).Error; err != nil {
			return fmt.Errorf("bump daily stats: %w", err)
		}

		if rec.SessionID != "" {
			if err := tx.Model(&models.Session{}).
				Where("session_id = ?", rec.SessionID).
				UpdateColumn("scan_count", gorm.Expr("scan_count + 1")).Error; err != nil {
				return fmt.Errorf("bump session scan count: %w", err)
			}
		}
		return nil
	})
	return translate(err, "record scan")
}

// ListByUser returns one page of a user's scans, newest first, plus the total count.
func (r *GORMScanRepository) ListByUser(ctx context.Context, userID uint, category *models.Category, offset, limit int) ([]models.Scan, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Scan{}).Where("user_id = ?", userID)
	if category != nil {
		q = q.Where("category = ?", *category)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count user scans")
	}

	scans := make([]models.Scan, 0, limit)
	if err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&scans).Error; err != nil {
		return nil, 0, translate(err, "list user scans")
	}
	return scans, total, nil
}

// StatsByUser aggregates a user's scans by category.
func (r *GORMScanRepository) StatsByUser(ctx context.Context, userID uint) (*models.ScanStats, error) {
	var stats models.ScanStats
	err := r.db.WithContext(ctx).Model(&models.Scan{}).
		Select(`COUNT(*) AS total_scans,
			COALESCE(SUM(CASE WHEN category = 'recycle' THEN 1 ELSE 0 END), 0) AS recycle_count,
			COALESCE(SUM(CASE WHEN category = 'compost' THEN 1 ELSE 0 END), 0) AS compost_count,
			COALESCE(SUM(CASE WHEN category = 'trash' THEN 1 ELSE 0 END), 0) AS trash_count,
			AVG(confidence) AS avg_confidence`).
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, translate(err, "user scan stats")
	}
	return &stats, nil
}

// scansSince counts scans created at or after t.
func scansSince(ctx context.Context, db *gorm.DB, t time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&models.Scan{}).Where("created_at >= ?", t).Count(&n).Error
	return n, err
}
