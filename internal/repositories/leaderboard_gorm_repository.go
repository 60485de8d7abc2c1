package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecoscan/internal/models"
)

// GORMLeaderboardRepository is a GORM implementation of LeaderboardRepository.
type GORMLeaderboardRepository struct {
	db *gorm.DB
}

// NewGORMLeaderboardRepository creates a new instance of GORMLeaderboardRepository.
func NewGORMLeaderboardRepository(db *gorm.DB) *GORMLeaderboardRepository {
	return &GORMLeaderboardRepository{db: db}
}

// Top ranks entries of one type by score, then purity score.
func (r *GORMLeaderboardRepository) Top(ctx context.Context, typ models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	entries := make([]models.LeaderboardEntry, 0, limit)
	err := r.db.WithContext(ctx).
		Where("type = ?", typ).
		Order("score DESC, purity_score DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, translate(err, "get leaderboard")
	}
	return entries, nil
}

// Upsert applies patch to the (name, type) row, creating it if needed. The
// boolean result is true when a new row was created.
func (r *GORMLeaderboardRepository) Upsert(ctx context.Context, patch LeaderboardPatch) (*models.LeaderboardEntry, bool, error) {
	var entry models.LeaderboardEntry
	created := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ? AND type = ?", patch.Name, patch.Type).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			entry = models.LeaderboardEntry{Name: patch.Name, Type: patch.Type, LogoURL: patch.LogoURL}
			if patch.Score != nil {
				entry.Score = *patch.Score
			}
			if patch.PurityScore != nil {
				entry.PurityScore = *patch.PurityScore
			}
			if patch.TotalScans != nil {
				entry.TotalScans = *patch.TotalScans
			}
			created = true
			return tx.Create(&entry).Error
		}
		if err != nil {
			return err
		}

		updates := map[string]interface{}{"updated_at": time.Now()}
		if patch.Score != nil {
			updates["score"] = *patch.Score
		}
		if patch.PurityScore != nil {
			updates["purity_score"] = *patch.PurityScore
		}
		if patch.TotalScans != nil {
			updates["total_scans"] = *patch.TotalScans
		}
		if patch.LogoURL != nil {
			updates["logo_url"] = *patch.LogoURL
		}
		if err := tx.Model(&models.LeaderboardEntry{}).Where("id = ?", entry.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&entry, entry.ID).Error
	})
	if err != nil {
		return nil, false, translate(err, "upsert leaderboard entry")
	}
	return &entry, created, nil
}

// ReplaceAll writes every entry, overwriting the stored values of existing
// (name, type) rows. All or nothing.
func (r *GORMLeaderboardRepository) ReplaceAll(ctx context.Context, entries []models.LeaderboardEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}, {Name: "type"}},
				DoUpdates: clause.AssignmentColumns([]string{"score", "purity_score", "total_scans", "logo_url", "updated_at"}),
			}).Create(&entries[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return translate(err, "seed leaderboard")
}
