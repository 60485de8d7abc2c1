package repositories

import (
	"context"

	"ecoscan/internal/models"
)

// LeaderboardPatch carries an upsert. Nil fields keep their stored value on an
// existing row and default to zero on a new one.
type LeaderboardPatch struct {
	Name        string
	Type        models.LeaderboardType
	Score       *int
	PurityScore *float64
	TotalScans  *int
	LogoURL     *string
}

// LeaderboardRepository defines the interface for leaderboard data access.
type LeaderboardRepository interface {
	Top(ctx context.Context, typ models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error)
	Upsert(ctx context.Context, patch LeaderboardPatch) (*models.LeaderboardEntry, bool, error)
	ReplaceAll(ctx context.Context, entries []models.LeaderboardEntry) error
}
