package models

import "time"

// LeaderboardType is the kind of group ranked on a leaderboard.
type LeaderboardType string

const (
	LeaderboardSchool       LeaderboardType = "school"
	LeaderboardNeighborhood LeaderboardType = "neighborhood"
)

// Valid reports whether t is a known leaderboard type.
func (t LeaderboardType) Valid() bool {
	return t == LeaderboardSchool || t == LeaderboardNeighborhood
}

// LeaderboardEntry is a named school or neighborhood with its standings.
// The (name, type) pair is unique.
type LeaderboardEntry struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"not null;uniqueIndex:idx_leaderboard_name_type"`
	Type        LeaderboardType `json:"type" gorm:"type:varchar(16);not null;index;uniqueIndex:idx_leaderboard_name_type;check:chk_leaderboard_type,type IN ('school','neighborhood')"`
	Score       int             `json:"score" gorm:"not null;default:0"`
	PurityScore float64         `json:"purity_score" gorm:"not null;default:0"`
	TotalScans  int             `json:"total_scans" gorm:"not null;default:0"`
	LogoURL     *string         `json:"logo_url" gorm:"type:text"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName keeps the table name singular.
func (LeaderboardEntry) TableName() string {
	return "leaderboard"
}
