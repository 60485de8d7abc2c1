package models

import "time"

// DateLayout is the calendar-date format used as the daily_stats key.
const DateLayout = "2006-01-02"

// DailyStat is the per-date rollup of scan counts. For rows written only by
// ingestion, TotalScans equals the sum of the three category counters.
type DailyStat struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Date         string    `json:"date" gorm:"type:varchar(10);uniqueIndex;not null"`
	TotalScans   int64     `json:"total_scans" gorm:"not null;default:0"`
	UniqueUsers  int64     `json:"unique_users" gorm:"not null;default:0"`
	RecycleCount int64     `json:"recycle_count" gorm:"not null;default:0"`
	CompostCount int64     `json:"compost_count" gorm:"not null;default:0"`
	TrashCount   int64     `json:"trash_count" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
}

// CategoryCount is one row of the global category breakdown.
type CategoryCount struct {
	Category      Category `json:"category"`
	Count         int64    `json:"count"`
	AvgConfidence float64  `json:"avg_confidence"`
}

// GlobalStats is the all-time summary returned by analytics.
type GlobalStats struct {
	TotalScans        int64           `json:"total_scans"`
	TotalUsers        int64           `json:"total_users"`
	Recent24hScans    int64           `json:"recent_24h_scans"`
	CategoryBreakdown []CategoryCount `json:"category_breakdown"`
}
