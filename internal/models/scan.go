package models

import "time"

// Category is the disposal bucket assigned to a scanned item.
type Category string

const (
	CategoryRecycle Category = "recycle"
	CategoryCompost Category = "compost"
	CategoryTrash   Category = "trash"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryRecycle, CategoryCompost, CategoryTrash}

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryRecycle, CategoryCompost, CategoryTrash:
		return true
	}
	return false
}

// Scan is one persisted classification event. Rows are never updated.
type Scan struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     *uint     `json:"user_id" gorm:"index"`
	User       *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ItemName   string    `json:"item_name" gorm:"not null"`
	ItemType   string    `json:"item_type" gorm:"not null"`
	Category   Category  `json:"category" gorm:"type:varchar(16);not null;index;check:chk_scans_category,category IN ('recycle','compost','trash')"`
	Confidence float64   `json:"confidence" gorm:"not null;check:chk_scans_confidence,confidence >= 0 AND confidence <= 100"`
	Location   *string   `json:"location"`
	ImageURL   *string   `json:"image_url" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

// ScanStats summarizes one user's scanning history.
type ScanStats struct {
	TotalScans    int64    `json:"total_scans"`
	RecycleCount  int64    `json:"recycle_count"`
	CompostCount  int64    `json:"compost_count"`
	TrashCount    int64    `json:"trash_count"`
	AvgConfidence *float64 `json:"avg_confidence"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}
