package models

import "time"

// Session records one login for audit purposes.
type Session struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    *uint      `json:"user_id" gorm:"index"`
	User      *User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	SessionID string     `json:"session_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	StartedAt time.Time  `json:"started_at" gorm:"autoCreateTime"`
	EndedAt   *time.Time `json:"ended_at"`
	ScanCount int        `json:"scan_count" gorm:"not null;default:0"`
}
