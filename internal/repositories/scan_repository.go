package repositories

import (
	"context"
	"time"

	"ecoscan/internal/models"
)

// ScanRecord is one unit of ingestion work: the scan row plus the counters it
// must move in the same transaction.
type ScanRecord struct {
	Scan      *models.Scan
	Day       time.Time // local midnight of the scan's calendar date
	SessionID string
}

// ScanRepository defines the interface for scan data access.
type ScanRepository interface {
	Record(ctx context.Context, rec ScanRecord) error
	ListByUser(ctx context.Context, userID uint, category *models.Category, offset, limit int) ([]models.Scan, int64, error)
	StatsByUser(ctx context.Context, userID uint) (*models.ScanStats, error)
}
