package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ecoscan/internal/apperr"
	"ecoscan/internal/models"
	"ecoscan/internal/repositories"
	"ecoscan/pkg/objectstore"
)

const (
	// RoutingKeyScanRecorded is published after every committed scan.
	RoutingKeyScanRecorded = "scan.recorded"

	defaultPageLimit = 20
	maxPageLimit     = 100
	recentScanCount  = 10

	// maxPage keeps (page-1)*limit within int for any allowed limit.
	maxPage = math.MaxInt / maxPageLimit
)

// ImageStore persists decoded scan images and returns their public URL.
type ImageStore interface {
	PutImage(ctx context.Context, contentType string, data []byte) (string, error)
}

// EventPublisher sends domain events to a message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

// ScanInput is the body of a scan submission.
type ScanInput struct {
	ItemName   string   `json:"item_name" validate:"required,max=255"`
	ItemType   string   `json:"item_type" validate:"required,max=255"`
	Category   string   `json:"category" validate:"required,oneof=recycle compost trash"`
	Confidence *float64 `json:"confidence" validate:"required,min=0,max=100"`
	Location   *string  `json:"location" validate:"omitempty,max=255"`
	ImageURL   *string  `json:"image_url" validate:"omitempty,imageref"`
}

// ScanRecordedEvent is the scan.recorded message body.
type ScanRecordedEvent struct {
	ScanID     uint            `json:"scan_id"`
	UserID     *uint           `json:"user_id"`
	Category   models.Category `json:"category"`
	Confidence float64         `json:"confidence"`
	Date       string          `json:"date"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// ListScansQuery selects one page of a user's history.
type ListScansQuery struct {
	Page     int
	Limit    int
	Category string
}

// ScanPage is one page of scans.
type ScanPage struct {
	Scans      []models.Scan     `json:"scans"`
	Pagination models.Pagination `json:"pagination"`
}

// UserScanStats is a user's summary plus their latest scans.
type UserScanStats struct {
	Stats       *models.ScanStats `json:"stats"`
	RecentScans []models.Scan     `json:"recent_scans"`
}

// ScanServiceOption configures optional collaborators.
type ScanServiceOption func(*ScanService)

// WithImageStore offloads data URL images to store.
func WithImageStore(store ImageStore) ScanServiceOption {
	return func(s *ScanService) { s.images = store }
}

// WithPublisher publishes scan.recorded events through p.
func WithPublisher(p EventPublisher) ScanServiceOption {
	return func(s *ScanService) { s.events = p }
}

// WithClock overrides the wall clock used to date scans.
func WithClock(now func() time.Time) ScanServiceOption {
	return func(s *ScanService) { s.now = now }
}

// ScanService ingests scans and serves a user's scan history.
type ScanService struct {
	scanRepo repositories.ScanRepository
	validate *validator.Validate
	images   ImageStore
	events   EventPublisher
	now      func() time.Time
	log      *zap.SugaredLogger
}

// NewScanService creates a new ScanService.
func NewScanService(scanRepo repositories.ScanRepository, log *zap.SugaredLogger, opts ...ScanServiceOption) *ScanService {
	s := &ScanService{
		scanRepo: scanRepo,
		validate: newValidator(),
		now:      time.Now,
		log:      log.With("service", "ScanService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordScan validates and stores a scan together with today's counters.
// userID is nil for anonymous scans; sessionID may be empty.
func (s *ScanService) RecordScan(ctx context.Context, in ScanInput, userID *uint, sessionID string) (*models.Scan, error) {
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.ItemType = strings.TrimSpace(in.ItemType)
	in.Location = trimmedOrNil(in.Location)
	in.ImageURL = trimmedOrNil(in.ImageURL)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	imageURL, err := s.storeImage(ctx, in.ImageURL)
	if err != nil {
		return nil, err
	}

	now := s.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	scan := &models.Scan{
		UserID:     userID,
		ItemName:   in.ItemName,
		ItemType:   in.ItemType,
		Category:   models.Category(in.Category),
		Confidence: *in.Confidence,
		Location:   in.Location,
		ImageURL:   imageURL,
		CreatedAt:  now,
	}
	if err := s.scanRepo.Record(ctx, repositories.ScanRecord{Scan: scan, Day: day, SessionID: sessionID}); err != nil {
		return nil, err
	}

	s.publishRecorded(ctx, scan, day)
	return scan, nil
}

// storeImage uploads a data URL image when a store is configured. Upload
// failures keep the inline image so the scan is not lost.
func (s *ScanService) storeImage(ctx context.Context, ref *string) (*string, error) {
	if ref == nil || s.images == nil || !objectstore.IsDataURL(*ref) {
		return ref, nil
	}
	contentType, data, err := objectstore.ParseDataURL(*ref)
	if err != nil {
		return nil, apperr.Validation("Validation failed", apperr.FieldError{Field: "image_url", Message: "image data is not valid base64"})
	}
	url, err := s.images.PutImage(ctx, contentType, data)
	if err != nil {
		s.log.Warnw("image offload failed, keeping inline image", "error", err)
		return ref, nil
	}
	return &url, nil
}

func (s *ScanService) publishRecorded(ctx context.Context, scan *models.Scan, day time.Time) {
	if s.events == nil {
		return
	}
	evt := ScanRecordedEvent{
		ScanID:     scan.ID,
		UserID:     scan.UserID,
		Category:   scan.Category,
		Confidence: scan.Confidence,
		Date:       day.Format(models.DateLayout),
		RecordedAt: scan.CreatedAt,
	}
	if err := s.events.Publish(ctx, RoutingKeyScanRecorded, evt); err != nil {
		s.log.Warnw("failed to publish scan event", "scan_id", scan.ID, "error", err)
	}
}

// ListUserScans returns a page of the user's scans, newest first.
func (s *ScanService) ListUserScans(ctx context.Context, userID uint, q ListScansQuery) (*ScanPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit := clampLimit(q.Limit, defaultPageLimit)

	var category *models.Category
	if q.Category != "" {
		c := models.Category(q.Category)
		if !c.Valid() {
			return nil, apperr.Validation("Validation failed", apperr.FieldError{Field: "category", Message: "must be one of: recycle, compost, trash"})
		}
		category = &c
	}

	scans, total, err := s.scanRepo.ListByUser(ctx, userID, category, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &ScanPage{
		Scans: scans,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// UserStats summarizes the user's scans and includes the most recent ones.
func (s *ScanService) UserStats(ctx context.Context, userID uint) (*UserScanStats, error) {
	stats, err := s.scanRepo.StatsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, _, err := s.scanRepo.ListByUser(ctx, userID, nil, 0, recentScanCount)
	if err != nil {
		return nil, err
	}
	return &UserScanStats{Stats: stats, RecentScans: recent}, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// clampLimit applies def to a zero limit and bounds the result to [1, maxPageLimit].
func clampLimit(limit, def int) int {
	if limit == 0 {
		limit = def
	}
	if limit < 1 {
		return 1
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}
