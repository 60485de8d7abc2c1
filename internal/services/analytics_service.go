package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ecoscan/internal/apperr"
	"ecoscan/internal/models"
	"ecoscan/internal/repositories"
)

// DailyRangeQuery bounds a daily stats listing. Both ends are inclusive.
type DailyRangeQuery struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// AnalyticsService answers read-only aggregate queries.
type AnalyticsService struct {
	stats    repositories.StatsRepository
	users    repositories.UserRepository
	validate *validator.Validate
	now      func() time.Time
	log      *zap.SugaredLogger
}

// NewAnalyticsService creates a new AnalyticsService. A nil now uses time.Now.
func NewAnalyticsService(stats repositories.StatsRepository, users repositories.UserRepository, now func() time.Time, log *zap.SugaredLogger) *AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{
		stats:    stats,
		users:    users,
		validate: newValidator(),
		now:      now,
		log:      log.With("service", "AnalyticsService"),
	}
}

// Today returns today's counters, or an all-zero row when nothing was scanned yet.
func (s *AnalyticsService) Today(ctx context.Context) (*models.DailyStat, error) {
	date := s.now().Format(models.DateLayout)
	stat, err := s.stats.DailyByDate(ctx, date)
	if apperr.Is(err, apperr.KindNotFound) {
		return &models.DailyStat{Date: date}, nil
	}
	if err != nil {
		return nil, err
	}
	return stat, nil
}

// Global returns all-time totals, the trailing 24h scan count and the
// per-category breakdown.
func (s *AnalyticsService) Global(ctx context.Context) (*models.GlobalStats, error) {
	totalScans, err := s.stats.CountScans(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.stats.CountScansSince(ctx, s.now().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	breakdown, err := s.stats.CategoryBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	return &models.GlobalStats{
		TotalScans:        totalScans,
		TotalUsers:        totalUsers,
		Recent24hScans:    recent,
		CategoryBreakdown: breakdown,
	}, nil
}

// Daily lists the stored days between start and end, newest first.
func (s *AnalyticsService) Daily(ctx context.Context, q DailyRangeQuery) ([]models.DailyStat, error) {
	if err := s.validate.Struct(q); err != nil {
		verr := validationError(err)
		if e, ok := verr.(*apperr.Error); ok {
			e.Message = "start_date and end_date query parameters are required (YYYY-MM-DD format)"
		}
		return nil, verr
	}
	return s.stats.DailyRange(ctx, q.StartDate, q.EndDate)
}
