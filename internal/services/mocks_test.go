package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"ecoscan/internal/models"
	"ecoscan/internal/repositories"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == 0 {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Start(ctx context.Context, session *models.Session) error {
	return m.Called(ctx, session).Error(0)
}

type MockScanRepository struct {
	mock.Mock
}

func (m *MockScanRepository) Record(ctx context.Context, rec repositories.ScanRecord) error {
	args := m.Called(ctx, rec)
	if args.Error(0) == nil {
		rec.Scan.ID = 42
	}
	return args.Error(0)
}

func (m *MockScanRepository) ListByUser(ctx context.Context, userID uint, category *models.Category, offset, limit int) ([]models.Scan, int64, error) {
	args := m.Called(ctx, userID, category, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Scan), args.Get(1).(int64), args.Error(2)
}

func (m *MockScanRepository) StatsByUser(ctx context.Context, userID uint) (*models.ScanStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScanStats), args.Error(1)
}

type MockLeaderboardRepository struct {
	mock.Mock
}

func (m *MockLeaderboardRepository) Top(ctx context.Context, typ models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, typ, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboardRepository) Upsert(ctx context.Context, patch repositories.LeaderboardPatch) (*models.LeaderboardEntry, bool, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*models.LeaderboardEntry), args.Bool(1), args.Error(2)
}

func (m *MockLeaderboardRepository) ReplaceAll(ctx context.Context, entries []models.LeaderboardEntry) error {
	return m.Called(ctx, entries).Error(0)
}

type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) DailyByDate(ctx context.Context, date string) (*models.DailyStat, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyStat), args.Error(1)
}

func (m *MockStatsRepository) DailyRange(ctx context.Context, start, end string) ([]models.DailyStat, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyStat), args.Error(1)
}

func (m *MockStatsRepository) CountScans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) CountScansSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatsRepository) CategoryBreakdown(ctx context.Context) ([]models.CategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategoryCount), args.Error(1)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) PutImage(ctx context.Context, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, contentType, data)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	return m.Called(ctx, routingKey, payload).Error(0)
}
