package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ecoscan/internal/config"
	"ecoscan/internal/repositories"
	"ecoscan/internal/router"
	"ecoscan/internal/services"
	"ecoscan/internal/testutil"
	"ecoscan/pkg/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
	Error string `json:"error"`
}

// setupApp builds the full app over a private in-memory SQLite database.
func setupApp(t *testing.T, mutate ...func(*config.Config)) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		Env:             "test",
		JWTSecret:       "test_jwt_secret",
		JWTTTL:          time.Hour,
		BcryptCost:      bcrypt.MinCost,
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
		BodyLimitBytes:  64 * 1024,
		FrontendURL:     "http://localhost:3000",
	}
	for _, m := range mutate {
		m(cfg)
	}

	db := testutil.NewDB(t)
	log := logger.Nop()
	userRepo := repositories.NewGORMUserRepository(db)

	return router.New(router.Deps{
		Config: cfg,
		Log:    log,
		Auth: services.NewAuthService(userRepo, repositories.NewGORMSessionRepository(db), services.AuthConfig{
			Secret:     cfg.JWTSecret,
			TTL:        cfg.JWTTTL,
			BcryptCost: cfg.BcryptCost,
		}, log),
		Scans:       services.NewScanService(repositories.NewGORMScanRepository(db), log),
		Leaderboard: services.NewLeaderboardService(repositories.NewGORMLeaderboardRepository(db), log),
		Analytics:   services.NewAnalyticsService(repositories.NewGORMStatsRepository(db), userRepo, nil, log),
		StartedAt:   time.Now(),
	})
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

type authData struct {
	User struct {
		ID       uint   `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
	} `json:"user"`
	Token string `json:"token"`
}

func register(t *testing.T, app *fiber.App, email, username string) authData {
	t.Helper()
	status, env := doRequest(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "username": username, "password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, status, env.Message)
	var data authData
	decodeData(t, env, &data)
	return data
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	data := register(t, app, "Test@Example.com", "testuser")
	assert.Equal(t, "test@example.com", data.User.Email)
	assert.NotEmpty(t, data.Token)

	// password hash is never serialized
	status, env := doRequest(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "test@example.com", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Login successful", env.Message)
	assert.NotContains(t, string(env.Data), "password")

	// duplicate email or username
	status, env = doRequest(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "other@example.com", "username": "testuser", "password": "password123",
	}, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)

	status, env = doRequest(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "test@example.com", "password": "wrongpassword",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", env.Message)

	status, env = doRequest(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "nope", "username": "x", "password": "1",
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, env.Errors, 3)

	status, env = doRequest(t, app, http.MethodGet, "/api/auth/me", nil, data.Token)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"username":"testuser"`)

	status, _ = doRequest(t, app, http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = doRequest(t, app, http.MethodGet, "/api/auth/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid token", env.Message)
}

func TestAuthLongMultibytePassword(t *testing.T) {
	app := setupApp(t)
	password := strings.Repeat("€", 30)

	status, env := doRequest(t, app, http.MethodPost, "/api/auth/register",
		map[string]string{"email": "euro@example.com", "username": "euro", "password": password}, "")
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, env = doRequest(t, app, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "euro@example.com", "password": password}, "")
	assert.Equal(t, http.StatusOK, status, env.Message)

	status, _ = doRequest(t, app, http.MethodPost, "/api/auth/login",
		map[string]string{"email": "euro@example.com", "password": strings.Repeat("€", 31)}, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestDeleteAccountInvalidatesToken(t *testing.T) {
	app := setupApp(t)
	data := register(t, app, "gone@example.com", "goner")

	status, _ := doRequest(t, app, http.MethodPost, "/api/scans", map[string]interface{}{
		"item_name": "Can", "item_type": "Aluminum", "category": "recycle", "confidence": 99,
	}, data.Token)
	require.Equal(t, http.StatusCreated, status)

	status, _ = doRequest(t, app, http.MethodDelete, "/api/auth/me", nil, data.Token)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, app, http.MethodGet, "/api/auth/me", nil, data.Token)
	assert.Equal(t, http.StatusUnauthorized, status)

	_, env := doRequest(t, app, http.MethodGet, "/api/analytics/global", nil, "")
	var global struct {
		TotalScans int64 `json:"total_scans"`
		TotalUsers int64 `json:"total_users"`
	}
	decodeData(t, env, &global)
	assert.Zero(t, global.TotalScans)
	assert.Zero(t, global.TotalUsers)
}

func TestScanIngestion(t *testing.T) {
	app := setupApp(t)
	user := register(t, app, "scanner@example.com", "scanner")

	status, env := doRequest(t, app, http.MethodPost, "/api/scans", map[string]interface{}{
		"item_name": "Banana Peel", "item_type": "Food", "category": "compost", "confidence": 88.5,
	}, "")
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Scan recorded successfully", env.Message)
	var anon struct {
		Scan struct {
			ID     uint  `json:"id"`
			UserID *uint `json:"user_id"`
		} `json:"scan"`
	}
	decodeData(t, env, &anon)
	assert.NotZero(t, anon.Scan.ID)
	assert.Nil(t, anon.Scan.UserID)

	for _, c := range []string{"recycle", "recycle", "trash"} {
		status, env = doRequest(t, app, http.MethodPost, "/api/scans", map[string]interface{}{
			"item_name": "Thing", "item_type": "Misc", "category": c, "confidence": 70,
			"image_url": "https://example.com/thing.jpg", "location": "Kitchen",
		}, user.Token)
		require.Equal(t, http.StatusCreated, status, env.Message)
	}

	// a bad token on an optional-auth route is just anonymous
	status, _ = doRequest(t, app, http.MethodPost, "/api/scans", map[string]interface{}{
		"item_name": "Cup", "item_type": "Paper", "category": "trash", "confidence": 40,
	}, "garbage")
	require.Equal(t, http.StatusCreated, status)

	status, env = doRequest(t, app, http.MethodPost, "/api/scans", map[string]interface{}{
		"item_name": "", "item_type": "Misc", "category": "landfill", "confidence": 140,
	}, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, env.Errors, 3)

	status, env = doRequest(t, app, http.MethodGet, "/api/analytics/today", nil, "")
	require.Equal(t, http.StatusOK, status)
	var today struct {
		Date         string `json:"date"`
		TotalScans   int64  `json:"total_scans"`
		UniqueUsers  int64  `json:"unique_users"`
		RecycleCount int64  `json:"recycle_count"`
		CompostCount int64  `json:"compost_count"`
		TrashCount   int64  `json:"trash_count"`
	}
	decodeData(t, env, &today)
	assert.Equal(t, time.Now().Format("2006-01-02"), today.Date)
	assert.Equal(t, int64(5), today.TotalScans)
	assert.Equal(t, int64(1), today.UniqueUsers)
	assert.Equal(t, today.TotalScans, today.RecycleCount+today.CompostCount+today.TrashCount)

	status, env = doRequest(t, app, http.MethodGet, "/api/scans/my-scans?page=1&limit=2", nil, user.Token)
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Scans      []map[string]interface{} `json:"scans"`
		Pagination struct {
			Page       int   `json:"page"`
			Limit      int   `json:"limit"`
			Total      int64 `json:"total"`
			TotalPages int   `json:"totalPages"`
		} `json:"pagination"`
	}
	decodeData(t, env, &page)
	assert.Len(t, page.Scans, 2)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	status, env = doRequest(t, app, http.MethodGet, "/api/scans/my-scans?category=trash", nil, user.Token)
	require.Equal(t, http.StatusOK, status)
	decodeData(t, env, &page)
	assert.Len(t, page.Scans, 1)

	status, env = doRequest(t, app, http.MethodGet, "/api/scans/my-scans?page=9223372036854775807&limit=100", nil, user.Token)
	require.Equal(t, http.StatusOK, status)
	var farPage struct {
		Scans []map[string]interface{} `json:"scans"`
	}
	decodeData(t, env, &farPage)
	assert.Empty(t, farPage.Scans)

	status, _ = doRequest(t, app, http.MethodGet, "/api/scans/my-scans?category=plastic", nil, user.Token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodGet, "/api/scans/my-scans", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = doRequest(t, app, http.MethodGet, "/api/scans/stats", nil, user.Token)
	require.Equal(t, http.StatusOK, status)
	var stats struct {
		Stats struct {
			TotalScans    int64    `json:"total_scans"`
			RecycleCount  int64    `json:"recycle_count"`
			AvgConfidence *float64 `json:"avg_confidence"`
		} `json:"stats"`
		RecentScans []map[string]interface{} `json:"recent_scans"`
	}
	decodeData(t, env, &stats)
	assert.Equal(t, int64(3), stats.Stats.TotalScans)
	assert.Equal(t, int64(2), stats.Stats.RecycleCount)
	require.NotNil(t, stats.Stats.AvgConfidence)
	assert.InDelta(t, 70.0, *stats.Stats.AvgConfidence, 0.001)
	assert.Len(t, stats.RecentScans, 3)

	status, env = doRequest(t, app, http.MethodGet, "/api/analytics/global", nil, "")
	require.Equal(t, http.StatusOK, status)
	var global struct {
		TotalScans        int64 `json:"total_scans"`
		TotalUsers        int64 `json:"total_users"`
		Recent24hScans    int64 `json:"recent_24h_scans"`
		CategoryBreakdown []struct {
			Category string `json:"category"`
			Count    int64  `json:"count"`
		} `json:"category_breakdown"`
	}
	decodeData(t, env, &global)
	assert.Equal(t, int64(5), global.TotalScans)
	assert.Equal(t, int64(1), global.TotalUsers)
	assert.Equal(t, int64(5), global.Recent24hScans)
	assert.Len(t, global.CategoryBreakdown, 3)
}

func TestAnalyticsTodayWithoutScans(t *testing.T) {
	app := setupApp(t)

	status, env := doRequest(t, app, http.MethodGet, "/api/analytics/today", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t,
		`{"date":"`+time.Now().Format("2006-01-02")+`","total_scans":0,"unique_users":0,"recycle_count":0,"compost_count":0,"trash_count":0}`,
		string(env.Data))
}

func TestAnalyticsDaily(t *testing.T) {
	app := setupApp(t)

	status, env := doRequest(t, app, http.MethodGet, "/api/analytics/daily?start_date=2026-10-01", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "start_date and end_date")

	status, env = doRequest(t, app, http.MethodGet, "/api/analytics/daily?start_date=2026-10-05&end_date=2026-10-01", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"daily_stats":[]}`, string(env.Data))
}

func TestLeaderboard(t *testing.T) {
	app := setupApp(t)

	for _, e := range []map[string]interface{}{
		{"name": "A", "type": "school", "score": 10, "purity_score": 50},
		{"name": "B", "type": "school", "score": 10, "purity_score": 90},
		{"name": "C", "type": "school", "score": 5, "purity_score": 99},
	} {
		status, env := doRequest(t, app, http.MethodPost, "/api/leaderboard/update", e, "")
		require.Equal(t, http.StatusCreated, status)
		assert.Equal(t, "Leaderboard entry created", env.Message)
	}

	status, env := doRequest(t, app, http.MethodPost, "/api/leaderboard/update", map[string]interface{}{
		"name": "C", "type": "school", "total_scans": 12,
	}, "")
	require.Equal(t, http.StatusOK, status)
	var updated struct {
		Entry struct {
			Score       int     `json:"score"`
			PurityScore float64 `json:"purity_score"`
			TotalScans  int     `json:"total_scans"`
		} `json:"entry"`
	}
	decodeData(t, env, &updated)
	assert.Equal(t, 5, updated.Entry.Score)
	assert.Equal(t, 99.0, updated.Entry.PurityScore)
	assert.Equal(t, 12, updated.Entry.TotalScans)

	status, env = doRequest(t, app, http.MethodGet, "/api/leaderboard?type=school&limit=2", nil, "")
	require.Equal(t, http.StatusOK, status)
	var board struct {
		Leaderboard []struct {
			Name string `json:"name"`
		} `json:"leaderboard"`
	}
	decodeData(t, env, &board)
	require.Len(t, board.Leaderboard, 2)
	assert.Equal(t, "B", board.Leaderboard[0].Name)
	assert.Equal(t, "A", board.Leaderboard[1].Name)

	status, _ = doRequest(t, app, http.MethodGet, "/api/leaderboard?type=city", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodPost, "/api/leaderboard/update", map[string]interface{}{"type": "school"}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	for i := 0; i < 2; i++ {
		status, env = doRequest(t, app, http.MethodPost, "/api/leaderboard/seed", nil, "")
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, `{"entries":3}`, string(env.Data))
	}

	_, env = doRequest(t, app, http.MethodGet, "/api/leaderboard", nil, "")
	decodeData(t, env, &board)
	assert.Len(t, board.Leaderboard, 6)
	assert.Equal(t, "Lincoln High School", board.Leaderboard[0].Name)
}

func TestLeaderboardWriteAuth(t *testing.T) {
	app := setupApp(t, func(c *config.Config) { c.LeaderboardWriteAuth = true })

	status, _ := doRequest(t, app, http.MethodPost, "/api/leaderboard/seed", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	user := register(t, app, "admin@example.com", "admin")
	status, _ = doRequest(t, app, http.MethodPost, "/api/leaderboard/seed", nil, user.Token)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, app, http.MethodGet, "/api/leaderboard", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestRateLimit(t *testing.T) {
	app := setupApp(t, func(c *config.Config) { c.RateLimitMax = 2 })

	for i := 0; i < 2; i++ {
		status, _ := doRequest(t, app, http.MethodGet, "/api/leaderboard", nil, "")
		assert.Equal(t, http.StatusOK, status)
	}
	status, env := doRequest(t, app, http.MethodGet, "/api/leaderboard", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.False(t, env.Success)

	// the limit applies to /api only
	status, _ = doRequest(t, app, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestHealthAndNotFound(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.NotEmpty(t, health["timestamp"])
	assert.Contains(t, health, "uptime")

	status, env := doRequest(t, app, http.MethodGet, "/api/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "/api/unknown")
}
