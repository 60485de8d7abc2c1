package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ecoscan/internal/apperr"
	"ecoscan/internal/models"
	"ecoscan/internal/repositories"
)

const defaultLeaderboardLimit = 10

// LeaderboardUpsertInput is the body of a leaderboard update. Nil numeric
// fields keep the stored value.
type LeaderboardUpsertInput struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Type        string   `json:"type" validate:"required,oneof=school neighborhood"`
	Score       *int     `json:"score"`
	PurityScore *float64 `json:"purity_score"`
	TotalScans  *int     `json:"total_scans" validate:"omitempty,min=0"`
	LogoURL     *string  `json:"logo_url" validate:"omitempty,url"`
}

// LeaderboardService ranks schools and neighborhoods.
type LeaderboardService struct {
	repo     repositories.LeaderboardRepository
	validate *validator.Validate
	log      *zap.SugaredLogger
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(repo repositories.LeaderboardRepository, log *zap.SugaredLogger) *LeaderboardService {
	return &LeaderboardService{
		repo:     repo,
		validate: newValidator(),
		log:      log.With("service", "LeaderboardService"),
	}
}

// GetTop returns the best entries of one type.
func (s *LeaderboardService) GetTop(ctx context.Context, typ string, limit int) ([]models.LeaderboardEntry, error) {
	t := models.LeaderboardType(typ)
	if !t.Valid() {
		return nil, apperr.Validation(`Invalid type. Must be "school" or "neighborhood"`,
			apperr.FieldError{Field: "type", Message: "must be one of: school, neighborhood"})
	}
	return s.repo.Top(ctx, t, clampLimit(limit, defaultLeaderboardLimit))
}

// Upsert creates or patches the (name, type) entry. The boolean is true when
// the entry was created.
func (s *LeaderboardService) Upsert(ctx context.Context, in LeaderboardUpsertInput) (*models.LeaderboardEntry, bool, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.LogoURL = trimmedOrNil(in.LogoURL)
	if err := s.validate.Struct(in); err != nil {
		return nil, false, validationError(err)
	}
	entry, created, err := s.repo.Upsert(ctx, repositories.LeaderboardPatch{
		Name:        in.Name,
		Type:        models.LeaderboardType(in.Type),
		Score:       in.Score,
		PurityScore: in.PurityScore,
		TotalScans:  in.TotalScans,
		LogoURL:     in.LogoURL,
	})
	if err != nil {
		return nil, false, err
	}
	s.log.Infow("leaderboard entry saved", "name", entry.Name, "type", entry.Type, "created", created)
	return entry, created, nil
}

// Seed installs the example schools, replacing their stored values, and
// returns how many entries were written.
func (s *LeaderboardService) Seed(ctx context.Context) (int, error) {
	entries := seedEntries()
	if err := s.repo.ReplaceAll(ctx, entries); err != nil {
		return 0, err
	}
	s.log.Infow("leaderboard seeded", "entries", len(entries))
	return len(entries), nil
}

func seedEntries() []models.LeaderboardEntry {
	logo := func(s string) *string { return &s }
	return []models.LeaderboardEntry{
		{
			Name: "Lincoln High School", Type: models.LeaderboardSchool,
			Score: 9450, PurityScore: 98.0, TotalScans: 1250,
			LogoURL: logo("https://lh3.googleusercontent.com/aida-public/AB6AXuB00HXViEZPxDHBbbf2pbTpaNlt_eVb_ko7tjTcN-puTVmnUkdcOJ1RBuZZ1S2L3e88Nq6Ir4J2PD9CNQ3b6vfyZqKcFVDOjaJ0VMHDKreTnY1bUOpR46n58YGbHMuretXYUGpE_MAdM_MmccJnOKg-JHFBM_wccjZ35aopGHy5Lp9lrUz0bCFsIWBtO7Ui31aadRW5FByQkNIVWFm6uTKIkNUgplZ6wZKEi54V1DnCquDiX1jnw33zQz8lpfdx3FbidGfr04rcQYc"),
		},
		{
			Name: "Westside Elementary", Type: models.LeaderboardSchool,
			Score: 8200, PurityScore: 94.0, TotalScans: 1100,
			LogoURL: logo("https://lh3.googleusercontent.com/aida-public/AB6AXuA_POifAFIGnZEaTU6N_jdgfXNdFp74UjT12sWBJd7JrRvGoDQl2x8TeP2QdoOWAkQl7S0muQd6-Bgsce1dlZn5p7h6TBLM003l6LQRjcThwFEHiOnWj8Wm9TRHuRdS4XRQQnpSkr0zU2eZe_GSAIqXc7x3j07v3gpngYwCWQiyUhSQnLUOA0o4LbdAge5ykX7p4Y5N6pbmWLaVveGJnYQ-oMbgqGkEqU0rRfLlT6MdOjbMzlvAB9bJFTBx2EM4iTu5tSb_BSAFjWI"),
		},
		{
			Name: "Oak Creek Middle", Type: models.LeaderboardSchool,
			Score: 7800, PurityScore: 91.0, TotalScans: 950,
			LogoURL: logo("https://lh3.googleusercontent.com/aida-public/AB6AXuDkBTaJ1JTmpsO99Kfsm5jwrLUJoZrzJUOlzSvxiipeUlmpyAW1UrvOJfuK-3Q-CPzvMsXAsWkuq21kyLD4lEVrFmFdErUqoIWxgBfQfMpCuYEnvVTcNGU3FIMwtl7syRDCIPUr0SQtgzA3e42dZ3MDq7KQ2aMaUN2Ne8vNE_FtbAjO1y6c0Oc1k3evrng9vB37agjI96gfxBU3x231ITJPKdUtSRWZ8AscK7qb-5T-ZxxhaF4DqfBoTOjaXmqEwmBumNsdR_RwhWA"),
		},
	}
}
