package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ecoscan/internal/apperr"
	"ecoscan/internal/models"
	"ecoscan/internal/repositories"
)

const (
	msgUserExists         = "User with this email or username already exists"
	msgInvalidCredentials = "Invalid email or password"
	msgTokenExpired       = "Token expired"
	msgTokenInvalid       = "Invalid token"
	msgUserGone           = "User not found. Token invalid."
)

// bcryptMaxBytes is the longest input bcrypt accepts.
const bcryptMaxBytes = 72

// Claims is the payload of an access token.
type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	SessionID string `json:"sid,omitempty"`
	jwt.StandardClaims
}

// AuthConfig tunes token signing and password hashing.
type AuthConfig struct {
	Secret     string
	TTL        time.Duration
	BcryptCost int
	Now        func() time.Time
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	validate    *validator.Validate
	jwtSecret   []byte
	tokenTTL    time.Duration
	bcryptCost  int
	now         func() time.Time
	log         *zap.SugaredLogger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, sessionRepo repositories.SessionRepository, cfg AuthConfig, log *zap.SugaredLogger) *AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = 7 * 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		validate:    newValidator(),
		jwtSecret:   []byte(cfg.Secret),
		tokenTTL:    cfg.TTL,
		bcryptCost:  cfg.BcryptCost,
		now:         cfg.Now,
		log:         log.With("service", "AuthService"),
	}
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	if err := s.ensureAvailable(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword(passwordKey(in.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &models.User{Email: in.Email, Username: in.Username, PasswordHash: string(hash)}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// unique index catches a concurrent registration that passed the pre-check
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict(msgUserExists, err)
		}
		return nil, err
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Infow("user registered", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// passwordKey returns the bytes handed to bcrypt. Passwords longer than
// bcryptMaxBytes (multibyte characters count per byte) are replaced by the
// base64 of their SHA-256 digest.
func passwordKey(password string) []byte {
	if len(password) <= bcryptMaxBytes {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (s *AuthService) ensureAvailable(ctx context.Context, email, username string) error {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return apperr.Conflict(msgUserExists, nil)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return apperr.Conflict(msgUserExists, nil)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return err
	}
	return nil
}

// Login checks credentials and returns the user with a fresh token. Unknown
// email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), passwordKey(in.Password)); err != nil {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// issueToken opens a session and signs a token carrying its id. A session that
// cannot be stored is logged and left out of the token.
func (s *AuthService) issueToken(ctx context.Context, user *models.User) (string, error) {
	sid := uuid.NewString()
	if err := s.sessionRepo.Start(ctx, &models.Session{UserID: &user.ID, SessionID: sid}); err != nil {
		s.log.Warnw("failed to start session", "user_id", user.ID, "error", err)
		sid = ""
	}

	now := s.now()
	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		SessionID: sid,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", apperr.Internal("failed to generate token", err)
	}
	return signed, nil
}

// VerifyToken validates signature, algorithm and expiry, then re-resolves the
// user so a token never outlives its account.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*models.User, *Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 &&
			ve.Errors&(jwt.ValidationErrorSignatureInvalid|jwt.ValidationErrorUnverifiable|jwt.ValidationErrorMalformed) == 0 {
			return nil, nil, apperr.Unauthorized(msgTokenExpired)
		}
		return nil, nil, apperr.Unauthorized(msgTokenInvalid)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, nil, apperr.Unauthorized(msgUserGone)
		}
		return nil, nil, err
	}
	return user, claims, nil
}

// DeleteAccount removes the user and, through the schema, all of their scans.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Infow("user deleted", "user_id", userID)
	return nil
}
