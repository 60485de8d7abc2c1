package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. Never rely on it in production.
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Config holds every runtime setting of the API server.
type Config struct {
	Env     string
	AppPort string

	DBDriver string
	DBDSN    string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	RateLimitMax    int
	RateLimitWindow time.Duration
	BodyLimitBytes  int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	FrontendURL     string

	LeaderboardWriteAuth bool

	LogLevel string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL      string
	RabbitMQExchange string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

// IsProduction reports whether detailed error output must be suppressed.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// UsesDefaultSecret reports whether the token secret is the built-in fallback.
func (c Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() Config {
	// best-effort: a missing .env is fine, real env vars still apply
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "data/ecoscan.db")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("RATE_LIMIT_MAX", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("BODY_LIMIT_BYTES", 10*1024*1024)
	v.SetDefault("READ_TIMEOUT", "30s")
	v.SetDefault("WRITE_TIMEOUT", "30s")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("LEADERBOARD_WRITE_AUTH", false)
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "ecoscan")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "auto")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_PUBLIC_BASE_URL", "")
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Env:                  v.GetString("APP_ENV"),
		AppPort:              v.GetString("APP_PORT"),
		DBDriver:             v.GetString("DB_DRIVER"),
		DBDSN:                v.GetString("DB_DSN"),
		JWTSecret:            v.GetString("JWT_SECRET"),
		JWTTTL:               v.GetDuration("JWT_TTL"),
		BcryptCost:           v.GetInt("BCRYPT_COST"),
		RateLimitMax:         v.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow:      v.GetDuration("RATE_LIMIT_WINDOW"),
		BodyLimitBytes:       v.GetInt("BODY_LIMIT_BYTES"),
		ReadTimeout:          v.GetDuration("READ_TIMEOUT"),
		WriteTimeout:         v.GetDuration("WRITE_TIMEOUT"),
		FrontendURL:          v.GetString("FRONTEND_URL"),
		LeaderboardWriteAuth: v.GetBool("LEADERBOARD_WRITE_AUTH"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		RabbitMQURL:          v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:     v.GetString("RABBITMQ_EXCHANGE"),
		S3Bucket:             v.GetString("S3_BUCKET"),
		S3Region:             v.GetString("S3_REGION"),
		S3Endpoint:           v.GetString("S3_ENDPOINT"),
		S3AccessKey:          v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:          v.GetString("S3_SECRET_KEY"),
		S3PublicBaseURL:      v.GetString("S3_PUBLIC_BASE_URL"),
	}
}
