package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Application
	ProjectName string
	APIPrefix   string

	// Database
	DatabaseURL    string
	DatabaseDriver string // "postgres"(lib/pq) または "pgx"

	// Token
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Password
	BcryptCost int

	// Admin bootstrap
	AdminEmail    string
	AdminPassword string

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitSignIn  int

	// Logging
	LogLevel slog.Level

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecretKey = os.Getenv("JWT_SECRET_KEY")
	if cfg.JWTSecretKey == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}

	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	if cfg.AdminEmail == "" {
		missing = append(missing, "ADMIN_EMAIL")
	}

	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	if cfg.AdminPassword == "" {
		missing = append(missing, "ADMIN_PASSWORD")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ProjectName = getEnvString("PROJECT_NAME", "taskman")
	cfg.APIPrefix = strings.TrimSuffix(getEnvString("API_V1_STR", "/api/v1"), "/")
	cfg.DatabaseDriver = getEnvString("DATABASE_DRIVER", "postgres")
	cfg.AccessTokenTTL = time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute
	cfg.RefreshTokenTTL = time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRE_MINUTES", 60*24*7)) * time.Minute
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", bcrypt.DefaultCost)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSignIn = getEnvInt("RATE_LIMIT_SIGNIN", 10)
	cfg.LogLevel = getEnvLevel("LOG_LEVEL", slog.LevelInfo)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate は値の整合性を検証する。
func (c *Config) validate() error {
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "pgx" {
		return fmt.Errorf("DATABASE_DRIVER must be postgres or pgx, got %q", c.DatabaseDriver)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token expiry minutes must be positive")
	}
	if c.RateLimitGeneral <= 0 || c.RateLimitSignIn <= 0 {
		return fmt.Errorf("RATE_LIMIT_GENERAL and RATE_LIMIT_SIGNIN must be positive, got %d and %d", c.RateLimitGeneral, c.RateLimitSignIn)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("API_V1_STR must start with '/', got %q", c.APIPrefix)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvLevel(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return defaultVal
	}
	return level
}
