package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AWS       AWSConfig
	Render    RenderConfig
	Uploads   UploadsConfig
	Plans     PlansConfig
	Retention RetentionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	PublicBaseURL      string // base URL for served upload files
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the S3 recordings bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	RecordingsBucket     string
	PresignExpireMinutes int
}

// RenderConfig holds the remote rendering provider settings. The provider is
// a ScreenshotOne-compatible /animate endpoint, or a proxy in front of it
// that returns a base64 JSON envelope instead of raw bytes.
type RenderConfig struct {
	BaseURL        string
	ProxyURL       string // optional proxy endpoint; empty = direct provider
	AccessKey      string
	TimeoutSeconds int // bound for the blocking render call
	SiteURL        string
	ClientVersion  string
}

// UploadsConfig holds the managed upload directory settings.
type UploadsConfig struct {
	BaseDir   string // e.g. ./uploads
	AssetsDir string // device frame overlays and shared static assets
	MirrorS3  bool   // mirror ingested videos to the recordings bucket
}

// PlansConfig holds per-tier recording limits. Free is a lifetime total;
// paid tiers reset per calendar month.
type PlansConfig struct {
	Plan         string // free, starter, pro, agency
	LicenseKey   string
	FreeLimit    int
	StarterLimit int
	ProLimit     int
	AgencyLimit  int
}

// RetentionConfig holds recording retention defaults.
type RetentionConfig struct {
	Days              int // delete recording rows older than this; 0 disables
	CleanupEveryHours int
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 180),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			PublicBaseURL:      getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://localhost:5432/scrollcast?sslmode=disable"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "scrollcast"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			RecordingsBucket:     getEnv("AWS_S3_RECORDINGS_BUCKET", ""),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Render: RenderConfig{
			BaseURL:        getEnv("RENDER_API_BASE_URL", "https://api.screenshotone.com"),
			ProxyURL:       getEnv("RENDER_PROXY_URL", ""),
			AccessKey:      getEnv("RENDER_ACCESS_KEY", ""),
			TimeoutSeconds: getEnvInt("RENDER_TIMEOUT_SEC", 120),
			SiteURL:        getEnv("SITE_URL", "http://localhost:8080"),
			ClientVersion:  getEnv("CLIENT_VERSION", "1.0.0"),
		},
		Uploads: UploadsConfig{
			BaseDir:   getEnv("UPLOADS_DIR", "./uploads"),
			AssetsDir: getEnv("ASSETS_DIR", "./assets"),
			MirrorS3:  getEnvBool("UPLOADS_MIRROR_S3", false),
		},
		Plans: PlansConfig{
			Plan:         getEnv("PLAN", "free"),
			LicenseKey:   getEnv("LICENSE_KEY", "free"),
			FreeLimit:    getEnvInt("PLAN_FREE_LIMIT", 1),
			StarterLimit: getEnvInt("PLAN_STARTER_LIMIT", 50),
			ProLimit:     getEnvInt("PLAN_PRO_LIMIT", 100),
			AgencyLimit:  getEnvInt("PLAN_AGENCY_LIMIT", 500),
		},
		Retention: RetentionConfig{
			Days:              getEnvInt("RETENTION_DAYS", 0),
			CleanupEveryHours: getEnvInt("RETENTION_CLEANUP_EVERY_HOURS", 24),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
