package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	AppName    string

	CatalogPath    string
	ExamDuration   time.Duration
	TickInterval   time.Duration
	AllowReattempt bool

	// DatabaseURL and RedisURL are optional. Without them the certificate
	// archive is disabled and results stay in memory.
	DatabaseURL string
	MaxDBConns  int32
	RedisURL    string

	CertSigningSecret string
	CertIssuer        string
	CertCacheTTL      time.Duration

	UploadDir      string
	MaxUploadBytes int64
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with defaults.
// A .env file is loaded if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "pretty"),
		AppName:           getEnv("APP_NAME", "AceQuiz Pro"),
		CatalogPath:       getEnv("CATALOG_PATH", "./data/catalog.json"),
		ExamDuration:      time.Duration(getEnvPositiveInt("EXAM_DURATION_SECONDS", 3600)) * time.Second,
		TickInterval:      time.Duration(getEnvPositiveInt("TICK_INTERVAL_MS", 1000)) * time.Millisecond,
		AllowReattempt:    getEnvBool("ALLOW_REATTEMPT", true),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		MaxDBConns:        int32(getEnvPositiveInt("MAX_DB_CONNS", 8)),
		RedisURL:          getEnv("REDIS_URL", ""),
		CertSigningSecret: getEnv("CERT_SIGNING_SECRET", ""),
		CertIssuer:        getEnv("CERT_ISSUER", "acequiz"),
		CertCacheTTL:      time.Duration(getEnvPositiveInt("CERT_CACHE_TTL_MINUTES", 10)) * time.Minute,
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes:    int64(getEnvPositiveInt("MAX_UPLOAD_SIZE_MB", 5)) * 1024 * 1024,
		AllowedOrigins:    parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getEnvPositiveInt falls back for zero and negative values too.
func getEnvPositiveInt(key string, fallback int) int {
	if n := getEnvInt(key, fallback); n > 0 {
		return n
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
