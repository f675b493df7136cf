package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	LockLead         time.Duration
	StrictPicks      bool
	CompetitionsFile string

	NATSURL string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	CORSAllowedOrigins []string
}

// R2Enabled reports whether snapshot export to object storage is configured.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	dbURL := getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	leadMinutes := 30
	if v := getenv("LOCK_LEAD_MINUTES"); v != "" {
		leadMinutes, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid LOCK_LEAD_MINUTES environment variable: %w", err)
		}
		if leadMinutes < 0 {
			return nil, fmt.Errorf("LOCK_LEAD_MINUTES must not be negative, got %d", leadMinutes)
		}
	}

	strict := false
	if v := getenv("STRICT_PICKS"); v != "" {
		strict, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STRICT_PICKS environment variable: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		LockLead:           time.Duration(leadMinutes) * time.Minute,
		StrictPicks:        strict,
		CompetitionsFile:   getenv("COMPETITIONS_FILE"),
		NATSURL:            getenv("NATS_URL"),
		R2AccountID:        getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    getenv("R2_PUBLIC_BASE_URL"),
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	// R2 is optional, but a half-filled block is a deployment mistake.
	r2 := []string{cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2BucketName, cfg.R2PublicBaseURL}
	set := 0
	for _, v := range r2 {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != len(r2) {
		return nil, fmt.Errorf("R2 storage is partially configured: set all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME, R2_PUBLIC_BASE_URL or none")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
