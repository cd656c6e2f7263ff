package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	DatabasePath       string
	SeedCSVPath        string
	JWTSecret          string
	TokenTTL           time.Duration
	TokenIssuer        string
	RegistrationKey    string
	LogLevel           string
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	ttlMinutes, err := strconv.Atoi(getEnv("TOKEN_TTL_MINUTES", "1440"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES: %w", err)
	}

	rateLimitRequests, err := strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}

	rateLimitWindow, err := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SECONDS: %w", err)
	}

	secret, err := loadSecret()
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		ServerPort:      port,
		DatabasePath:    getEnv("DB_PATH", "db/quotes.db"),
		SeedCSVPath:     getEnv("SEED_CSV_PATH", "assets/default_quotes.csv"),
		JWTSecret:       secret,
		TokenTTL:        time.Duration(ttlMinutes) * time.Minute,
		TokenIssuer:     getEnv("TOKEN_ISSUER", "quotevault"),
		RegistrationKey: getEnv("REGISTRATION_KEY", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		RateLimitRequests: rateLimitRequests,
		RateLimitWindow:   time.Duration(rateLimitWindow) * time.Second,
	}, nil
}

// loadSecret resolves the token signing secret once at startup. JWT_SECRET
// takes precedence; JWT_SECRET_FILE points at a file holding the secret.
func loadSecret() (string, error) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret, nil
	}

	if path := os.Getenv("JWT_SECRET_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read JWT_SECRET_FILE: %w", err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("JWT_SECRET_FILE %s is empty", path)
		}
		return secret, nil
	}

	return "", nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
