package config

import (
	"os"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	DatabaseURL string
	RedisURL    string

	JWTSecret string
	TokenTTL  time.Duration

	ServerPort     string
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() Config {
	tokenTTL := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			tokenTTL = parsed
		}
	}

	serverPort := os.Getenv("PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	cfg := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       tokenTTL,
		ServerPort:     serverPort,
		AllowedOrigins: strings.Split(allowedOrigins, ","),
	}

	for i := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(cfg.AllowedOrigins[i])
	}

	return cfg
}
