package config

import (
	"os"
	"strconv"
)

// Config holds all configuration for the application.
type Config struct {
	Port          string
	DatabaseURL   string
	JWTSecret     string
	WebhookSecret string

	// IdentityIssuer prefixes provider user ids to form the stable
	// token identifier (issuer|id), matching what session JWTs carry.
	IdentityIssuer string

	// PublicBaseURL is prepended to upload paths when resolving
	// storage references into durable URLs.
	PublicBaseURL string

	// RoomTokenTTLMinutes controls how long call room access tokens stay valid.
	RoomTokenTTLMinutes int

	AllowOrigins string
}

// Load reads configuration from environment variables. godotenv is loaded
// by main before this runs, so a local .env works in development.
func Load() Config {
	ttl := 60
	if v := os.Getenv("ROOM_TOKEN_TTL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}

	return Config{
		Port:                getEnv("PORT", "8080"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		WebhookSecret:       os.Getenv("WEBHOOK_SECRET"),
		IdentityIssuer:      getEnv("IDENTITY_ISSUER", "obrolin"),
		PublicBaseURL:       getEnv("PUBLIC_BASE_URL", ""),
		RoomTokenTTLMinutes: ttl,
		AllowOrigins:        getEnv("ALLOW_ORIGINS", "http://localhost:3000"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
