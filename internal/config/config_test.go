package config

import "testing"

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://app:pw@localhost:5432/app")
	t.Setenv("JWT_SECRET", "sekrit")
	t.Setenv("ROOM_TOKEN_TTL_MINUTES", "15")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://app:pw@localhost:5432/app" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.JWTSecret != "sekrit" {
		t.Errorf("JWTSecret = %q", cfg.JWTSecret)
	}
	if cfg.RoomTokenTTLMinutes != 15 {
		t.Errorf("RoomTokenTTLMinutes = %d, want 15", cfg.RoomTokenTTLMinutes)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("IDENTITY_ISSUER", "")
	t.Setenv("ROOM_TOKEN_TTL_MINUTES", "not-a-number")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want default 8080", cfg.Port)
	}
	if cfg.IdentityIssuer != "obrolin" {
		t.Errorf("IdentityIssuer = %q, want default obrolin", cfg.IdentityIssuer)
	}
	if cfg.RoomTokenTTLMinutes != 60 {
		t.Errorf("RoomTokenTTLMinutes = %d, want default 60", cfg.RoomTokenTTLMinutes)
	}
}
