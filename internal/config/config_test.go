package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.OMDbBaseURL != "https://www.omdbapi.com/" {
		t.Errorf("unexpected OMDb base URL %q", cfg.OMDbBaseURL)
	}
	if cfg.StoreBackend() != BackendMemory {
		t.Errorf("expected memory backend, got %s", cfg.StoreBackend())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "anon-key")
	t.Setenv("OMDB_API_KEY", "omdb-key")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("MAX_SESSIONS", "50")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.OMDbAPIKey != "omdb-key" {
		t.Errorf("OMDbAPIKey = %q", cfg.OMDbAPIKey)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.MaxSessions != 50 {
		t.Errorf("MaxSessions = %d", cfg.MaxSessions)
	}
	if cfg.StoreBackend() != BackendPostgREST {
		t.Errorf("expected postgrest backend, got %s", cfg.StoreBackend())
	}
}

func TestDatabaseURLWins(t *testing.T) {
	cfg := defaults()
	cfg.DatabaseURL = "postgres://localhost/tiw"
	cfg.SupabaseURL = "https://example.supabase.co"
	cfg.SupabaseKey = "k"
	if cfg.StoreBackend() != BackendPostgres {
		t.Errorf("expected postgres backend, got %s", cfg.StoreBackend())
	}
}

func TestValidateRejectsMissingSupabaseKey(t *testing.T) {
	cfg := defaults()
	cfg.SupabaseURL = "https://example.supabase.co"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "SUPABASE_KEY") {
		t.Errorf("expected SUPABASE_KEY error, got %v", err)
	}
}
