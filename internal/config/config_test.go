package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg := Load()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("Expected HTTP_ADDR default ':8080', got '%s'", cfg.HTTP.Addr)
	}
	if !cfg.DBEnabled {
		t.Error("Expected DB_ENABLED default true")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected DB_HOST default 'localhost', got '%s'", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Expected DB_PORT default 5432, got %d", cfg.Database.Port)
	}
	if cfg.Database.Database != "medhold" {
		t.Errorf("Expected DB_NAME default 'medhold', got '%s'", cfg.Database.Database)
	}
	if cfg.Redis.Enabled {
		t.Error("Expected REDIS_ENABLED default false")
	}
	if cfg.StatsCacheTTL != 30*time.Second {
		t.Errorf("Expected stats cache TTL default 30s, got %v", cfg.StatsCacheTTL)
	}
	if cfg.ProblemCheckInterval != 60*time.Second {
		t.Errorf("Expected problem check interval default 60s, got %v", cfg.ProblemCheckInterval)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("DB_ENABLED", "false")
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_PORT", "15432")
	os.Setenv("REDIS_ENABLED", "true")
	os.Setenv("STATS_CACHE_TTL_SECONDS", "5")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Clearenv()

	cfg := Load()

	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("Expected HTTP_ADDR ':9090', got '%s'", cfg.HTTP.Addr)
	}
	if cfg.DBEnabled {
		t.Error("Expected DB_ENABLED false")
	}
	if cfg.Database.Host != "test-host" {
		t.Errorf("Expected DB_HOST 'test-host', got '%s'", cfg.Database.Host)
	}
	if cfg.Database.Port != 15432 {
		t.Errorf("Expected DB_PORT 15432, got %d", cfg.Database.Port)
	}
	if !cfg.Redis.Enabled {
		t.Error("Expected REDIS_ENABLED true")
	}
	if cfg.StatsCacheTTL != 5*time.Second {
		t.Errorf("Expected stats cache TTL 5s, got %v", cfg.StatsCacheTTL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected LOG_LEVEL 'debug', got '%s'", cfg.Log.Level)
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "medhold", SSLMode: "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=medhold sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN mismatch:\n got %s\nwant %s", got, want)
	}
}
