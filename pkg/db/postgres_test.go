package db

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Test helpers to avoid linter errors for unchecked os.Setenv/Unsetenv
func testSetenv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("Failed to set env var %s: %v", key, err)
	}
}

func testUnsetenv(t *testing.T, key string) {
	t.Helper()
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("Failed to unset env var %s: %v", key, err)
	}
}

var dbEnvVars = []string{
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD",
	"DB_SSLMODE", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
}

func TestNewConfigFromEnv_AllDefaults(t *testing.T) {
	for _, key := range dbEnvVars {
		testUnsetenv(t, key)
	}

	cfg := NewConfigFromEnv()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "business_empire", cfg.Database)
	assert.Equal(t, "postgres", cfg.User)
	assert.Equal(t, "", cfg.Password)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 300*time.Second, cfg.ConnMaxLifetime)
	assert.Equal(t, 300*time.Second, cfg.ConnMaxIdleTime)
}

func TestNewConfigFromEnv_CustomValues(t *testing.T) {
	testSetenv(t, "DB_HOST", "db.internal")
	testSetenv(t, "DB_PORT", "5433")
	testSetenv(t, "DB_NAME", "game")
	testSetenv(t, "DB_USER", "app")
	testSetenv(t, "DB_PASSWORD", "secret")
	testSetenv(t, "DB_SSLMODE", "require")
	testSetenv(t, "DB_MAX_OPEN_CONNS", "50")
	testSetenv(t, "DB_MAX_IDLE_CONNS", "10")
	testSetenv(t, "DB_CONN_MAX_LIFETIME", "600")
	testSetenv(t, "DB_CONN_MAX_IDLE_TIME", "120")
	defer func() {
		for _, key := range dbEnvVars {
			testUnsetenv(t, key)
		}
	}()

	cfg := NewConfigFromEnv()

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "game", cfg.Database)
	assert.Equal(t, "app", cfg.User)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "require", cfg.SSLMode)
	assert.Equal(t, 50, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 600*time.Second, cfg.ConnMaxLifetime)
	assert.Equal(t, 120*time.Second, cfg.ConnMaxIdleTime)
}

func TestNewConfigFromEnv_InvalidIntFallsBack(t *testing.T) {
	testSetenv(t, "DB_PORT", "not-a-number")
	defer testUnsetenv(t, "DB_PORT")

	cfg := NewConfigFromEnv()

	assert.Equal(t, 5432, cfg.Port)
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{
		Host:     "localhost",
		Port:     5432,
		Database: "business_empire",
		User:     "postgres",
		Password: "pw",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 dbname=business_empire user=postgres password=pw sslmode=disable"
	assert.Equal(t, want, cfg.DSN())
}
