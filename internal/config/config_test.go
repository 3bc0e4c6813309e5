package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("JWT_EXPIRATION", "30m")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, 720*time.Hour, cfg.JWT.RefreshExpiration)
	assert.Equal(t, 20, cfg.RateLimit.AuthPerMinute)

	loc, err := cfg.Server.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("server:\n  address: \":9090\"\njwt:\n  secret: from-file\nmail:\n  driver: ses\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, "ses", cfg.Mail.Driver)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.EqualError(t, err, "jwt.secret is required")

	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DATABASE_DRIVER", "postgres")
	_, err = LoadConfig(t.TempDir())
	assert.EqualError(t, err, `unknown database.driver "postgres"`)
}

func TestLoadConfig_Admin(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("ADMIN_EMAIL", "root@gym.test")
	_, err := LoadConfig(t.TempDir())
	assert.EqualError(t, err, "admin.password is required when admin.email is set")

	t.Setenv("ADMIN_PASSWORD", "change-me-now")
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "root@gym.test", cfg.Admin.Email)
	assert.Equal(t, "Administrator", cfg.Admin.FullName)
}

func TestConfig_Warnings(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{Driver: DriverMongo}}
	require.Len(t, cfg.Warnings(), 1)
	assert.Contains(t, cfg.Warnings()[0], "use_transactions")

	cfg.Database.UseTransactions = true
	assert.Empty(t, cfg.Warnings())

	cfg.Database = DatabaseConfig{Driver: DriverMemory}
	assert.Empty(t, cfg.Warnings())
}
