package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "log", cfg.Mail.Provider)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 24*time.Hour, cfg.VerificationTTL())
	assert.Equal(t, time.Hour, cfg.ResetTTL())
	assert.Empty(t, cfg.Storage.Bucket)
	assert.Error(t, cfg.Validate(), "jwt secret is required")
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FINANCE_DATABASE_DRIVER", "postgres")
	t.Setenv("FINANCE_DATABASE_DSN", "postgres://localhost/finance")
	t.Setenv("FINANCE_AUTH_JWTSECRET", "s3cret")
	t.Setenv("FINANCE_AUTH_TOKENTTLMINUTES", "15")
	t.Setenv("FINANCE_RATELIMIT_RPS", "2.5")
	t.Setenv("FINANCE_STORAGE_BUCKET", "archives")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/finance", cfg.Database.DSN)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL())
	assert.InDelta(t, 2.5, cfg.RateLimit.RPS, 0.0001)
	assert.Equal(t, "archives", cfg.Storage.Bucket)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FINANCE_MAIL_FROMNAME=\"Ledger Bot\"\nFINANCE_SERVER_ADDR=:9999\n"), 0o600))
	t.Setenv("FINANCE_SERVER_ADDR", ":7000")
	t.Cleanup(func() { _ = os.Unsetenv("FINANCE_MAIL_FROMNAME") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Ledger Bot", cfg.Mail.FromName)
	assert.Equal(t, ":7000", cfg.Server.Addr, "environment wins over .env")
}

func TestValidateMail(t *testing.T) {
	var cfg Config
	cfg.Auth.JWTSecret = "x"

	cfg.Mail.Provider = "sendgrid"
	assert.Error(t, cfg.Validate())

	cfg.Mail.APIKey = "key"
	cfg.Mail.From = "noreply@example.com"
	assert.NoError(t, cfg.Validate())

	cfg.Mail.Provider = "pigeon"
	assert.Error(t, cfg.Validate())
}
