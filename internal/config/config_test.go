package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithSQLite(t *testing.T) {
	clearEnv(t, "PORT", "REQUEST_TIMEOUT_SECONDS", "PAYMENT_CURRENCY", "HYDRATION_CONCURRENCY", "OIDC_ISSUER", "OIDC_AUDIENCE")
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 20*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "usd", cfg.PaymentCurrency)
	assert.Equal(t, 4, cfg.HydrationConcurrency)
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	clearEnv(t, "OIDC_ISSUER", "OIDC_AUDIENCE")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_MAX_OPEN_CONNS", "-3")
	t.Setenv("ACCESS_TOKEN_TTL", "abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.MaxOpenConns)
	assert.Equal(t, 20*time.Minute, cfg.AccessTokenTTL)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Config{StorageDriver: DriverPostgres, OIDCIssuer: "https://issuer.example"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "OIDC_AUDIENCE")
}

func TestValidateUnknownDriver(t *testing.T) {
	err := Config{StorageDriver: "redis", JWTSecret: "x"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}
