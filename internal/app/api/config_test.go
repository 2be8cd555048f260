package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	t.Setenv("HTTP_READ_TIMEOUT", "")
	t.Setenv("HTTP_WRITE_TIMEOUT", "")
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("DB_TX_MAX_RETRIES", "")

	cfg, err := configFromEnv()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr())
	require.Equal(t, localJWTSecret, cfg.JWTSecret)
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, 10*time.Second, cfg.ReadTimeout)
	require.Equal(t, 3, cfg.TxMaxRetries)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("HTTP_WRITE_TIMEOUT", "30s")
	t.Setenv("TEMPORAL_DISABLED", "true")

	cfg, err := configFromEnv()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr())
	require.Equal(t, 2*time.Hour, cfg.JWTTTL)
	require.Equal(t, 30*time.Second, cfg.WriteTimeout)
	require.True(t, cfg.TemporalDisabled)
}

func TestConfigFromEnv_Rejects(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := configFromEnv()
	require.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s")
	t.Setenv("JWT_TTL_HOURS", "0")
	_, err = configFromEnv()
	require.ErrorContains(t, err, "JWT_TTL_HOURS")

	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("HTTP_READ_TIMEOUT", "soon")
	_, err = configFromEnv()
	require.ErrorContains(t, err, "HTTP_READ_TIMEOUT")
}
