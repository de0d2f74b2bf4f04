package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 480, cfg.AccessTokenTTLMinutes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "60")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("AUTH_SECRET", "  padded-secret  ")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Address())
	assert.Equal(t, 60, cfg.AccessTokenTTLMinutes)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "padded-secret", cfg.AuthSecret)
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "-5")
	cfg := Load()
	assert.Equal(t, 480, cfg.AccessTokenTTLMinutes)
}
