package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/billiards_test?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("COMMAND_TIMEOUT", "")
	t.Setenv("STATUS_SWEEP_INTERVAL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.CommandTimeout)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.False(t, cfg.StorageConfigured())
}

func TestLoadRequiresDatabaseURLAndSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "secret")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost/billiards_test")
	t.Setenv("JWT_SECRET_KEY", "")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/billiards_test")
	t.Setenv("JWT_SECRET_KEY", "secret")

	t.Setenv("SERVER_PORT", "not-a-number")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("SERVER_PORT", "70000")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("COMMAND_TIMEOUT", "-5s")
	_, err = Load()
	require.Error(t, err)
}
