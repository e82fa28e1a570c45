package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("AMQP_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "9090", cfg.GRPCPort)
	assert.Equal(t, 10, cfg.MessageRatePerMin)
	assert.Equal(t, "jurny-api", cfg.ServiceName)
	assert.False(t, cfg.MediaEnabled())
	assert.False(t, cfg.DebugRoutes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9000")
	t.Setenv("MESSAGE_RATE_PER_MIN", "30")
	t.Setenv("DEBUG_ROUTES", "true")
	t.Setenv("S3_REGION", "ap-northeast-1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30, cfg.MessageRatePerMin)
	assert.True(t, cfg.DebugRoutes)
	assert.True(t, cfg.MediaEnabled())
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("MESSAGE_RATE_PER_MIN", "many")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("MESSAGE_RATE_PER_MIN", "0")
	_, err = Load()
	require.Error(t, err)
}
