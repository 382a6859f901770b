package bootstrap

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoii-livecomm/socialauth/config"
)

func TestInitLoggerLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := InitLogger(&buf, false)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger = InitLogger(&buf, true)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.Same(t, logger, slog.Default())

	logger.Info("hello", "component", "test")
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_SCHEME", "kiosk://")
	t.Setenv("SESSION_DRIVER", "redis")
	t.Setenv("OAUTH_TIMEOUT", "2m")
	t.Setenv("LINE_CLIENT_ID", "line-channel")
	t.Setenv("BACKEND_API_BASE_URL", "https://api.example.com/v1/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "kiosk", cfg.AppScheme)
	assert.Equal(t, config.SessionDriverRedis, cfg.Session.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Providers.OAuthTimeout)
	assert.Equal(t, "https://api.example.com/v1", cfg.Backend.APIBaseURL)
	line, ok := cfg.Providers.Get("line")
	require.True(t, ok)
	assert.Equal(t, "line-channel", line.ClientID)
}

func TestLoadConfigRejectsBadDriver(t *testing.T) {
	t.Setenv("SESSION_DRIVER", "etcd")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "parse config")
}
