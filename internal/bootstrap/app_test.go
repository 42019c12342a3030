package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appsvc "gemcanvas/internal/app"
	"gemcanvas/internal/config"
	"gemcanvas/internal/logger"
)

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.WarnLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func memoryConfig() *config.Config {
	return &config.Config{
		App:   config.AppConfig{Name: "gemcanvas-test"},
		Auth:  config.AuthConfig{OwnerName: "owner", JWTSecret: "secret", JWTExpireMinute: 5},
		LLM:   config.LLMConfig{Provider: config.ProviderGemini},
		Store: config.StoreConfig{Driver: config.StoreDriverMemory},
	}
}

func TestNew_WarnsWhenOwnerAuthDisabled(t *testing.T) {
	log, logs := observedLogger()
	a, err := New(context.Background(), memoryConfig(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.False(t, a.Auth.Enabled())
	assert.Equal(t, 1, logs.FilterMessageSnippet("owner auth disabled").Len())
	assert.ErrorIs(t, a.ConfigErr, appsvc.ErrGatewayNotConfigured)
}

func TestNew_NoAuthWarningWithOwnerPassword(t *testing.T) {
	log, logs := observedLogger()
	cfg := memoryConfig()
	cfg.Auth.OwnerPasswordHash = "$2a$10$abcdefghijklmnopqrstuuN0b8mTj3yRy5lqvE2yTn2kqvW1jZ2u"
	a, err := New(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.True(t, a.Auth.Enabled())
	assert.Zero(t, logs.FilterMessageSnippet("owner auth disabled").Len())
}
