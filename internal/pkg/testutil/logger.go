package testutil

import (
	"testing"

	"github.com/MGTheTrain/crypto-facade/internal/pkg/config"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"

	"github.com/stretchr/testify/require"
)

// SetupTestLogger sets up a logger for testing purposes.
func SetupTestLogger(t *testing.T) logger.Logger {
	t.Helper()

	settings := &config.LoggerSettings{
		LogLevel: config.LogLevelInfo,
		LogType:  config.LogTypeConsole,
	}

	err := logger.InitLogger(settings)
	require.NoError(t, err)

	log, err := logger.GetLogger()
	require.NoError(t, err)

	return log
}

// DefaultEngineSettings returns settings for an unlimited software engine.
func DefaultEngineSettings() *config.EngineSettings {
	return &config.EngineSettings{
		Name:          config.EngineSoftware,
		DefaultDigest: "SHA-256",
	}
}
