package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	testCases := []struct {
		name        string
		environment string
		level       string
		expected    log.Level
	}{
		{name: "development defaults to debug", environment: "development", expected: log.DebugLevel},
		{name: "production defaults to error", environment: "production", expected: log.ErrorLevel},
		{name: "other environments default to info", environment: "staging", expected: log.InfoLevel},
		{name: "explicit level wins", environment: "production", level: "warn", expected: log.WarnLevel},
		{name: "invalid level falls back to environment", environment: "development", level: "loud", expected: log.DebugLevel},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevelFor(tt.environment, tt.level))
		})
	}
}

func TestSetupWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")
	closer := Setup(Options{Environment: "test", Level: "info", File: path})
	t.Cleanup(func() {
		closer.Close()
		log.SetOutput(os.Stdout)
	})

	log.WithField("order_id", 42).Info("Order created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"order_id":42`)
	assert.Contains(t, string(data), `"msg":"Order created"`)
}
