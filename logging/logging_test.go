package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/0xalexb/hjarta-configdb/logging"

	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	config := logging.LoggerConfig{Level: "INFO"}
	logger := logging.NewLogger(config, &buf)

	logger.Info("configuration group loaded", slog.String("collection", "*::app"))

	var logEntry map[string]any

	err := json.Unmarshal(buf.Bytes(), &logEntry)
	require.NoError(t, err, "output should be valid JSON")
	require.Equal(t, "configuration group loaded", logEntry["msg"])
	require.Equal(t, "*::app", logEntry["collection"])
	require.Equal(t, "INFO", logEntry["level"])
}

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		configLevel string
		logLevel    slog.Level
		shouldLog   bool
	}{
		{name: "debug logs debug", configLevel: "DEBUG", logLevel: slog.LevelDebug, shouldLog: true},
		{name: "warning alias", configLevel: "WARNING", logLevel: slog.LevelWarn, shouldLog: true},
		{name: "info drops debug", configLevel: "INFO", logLevel: slog.LevelDebug, shouldLog: false},
		{name: "error drops info", configLevel: "ERROR", logLevel: slog.LevelInfo, shouldLog: false},
		{name: "lowercase accepted", configLevel: "debug", logLevel: slog.LevelDebug, shouldLog: true},
		{name: "invalid defaults to info", configLevel: "LOUD", logLevel: slog.LevelInfo, shouldLog: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			logger := logging.NewLogger(logging.LoggerConfig{Level: testCase.configLevel}, &buf)
			logger.Log(context.Background(), testCase.logLevel, "configuration group loaded")

			if testCase.shouldLog {
				require.NotEmpty(t, buf.String(), "log should be written")
			} else {
				require.Empty(t, buf.String(), "log should not be written")
			}
		})
	}
}

func TestNewLogger_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.NewLogger(logging.LoggerConfig{Level: "info", Format: "TEXT"}, &buf)
	logger.Info("configuration group loaded", slog.String("collection", "*::app"))

	require.Contains(t, buf.String(), "level=INFO")
	require.Contains(t, buf.String(), `msg="configuration group loaded"`)
	require.Contains(t, buf.String(), "collection=*::app")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelWarn, logging.ParseLevel("warn"))
	require.Equal(t, slog.LevelInfo, logging.ParseLevel(""))
}

func TestLoggerConfig_ZeroValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	config := logging.LoggerConfig{}
	logger := logging.NewLogger(config, &buf)

	logger.Info("test message")

	var logEntry map[string]any

	err := json.Unmarshal(buf.Bytes(), &logEntry)
	require.NoError(t, err, "output should be valid JSON")
	require.Equal(t, "INFO", logEntry["level"], "default level should be INFO")
}
