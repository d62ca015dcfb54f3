// Package logging builds the application logger from configuration.
package logging

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/the-recircle-app/veconnect/internal/config"
)

// logFilePermissions is the permission mode for the log file.
const logFilePermissions = 0o600

// ParseLevel maps a config level string to a zap level. Unknown values
// fall back to error, matching the default config.
func ParseLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return zapcore.InvalidLevel, false
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.ErrorLevel, true
	}
}

// New builds a logger from the logging configuration. Logs go to the
// configured file so they never interleave with command output on
// stdout; with level "off" or no file configured, logging is disabled.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, enabled := ParseLevel(cfg.Level)
	if !enabled || cfg.File == "" {
		return zap.NewNop(), nil
	}

	path := config.ExpandHome(cfg.File)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFilePermissions)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(file),
		level,
	)
	return zap.New(core), nil
}
