package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docgen/config"
)

// New builds the process logger. A json format uses zap's production config,
// anything else a console encoder. verbose forces the debug level.
func New(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.DisableStacktrace = true
	zcfg.OutputPaths = []string{"stderr"}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
