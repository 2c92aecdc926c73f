package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"docgen/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		cfg     config.LoggingConfig
		verbose bool
		want    zapcore.Level
	}{
		{config.LoggingConfig{}, false, zapcore.InfoLevel},
		{config.LoggingConfig{Level: "warn"}, false, zapcore.WarnLevel},
		{config.LoggingConfig{Level: "warn", Format: "json"}, true, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		logger, err := New(tt.cfg, tt.verbose)
		if err != nil {
			t.Fatal(err)
		}
		if !logger.Core().Enabled(tt.want) {
			t.Errorf("%+v: expected %v enabled", tt.cfg, tt.want)
		}
		if tt.want > zapcore.DebugLevel && logger.Core().Enabled(tt.want-1) {
			t.Errorf("%+v: expected %v disabled", tt.cfg, tt.want-1)
		}
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "loud"}, false); err == nil {
		t.Error("expected error for invalid level")
	}
}
