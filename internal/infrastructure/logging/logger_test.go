package logging

import (
	"log/slog"
	"testing"

	"github.com/avencall/homegrid-core/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewDoesNotPanic(t *testing.T) {
	cfgs := []config.LoggingConfig{
		{Level: "debug", Format: "text", Output: "stderr"},
		{Level: "info", Format: "json", Output: "stdout"},
		{},
	}

	for _, cfg := range cfgs {
		log := New(cfg, "test")
		if log == nil {
			t.Fatalf("New(%+v) returned nil", cfg)
		}
		log.Debug("debug message", "key", "value")
		log.Info("info message")
	}
}

func TestWithPreservesLogger(t *testing.T) {
	log := Default()
	child := log.With("component", "test")
	if child == nil || child.Logger == nil {
		t.Fatal("With() returned nil logger")
	}
	child.Info("message from child")
}
