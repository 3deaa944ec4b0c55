package logger

import (
	"errors"
	"log/slog"
	"os"
	"testing"
)

func TestScope(t *testing.T) {
	attr := Scope("ontology.svc")
	if attr.Key != "scope" {
		t.Errorf("Scope() key = %q, want %q", attr.Key, "scope")
	}
	if attr.Value.String() != "ontology.svc" {
		t.Errorf("Scope() value = %q, want %q", attr.Value.String(), "ontology.svc")
	}
}

func TestError(t *testing.T) {
	err := errors.New("graph store unreachable")
	attr := Error(err)
	if attr.Key != "error" {
		t.Errorf("Error() key = %q, want %q", attr.Key, "error")
	}
	if attr.Value.Any() != err {
		t.Errorf("Error() value = %v, want %v", attr.Value.Any(), err)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	origLevel, hadLevel := os.LookupEnv("LOG_LEVEL")
	defer func() {
		if hadLevel {
			os.Setenv("LOG_LEVEL", origLevel)
		} else {
			os.Unsetenv("LOG_LEVEL")
		}
	}()

	tests := []struct {
		level   string
		enabled slog.Level
		blocked slog.Level
	}{
		{"", slog.LevelInfo, slog.LevelDebug},
		{"debug", slog.LevelDebug, slog.LevelDebug - 4},
		{"warn", slog.LevelWarn, slog.LevelInfo},
		{"warning", slog.LevelWarn, slog.LevelInfo},
		{"error", slog.LevelError, slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			if tt.level == "" {
				os.Unsetenv("LOG_LEVEL")
			} else {
				os.Setenv("LOG_LEVEL", tt.level)
			}

			log := NewLogger()
			if log == nil {
				t.Fatal("NewLogger() returned nil")
			}
			if !log.Enabled(nil, tt.enabled) {
				t.Errorf("level %v should be enabled for LOG_LEVEL=%q", tt.enabled, tt.level)
			}
			if log.Enabled(nil, tt.blocked) {
				t.Errorf("level %v should be disabled for LOG_LEVEL=%q", tt.blocked, tt.level)
			}
		})
	}
}
