package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/ngfx/errors"
	"github.com/wippyai/ngfx/handle"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Workers != defaultWorkers || cfg.Iterations != defaultIterations {
		t.Fatalf("Default() = %+v", cfg)
	}
	if cfg.LogLevel != zapcore.InfoLevel {
		t.Fatalf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
log_level: debug
workers: 8
iterations: 500
fence_interval: 250us
limits:
  Texture: 4096
  "2": 16
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.LogLevel != zapcore.DebugLevel {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.Workers != 8 || cfg.Iterations != 500 {
		t.Errorf("Workers/Iterations = %d/%d", cfg.Workers, cfg.Iterations)
	}
	if cfg.Objects != defaultObjects {
		t.Errorf("absent objects should default, got %d", cfg.Objects)
	}
	if cfg.FenceInterval != 250*time.Microsecond {
		t.Errorf("FenceInterval = %v", cfg.FenceInterval)
	}
	if cfg.Limits[handle.Texture] != 4096 || cfg.Limits[handle.Sampler] != 16 {
		t.Errorf("Limits = %v", cfg.Limits)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) failed: %v", err)
	}
	want := Default()
	if cfg.Workers != want.Workers || cfg.Objects != want.Objects || cfg.FenceInterval != want.FenceInterval {
		t.Fatalf("empty document should yield defaults, got %+v", cfg)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		kind error
	}{
		{"malformed", "workers: [", errors.ErrInvalidInput},
		{"bad level", "log_level: loud", errors.ErrInvalidInput},
		{"bad interval", "fence_interval: soon", errors.ErrInvalidInput},
		{"zero workers", "workers: 0", errors.ErrInvalidInput},
		{"negative iterations", "iterations: -1", errors.ErrInvalidInput},
		{"zero interval", "fence_interval: 0s", errors.ErrInvalidInput},
		{"unknown type", "limits:\n  Shader: 1", errors.ErrInvalidType},
		{"reserved type", "limits:\n  TypeMax: 1", errors.ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, tt.kind) {
				t.Fatalf("err = %v, want kind %v", err, tt.kind)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Phase != errors.PhaseConfig {
				t.Fatalf("err = %v, want config phase", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ngfx.yaml")
	if err := os.WriteFile(path, []byte("workers: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Workers != 2 {
		t.Fatalf("Workers = %d, want 2", cfg.Workers)
	}

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v, want wrapped ErrNotExist", err)
	}
}
