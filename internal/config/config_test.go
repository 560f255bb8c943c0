package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/fluidsim/internal/dynamo"
	"github.com/san-kum/fluidsim/internal/fluid"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Params() != fluid.DefaultParams() {
		t.Errorf("default config does not round-trip to default params:\n%+v\n%+v", cfg.Params(), fluid.DefaultParams())
	}
	if cfg.Run.Frames <= 0 {
		t.Error("frames should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Particles.Dam != 2000 || cfg.Run.Frames != 100 {
		t.Errorf("unexpected small preset: dam=%d frames=%d", cfg.Particles.Dam, cfg.Run.Frames)
	}

	cfg.Particles.Dam = 1
	if GetPreset("small").Particles.Dam != 2000 {
		t.Error("GetPreset returned a shared config")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i, name := range names {
		if i > 0 && names[i-1] > name {
			t.Errorf("presets not sorted: %v", names)
		}
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		err    error
	}{
		{"tiny domain", func(c *Config) { c.Domain.Width = 0.2 }, dynamo.ErrGridTooSmall},
		{"zero steps", func(c *Config) { c.Solver.Steps = 0 }, dynamo.ErrParameterBounds},
		{"negative radius", func(c *Config) { c.Particles.Radius = -1 }, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Run.Frames = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative frames")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluid.yaml")

	cfg := GetPreset("splash")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Params() != cfg.Params() {
		t.Errorf("params changed across save/load:\n%+v\n%+v", loaded.Params(), cfg.Params())
	}
	if len(loaded.Run.Blocks) != 3 || loaded.Run.Blocks[1] != 100 {
		t.Errorf("blocks not preserved: %v", loaded.Run.Blocks)
	}
}

func TestLoad_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "physics:\n  stiffness: 0.2\nrun:\n  frames: 50\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Physics.Stiffness != 0.2 || cfg.Run.Frames != 50 {
		t.Errorf("overrides not applied: %+v %+v", cfg.Physics, cfg.Run)
	}
	if cfg.Physics.RestDensity != 45 || cfg.Particles.Dam != fluid.DefaultDamParticles {
		t.Error("defaults not kept for missing keys")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("physics: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
