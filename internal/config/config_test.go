package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/verletsim/internal/constraints"
	"github.com/san-kum/verletsim/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 1000 {
		t.Errorf("expected capacity 1000, got %d", cfg.Capacity)
	}
	if cfg.SubSteps != 8 {
		t.Errorf("expected 8 sub-steps, got %d", cfg.SubSteps)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Frames() != 1800 {
		t.Errorf("expected 1800 frames in 30 s, got %d", cfg.Frames())
	}
}

func TestSimConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Collision.Policy = "equal_split"
	cfg.Seed = 9

	sc, err := cfg.Sim()
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	if sc.Policy != constraints.EqualSplit {
		t.Errorf("expected equal split, got %v", sc.Policy)
	}
	if sc.Boundary.Center.X != 500 || sc.Boundary.Radius != 450 {
		t.Errorf("unexpected boundary %+v", sc.Boundary)
	}
	if sc.Gravity.Y != 1000 {
		t.Errorf("unexpected gravity %+v", sc.Gravity)
	}
	if sc.Spawn.Offset.X != 200 || sc.Spawn.Offset.Y != -200 {
		t.Errorf("unexpected spawn offset %+v", sc.Spawn.Offset)
	}
	if sc.Seed != 9 {
		t.Errorf("seed not carried: %d", sc.Seed)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"capacity", func(c *Config) { c.Capacity = 0 }, dynamo.ErrInvalidCapacity},
		{"boundary", func(c *Config) { c.Boundary.Radius = -1 }, dynamo.ErrInvalidBoundary},
		{"policy", func(c *Config) { c.Collision.Policy = "bouncy" }, dynamo.ErrUnknownPolicy},
		{"response", func(c *Config) { c.Collision.Response = 2 }, dynamo.ErrInvalidResponse},
		{"ceiling", func(c *Config) { c.Spawn.FillCeiling = 150 }, dynamo.ErrInvalidFillCeiling},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.FrameDt = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero frame_dt")
	}

	cfg = DefaultConfig()
	cfg.Duration = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative duration")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	data := "capacity: 250\ncollision:\n  policy: equal\n  response: 1\nspawn:\n  min_interval: 0.02\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Capacity != 250 {
		t.Errorf("expected capacity 250, got %d", cfg.Capacity)
	}
	if cfg.Collision.Policy != "equal" || cfg.Collision.Response != 1 {
		t.Errorf("unexpected collision %+v", cfg.Collision)
	}
	if cfg.Spawn.MinInterval != 0.02 {
		t.Errorf("expected interval 0.02, got %f", cfg.Spawn.MinInterval)
	}
	if cfg.SubSteps != DefaultSubSteps || cfg.Spawn.RadiusMax != DefaultRadiusMax {
		t.Error("unset keys should keep their defaults")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := GetPreset("dense")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip changed config:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("capacity: [1, 2"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("simple")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.SubSteps != 1 || cfg.Collision.Policy != "equal" {
		t.Errorf("unexpected simple preset %+v", cfg)
	}

	cfg.Capacity = 1
	if Presets["simple"].Capacity == 1 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	want := []string{"canonical", "dense", "interval", "simple"}
	if len(presets) != len(want) {
		t.Fatalf("expected %v, got %v", want, presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("presets[%d] = %s, want %s", i, presets[i], want[i])
		}
	}

	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
