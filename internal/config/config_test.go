package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	apng "github.com/raph-of-burgondy/APNG-Builder"
)

func writeConfig(t *testing.T, s string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apngasm.yaml")
	if err := os.WriteFile(path, []byte(s), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
width: 64
height: 32
fps: 25
loops: 3
compression: best
concurrency: 2
output: out.png
frames:
  - a.png
  - b.png
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Width:       64,
		Height:      32,
		FPS:         25,
		Loops:       3,
		Compression: "best",
		Concurrency: 2,
		Output:      "out.png",
		Frames:      []string{"a.png", "b.png"},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("expected %+v, got %+v", want, cfg)
	}
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.CompressionLevel() != apng.BestCompression {
		t.Errorf("expected best compression, got %d", cfg.CompressionLevel())
	}
	wantAnim := apng.Animation{Width: 64, Height: 32, DelayDen: 25, NumPlays: 3}
	if cfg.Animation() != wantAnim {
		t.Errorf("expected %+v, got %+v", wantAnim, cfg.Animation())
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeConfig(t, "fps: [1, 2]")); err == nil {
		t.Error("expected error for bad yaml")
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := &Config{Frames: []string{"a.png"}}
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.FPS != 10 {
		t.Errorf("expected default fps 10, got %d", cfg.FPS)
	}
	if cfg.Compression != "default" || cfg.CompressionLevel() != apng.DefaultCompression {
		t.Errorf("expected default compression, got %q", cfg.Compression)
	}
}

func TestValidateErrors(t *testing.T) {
	for name, cfg := range map[string]*Config{
		"no frames":       {},
		"bad compression": {Frames: []string{"a"}, Compression: "max"},
		"negative jobs":   {Frames: []string{"a"}, Concurrency: -1},
		"width only":      {Frames: []string{"a"}, Width: 10},
	} {
		if err := Validate(cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
