package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config at %s", path)
	}
	if cfg.Encoding.Scale != defaultScale || cfg.Encoding.Preset != defaultPreset {
		t.Fatalf("expected defaults, got %+v", cfg.Encoding)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "~/out"

[encoding]
aspect = " 4:3 "
scale = 720
scale_mode = "LONG"
crf = 20
preset = "Slow"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config to exist")
	}
	if cfg.Encoding.Aspect != "4:3" || cfg.Encoding.ScaleMode != "long" || cfg.Encoding.Preset != "slow" {
		t.Fatalf("normalization failed: %+v", cfg.Encoding)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if cfg.Paths.OutputDir != filepath.Join(home, "out") {
		t.Fatalf("expected tilde expansion, got %q", cfg.Paths.OutputDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"crf too high", func(c *Config) { c.Encoding.CRF = 52 }, "crf"},
		{"crf negative", func(c *Config) { c.Encoding.CRF = -1 }, "crf"},
		{"zero scale", func(c *Config) { c.Encoding.Scale = -10 }, "scale"},
		{"bad preset", func(c *Config) { c.Encoding.Preset = "warp9" }, "preset"},
		{"bad scale mode", func(c *Config) { c.Encoding.ScaleMode = "diagonal" }, "scale_mode"},
		{"bad aspect", func(c *Config) { c.Encoding.Aspect = "wide" }, "aspect"},
		{"zero aspect component", func(c *Config) { c.Encoding.Aspect = "0:9" }, "aspect"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "format"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "level"},
	}
	for _, tc := range cases {
		cfg := Default()
		if err := cfg.normalize(); err != nil {
			t.Fatalf("%s: normalize: %v", tc.name, err)
		}
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %q", tc.name, err, tc.want)
		}
	}
}

func TestWriteSampleRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[encoding]") {
		t.Fatalf("sample missing encoding section: %q", string(data))
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error for existing file")
	}
}

func TestNtfyTopicFromEnvironment(t *testing.T) {
	t.Setenv("REFRAME_NTFY_TOPIC", "https://ntfy.sh/reframe-test")
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/reframe-test" {
		t.Fatalf("expected env topic, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.OutputDir = filepath.Join(dir, "out")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	for _, created := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(created)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", created, err)
		}
	}
}
