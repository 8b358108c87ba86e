package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	cfg := Default()
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize default config: %v", err)
	}
	return cfg
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := validConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestValidateRejectsInvertedTiers(t *testing.T) {
	cfg := validConfig(t)
	cfg.Format.VideoMin = "higher"
	cfg.Format.VideoMax = "med"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for video_min above video_max")
	}
}

func TestValidateRejectsShareWithPartialStreams(t *testing.T) {
	cfg := validConfig(t)
	cfg.Format.Share = true
	cfg.Format.Video = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for share with audio-only output")
	}

	cfg = validConfig(t)
	cfg.Format.Share = true
	cfg.Format.Audio = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for share with video-only output")
	}
}

func TestValidateRejectsBothStreamsDisabled(t *testing.T) {
	cfg := validConfig(t)
	cfg.Format.Video = false
	cfg.Format.Audio = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when video and audio are both disabled")
	}
}

func TestValidateRejectsUnknownContainer(t *testing.T) {
	cfg := validConfig(t)
	cfg.Output.MergeExt = "webm"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported merge container")
	}
}

func TestValidateRejectsBadDuration(t *testing.T) {
	cfg := validConfig(t)
	cfg.Format.Duration = "half an hour"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unparsable duration")
	}
}

func TestValidateRejectsAACOutOfRange(t *testing.T) {
	cfg := validConfig(t)
	cfg.Format.AACPreference = 4
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for aac_preference above 3")
	}
}

func TestNormalizeParsesRequestTimeout(t *testing.T) {
	cfg := Default()
	cfg.Download.RequestTimeout = "1m30s"
	if err := cfg.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got := cfg.RequestTimeout(); got != 90*time.Second {
		t.Fatalf("expected 90s timeout, got %v", got)
	}
}

func TestLoadAppliesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := strings.Join([]string{
		"[download]",
		"connections = 4",
		"retries = -1",
		"",
		"[format]",
		"video_max = \"high\"",
		"aac_preference = 3",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatalf("expected config at %s to be detected", resolved)
	}
	if cfg.Download.Connections != 4 {
		t.Fatalf("expected connections override, got %d", cfg.Download.Connections)
	}
	if cfg.Download.Retries != -1 {
		t.Fatalf("expected infinite retries, got %d", cfg.Download.Retries)
	}
	if cfg.Format.VideoMax != "high" {
		t.Fatalf("expected video_max override, got %q", cfg.Format.VideoMax)
	}
	if cfg.Format.AACPreference != 3 {
		t.Fatalf("expected aac_preference override, got %d", cfg.Format.AACPreference)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to be reported as absent")
	}
	if cfg.Download.Connections != 25 {
		t.Fatalf("expected default connections, got %d", cfg.Download.Connections)
	}
}

func TestCustomTemplate(t *testing.T) {
	cfg := validConfig(t)
	if cfg.CustomTemplate() {
		t.Fatal("default %id% template should not count as custom")
	}
	cfg.Output.NameTemplate = "%channel% - %title%"
	if !cfg.CustomTemplate() {
		t.Fatal("expected custom template to be detected")
	}
}

func TestWriteSampleRefusesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error when sample target exists")
	}
}
