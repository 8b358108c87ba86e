package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"gyre/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp output directory per
// test. Retries are disabled so tests fail fast instead of hammering their
// fake servers.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Output.Dir = filepath.Join(base, "out")
	if err := os.MkdirAll(cfgVal.Output.Dir, 0o755); err != nil {
		t.Fatalf("mkdir output dir: %v", err)
	}
	cfgVal.Download.Retries = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithArchive points the config at an archive file inside the test base dir.
func WithArchive() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.ArchivePath = filepath.Join(b.baseDir, "archive.txt")
	}
}

// WithSidecars enables the JSON and unavailable sidecar files.
func WithSidecars() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.JSONPath = filepath.Join(b.baseDir, "items.json")
		b.cfg.Output.UnavailablePath = filepath.Join(b.baseDir, "unavailable.txt")
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Output.Dir)
}
