package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Output contains destination directory and sidecar file configuration.
type Output struct {
	Dir             string `toml:"dir"`
	NameTemplate    string `toml:"name_template"`
	TagSeparator    string `toml:"tag_separator"`
	MergeExt        string `toml:"merge_ext"`
	AllowUnicode    bool   `toml:"allow_unicode"`
	Overwrite       bool   `toml:"overwrite"`
	Keep            bool   `toml:"keep"`
	ArchivePath     string `toml:"archive"`
	JSONPath        string `toml:"json"`
	UnavailablePath string `toml:"unavailable_list"`
	WriteListPath   string `toml:"write_list"`
}

// Download contains connection and retry configuration.
type Download struct {
	Connections    int    `toml:"connections"`
	Retries        int    `toml:"retries"`
	ChunkSize      int    `toml:"chunk_size"`
	RequestTimeout string `toml:"request_timeout"`
	MaxItems       int    `toml:"max_items"`
}

// Format contains stream selection and merge configuration.
type Format struct {
	Video         bool   `toml:"video"`
	Audio         bool   `toml:"audio"`
	VideoQuality  string `toml:"video_quality"`
	AudioQuality  string `toml:"audio_quality"`
	VideoMax      string `toml:"video_max"`
	VideoMin      string `toml:"video_min"`
	AACPreference int    `toml:"aac_preference"`
	Share         bool   `toml:"share"`
	Repeat        int    `toml:"repeat"`
	Duration      string `toml:"duration"`
	Recoubs       string `toml:"recoubs"`
}

// Tools contains paths to external binaries.
type Tools struct {
	FFmpeg string `toml:"ffmpeg"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for gyre.
//
// Configuration sections by subsystem:
//   - Output: destination directory, naming, sidecar files
//   - Download: connection pool size, retries, chunking
//   - Format: quality tiers, audio encoding preference, merge behavior
//   - Tools: external binary locations
//   - Logging: log format and level
type Config struct {
	Output   Output   `toml:"output"`
	Download Download `toml:"download"`
	Format   Format   `toml:"format"`
	Tools    Tools    `toml:"tools"`
	Logging  Logging  `toml:"logging"`

	requestTimeout time.Duration
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gyre/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. A missing file is not an error;
// defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(defaultPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultPath, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return defaultPath, true, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// clobber an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// RequestTimeout reports the parsed per-request timeout. Zero means no timeout.
func (c *Config) RequestTimeout() time.Duration {
	return c.requestTimeout
}

// AudioOnly reports whether only audio streams should be downloaded.
func (c *Config) AudioOnly() bool {
	return c.Format.Audio && !c.Format.Video
}

// VideoOnly reports whether only video streams should be downloaded.
func (c *Config) VideoOnly() bool {
	return c.Format.Video && !c.Format.Audio
}

// CustomTemplate reports whether the output name depends on item metadata.
// The default "%id%" template is resolvable without an API request.
func (c *Config) CustomTemplate() bool {
	tmpl := strings.TrimSpace(c.Output.NameTemplate)
	return tmpl != "" && tmpl != "%id%"
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return abs, nil
}
