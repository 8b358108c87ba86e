package config

import (
	"fmt"
	"strings"

	str2duration "github.com/xhit/go-str2duration/v2"
)

// Normalize expands and absolutizes all path fields and derives parsed values.
// It must run before Validate.
func (c *Config) Normalize() error {
	var err error
	if c.Output.Dir, err = expandPath(c.Output.Dir); err != nil {
		return err
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}

	for _, field := range []*string{
		&c.Output.ArchivePath,
		&c.Output.JSONPath,
		&c.Output.UnavailablePath,
		&c.Output.WriteListPath,
	} {
		if *field, err = expandPath(*field); err != nil {
			return err
		}
	}

	c.Output.MergeExt = strings.ToLower(strings.TrimSpace(c.Output.MergeExt))
	c.Format.VideoQuality = strings.ToLower(strings.TrimSpace(c.Format.VideoQuality))
	c.Format.AudioQuality = strings.ToLower(strings.TrimSpace(c.Format.AudioQuality))
	c.Format.VideoMax = strings.ToLower(strings.TrimSpace(c.Format.VideoMax))
	c.Format.VideoMin = strings.ToLower(strings.TrimSpace(c.Format.VideoMin))
	c.Format.Recoubs = strings.ToLower(strings.TrimSpace(c.Format.Recoubs))
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}

	c.requestTimeout = 0
	if raw := strings.TrimSpace(c.Download.RequestTimeout); raw != "" {
		timeout, err := str2duration.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("download.request_timeout: invalid duration %q: %w", raw, err)
		}
		if timeout < 0 {
			return fmt.Errorf("download.request_timeout must not be negative")
		}
		c.requestTimeout = timeout
	}

	return nil
}
