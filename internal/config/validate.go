package config

import (
	"errors"
	"fmt"

	"github.com/dannav/hhmmss"
)

// VideoTiers maps the three ordinal quality tiers to their rank.
var VideoTiers = map[string]int{
	"med":    0,
	"high":   1,
	"higher": 2,
}

var mergeExtensions = map[string]struct{}{
	"mkv": {},
	"mp4": {},
	"asf": {},
	"avi": {},
	"flv": {},
	"f4v": {},
	"mov": {},
}

var recoubPolicies = map[string]struct{}{
	"exclude": {},
	"include": {},
	"only":    {},
}

// Validate ensures the configuration is usable. All fatal option errors are
// surfaced here, before any item is scheduled.
func (c *Config) Validate() error {
	if err := c.validateFormat(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFormat() error {
	if !c.Format.Video && !c.Format.Audio {
		return errors.New("format.video and format.audio must not both be disabled")
	}
	if c.Format.VideoQuality != "worst" && c.Format.VideoQuality != "best" {
		return fmt.Errorf("format.video_quality must be 'worst' or 'best', got %q", c.Format.VideoQuality)
	}
	if c.Format.AudioQuality != "worst" && c.Format.AudioQuality != "best" {
		return fmt.Errorf("format.audio_quality must be 'worst' or 'best', got %q", c.Format.AudioQuality)
	}

	minTier, ok := VideoTiers[c.Format.VideoMin]
	if !ok {
		return fmt.Errorf("format.video_min must be one of med/high/higher, got %q", c.Format.VideoMin)
	}
	maxTier, ok := VideoTiers[c.Format.VideoMax]
	if !ok {
		return fmt.Errorf("format.video_max must be one of med/high/higher, got %q", c.Format.VideoMax)
	}
	if minTier > maxTier {
		return fmt.Errorf("format.video_min %q must not exceed format.video_max %q", c.Format.VideoMin, c.Format.VideoMax)
	}

	if c.Format.AACPreference < 0 || c.Format.AACPreference > 3 {
		return fmt.Errorf("format.aac_preference must be between 0 (mp3 only) and 3 (aac only), got %d", c.Format.AACPreference)
	}

	// Share mode yields a single combined stream, so partial-stream toggles
	// make no sense alongside it.
	if c.Format.Share && (!c.Format.Video || !c.Format.Audio) {
		return errors.New("format.share cannot be combined with video-only or audio-only output")
	}

	if c.Format.Repeat <= 0 {
		return errors.New("format.repeat must be positive")
	}
	if c.Format.Duration != "" {
		if _, err := hhmmss.Parse(c.Format.Duration); err != nil {
			return fmt.Errorf("format.duration: invalid HH:MM:SS value %q: %w", c.Format.Duration, err)
		}
	}
	if _, ok := recoubPolicies[c.Format.Recoubs]; !ok {
		return fmt.Errorf("format.recoubs must be one of exclude/include/only, got %q", c.Format.Recoubs)
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.Connections <= 0 {
		return errors.New("download.connections must be positive")
	}
	if c.Download.ChunkSize <= 0 {
		return errors.New("download.chunk_size must be positive")
	}
	if c.Download.MaxItems < 0 {
		return errors.New("download.max_items must not be negative")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if _, ok := mergeExtensions[c.Output.MergeExt]; !ok {
		return fmt.Errorf("output.merge_ext %q is not a supported container", c.Output.MergeExt)
	}
	if c.Output.Dir == "" {
		return errors.New("output.dir must be set")
	}
	return nil
}
