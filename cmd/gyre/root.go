package main

import (
	"github.com/spf13/cobra"

	"gyre/internal/config"
)

func newRootCommand() *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:           "gyre [flags] <url|path|id>...",
		Short:         "Bulk downloader for coub.com",
		Long:          "gyre downloads coubs from direct links, link list files, channels, tags,\nsearches, communities, stories and the hot section, with looped-video\nmerging, deduplication and archive support.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return run(cmd, flags, args)
		},
	}

	flags.register(rootCmd)
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// runFlags holds every command line override. A flag only overrides the
// config file value when it was explicitly set.
type runFlags struct {
	configPath string

	outputDir       string
	nameTemplate    string
	mergeExt        string
	overwrite       bool
	keep            bool
	archivePath     string
	jsonPath        string
	unavailablePath string
	writeListPath   string

	connections int
	retries     int
	maxItems    int

	audioOnly    bool
	videoOnly    bool
	share        bool
	videoQuality string
	audioQuality string
	videoMax     string
	videoMin     string
	aac          int
	repeat       int
	duration     string
	recoubs      string

	ffmpegPath string
	logLevel   string
	logFormat  string
}

func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "Configuration file path")
	fl.StringVarP(&f.outputDir, "path", "p", "", "Output directory")
	fl.StringVar(&f.nameTemplate, "name-template", "", "Output name template (%id%, %title%, %creation%, %channel%, %community%, %tags%)")
	fl.StringVar(&f.mergeExt, "merge-ext", "", "Container for merged output (mkv, mp4, asf, avi, flv, f4v, mov)")
	fl.BoolVarP(&f.overwrite, "overwrite", "y", false, "Overwrite existing files")
	fl.BoolVarP(&f.keep, "keep", "k", false, "Keep the separate streams after merging")
	fl.StringVar(&f.archivePath, "archive", "", "Skip items listed in this file and record finished ones")
	fl.StringVar(&f.jsonPath, "json", "", "Append metadata of finished items to this file")
	fl.StringVar(&f.unavailablePath, "unavailable-list", "", "Append links of unavailable items to this file")
	fl.StringVar(&f.writeListPath, "write-list", "", "Write parsed links to this file instead of downloading")

	fl.IntVar(&f.connections, "connections", 0, "Maximum number of connections")
	fl.IntVar(&f.retries, "retries", 0, "Retry attempts for metadata requests (negative for infinite)")
	fl.IntVar(&f.maxItems, "limit-num", 0, "Limit how many items get downloaded")

	fl.BoolVar(&f.audioOnly, "audio-only", false, "Only download audio streams")
	fl.BoolVar(&f.videoOnly, "video-only", false, "Only download video streams")
	fl.BoolVar(&f.share, "share", false, "Download the combined share version")
	fl.StringVar(&f.videoQuality, "video-quality", "", "Video stream preference (worst, best)")
	fl.StringVar(&f.audioQuality, "audio-quality", "", "Audio stream preference (worst, best)")
	fl.StringVar(&f.videoMax, "max-video", "", "Highest allowed video tier (med, high, higher)")
	fl.StringVar(&f.videoMin, "min-video", "", "Lowest allowed video tier (med, high, higher)")
	fl.IntVar(&f.aac, "aac", -1, "AAC preference: 0 never, 1 allow, 2 prefer, 3 only")
	fl.IntVarP(&f.repeat, "repeat", "r", 0, "Repeat the video N times")
	fl.StringVarP(&f.duration, "duration", "d", "", "Limit the output duration (FFmpeg syntax)")
	fl.StringVar(&f.recoubs, "recoubs", "", "Recoub policy for channels (include, exclude, only)")

	fl.StringVar(&f.ffmpegPath, "ffmpeg-path", "", "FFmpeg binary to use")
	fl.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fl.StringVar(&f.logFormat, "log-format", "", "Log format (console, json)")
}

// apply copies changed flags onto the loaded config.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed

	if set("path") {
		cfg.Output.Dir = f.outputDir
	}
	if set("name-template") {
		cfg.Output.NameTemplate = f.nameTemplate
	}
	if set("merge-ext") {
		cfg.Output.MergeExt = f.mergeExt
	}
	if set("overwrite") {
		cfg.Output.Overwrite = f.overwrite
	}
	if set("keep") {
		cfg.Output.Keep = f.keep
	}
	if set("archive") {
		cfg.Output.ArchivePath = f.archivePath
	}
	if set("json") {
		cfg.Output.JSONPath = f.jsonPath
	}
	if set("unavailable-list") {
		cfg.Output.UnavailablePath = f.unavailablePath
	}
	if set("write-list") {
		cfg.Output.WriteListPath = f.writeListPath
	}

	if set("connections") {
		cfg.Download.Connections = f.connections
	}
	if set("retries") {
		cfg.Download.Retries = f.retries
	}
	if set("limit-num") {
		cfg.Download.MaxItems = f.maxItems
	}

	if set("audio-only") && f.audioOnly {
		cfg.Format.Video = false
		cfg.Format.Audio = true
	}
	if set("video-only") && f.videoOnly {
		cfg.Format.Video = true
		cfg.Format.Audio = false
	}
	if set("share") {
		cfg.Format.Share = f.share
	}
	if set("video-quality") {
		cfg.Format.VideoQuality = f.videoQuality
	}
	if set("audio-quality") {
		cfg.Format.AudioQuality = f.audioQuality
	}
	if set("max-video") {
		cfg.Format.VideoMax = f.videoMax
	}
	if set("min-video") {
		cfg.Format.VideoMin = f.videoMin
	}
	if set("aac") {
		cfg.Format.AACPreference = f.aac
	}
	if set("repeat") {
		cfg.Format.Repeat = f.repeat
	}
	if set("duration") {
		cfg.Format.Duration = f.duration
	}
	if set("recoubs") {
		cfg.Format.Recoubs = f.recoubs
	}

	if set("ffmpeg-path") {
		cfg.Tools.FFmpeg = f.ffmpegPath
	}
	if set("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if set("log-format") {
		cfg.Logging.Format = f.logFormat
	}
}

// loadConfig reads the config file and layers the command line on top. The
// combined result is normalized and validated once, so file values and flag
// values go through the same checks.
func (f *runFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, _, _, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	f.apply(cmd, cfg)
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
