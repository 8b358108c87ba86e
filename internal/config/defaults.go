package config

// Default returns the baseline configuration before any file or flag overrides.
// The values mirror what a bare invocation should do: best available quality,
// looped MKV output in the working directory, no sidecar files.
func Default() Config {
	return Config{
		Output: Output{
			Dir:          ".",
			NameTemplate: "%id%",
			TagSeparator: "_",
			MergeExt:     "mkv",
			AllowUnicode: true,
		},
		Download: Download{
			Connections: 25,
			Retries:     5,
			ChunkSize:   1024,
		},
		Format: Format{
			Video:         true,
			Audio:         true,
			VideoQuality:  "best",
			AudioQuality:  "best",
			VideoMax:      "higher",
			VideoMin:      "med",
			AACPreference: 1,
			Repeat:        1000,
			Recoubs:       "include",
		},
		Tools: Tools{
			FFmpeg: "ffmpeg",
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}
