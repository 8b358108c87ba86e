package pipeline

import (
	"context"

	"gyre/internal/media"
)

// probeStream and mergeStreams are the FFmpeg entry points used by the
// pipeline. They are package-level variables so tests can override them.
var (
	probeStream  = media.CheckStream
	mergeStreams = media.Merge
)

// SetProbeForTests overrides the stream verifier during tests.
func SetProbeForTests(fn func(ctx context.Context, ffmpeg, path string, video bool) error) func() {
	previous := probeStream
	probeStream = fn
	return func() {
		probeStream = previous
	}
}

// SetMergeForTests overrides the remuxer during tests.
func SetMergeForTests(fn func(ctx context.Context, ffmpeg string, spec media.MergeSpec) error) func() {
	previous := mergeStreams
	mergeStreams = fn
	return func() {
		mergeStreams = previous
	}
}
