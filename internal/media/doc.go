// Package media wraps the FFmpeg invocations of the pipeline: the structural
// probe that detects incomplete transfers and the concat remux that loops a
// short video stream against its audio track.
package media
