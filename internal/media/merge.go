package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gyre/internal/services"
)

// MergeSpec describes one remux: loop the video stream Repeat times and
// combine it with the audio stream, optionally capped to Duration.
type MergeSpec struct {
	VideoPath string
	AudioPath string
	OutPath   string
	Repeat    int
	Duration  string
}

// Merge remuxes the streams into OutPath without re-encoding. FFmpeg cannot
// safely overwrite a file that is simultaneously one of its inputs, so the
// result is written under a temporary name and renamed into place only on
// success. The concat playlist is removed in all cases.
func Merge(ctx context.Context, ffmpeg string, spec MergeSpec) error {
	playlist := strings.TrimSuffix(spec.OutPath, filepath.Ext(spec.OutPath)) + ".txt"
	if err := writeConcatPlaylist(playlist, spec.VideoPath, spec.Repeat); err != nil {
		return services.Wrap(services.ErrExternalTool, "media", "write concat playlist", playlist, err)
	}
	defer os.Remove(playlist)

	// Prefix rather than suffix so FFmpeg still detects the muxer from the
	// real extension.
	temp := filepath.Join(filepath.Dir(spec.OutPath), "temp_"+filepath.Base(spec.OutPath))

	args := []string{
		"-y", "-v", "error",
		"-f", "concat", "-safe", "0",
		"-i", "file:" + playlist,
		"-i", "file:" + spec.AudioPath,
	}
	if spec.Duration != "" {
		args = append(args, "-t", spec.Duration)
	}
	args = append(args, "-c", "copy", "-shortest", "file:"+temp)

	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(temp)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrExternalTool, "media", "merge", detail, err)
	}

	if err := os.Rename(temp, spec.OutPath); err != nil {
		os.Remove(temp)
		return services.Wrap(services.ErrExternalTool, "media", "replace merged output", spec.OutPath, err)
	}
	return nil
}

// writeConcatPlaylist emits the concat demuxer playlist repeating the video
// entry. Concatenated entries count as one long stream, which is what lets
// -shortest stop at the audio's end.
func writeConcatPlaylist(path, videoPath string, repeat int) error {
	var buf bytes.Buffer
	for i := 0; i < repeat; i++ {
		fmt.Fprintf(&buf, "file 'file:%s'\n", videoPath)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
