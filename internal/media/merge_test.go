package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gyre/internal/services"
)

func TestWriteConcatPlaylist(t *testing.T) {
	dir := t.TempDir()
	playlist := filepath.Join(dir, "out.txt")
	if err := writeConcatPlaylist(playlist, filepath.Join(dir, "video.mp4"), 3); err != nil {
		t.Fatalf("write playlist: %v", err)
	}
	data, err := os.ReadFile(playlist)
	if err != nil {
		t.Fatalf("read playlist: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(lines))
	}
	want := fmt.Sprintf("file 'file:%s'", filepath.Join(dir, "video.mp4"))
	for i, line := range lines {
		if line != want {
			t.Fatalf("line %d = %q, want %q", i, line, want)
		}
	}
}

func TestMergeSuccessReplacesOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "clip.mkv")
	// The stub copies its last argument's playlist side effect: it just
	// creates the temp output file the way a successful remux would.
	script := `for last; do :; done
touch "${last#file:}"
exit 0
`
	ffmpeg := stubTool(t, dir, "ffmpeg", script)

	err := Merge(context.Background(), ffmpeg, MergeSpec{
		VideoPath: filepath.Join(dir, "video.mp4"),
		AudioPath: filepath.Join(dir, "audio.mp3"),
		OutPath:   out,
		Repeat:    5,
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("merged output missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "temp_clip.mkv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("temporary output must be renamed away")
	}
	if _, err := os.Stat(filepath.Join(dir, "clip.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("playlist must be removed after the merge")
	}
}

func TestMergeFailureLeavesNoTempOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "clip.mkv")
	script := `for last; do :; done
touch "${last#file:}"
echo 'remux failed' >&2
exit 1
`
	ffmpeg := stubTool(t, dir, "ffmpeg", script)

	err := Merge(context.Background(), ffmpeg, MergeSpec{
		VideoPath: filepath.Join(dir, "video.mp4"),
		AudioPath: filepath.Join(dir, "audio.mp3"),
		OutPath:   out,
		Repeat:    2,
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "remux failed") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "temp_clip.mkv")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("failed merge must not leave a temporary output behind")
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("failed merge must not produce the final output")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "clip.txt")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("playlist must be removed even on failure")
	}
}

func TestMergeDurationFlag(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	script := fmt.Sprintf(`echo "$@" >%q
for last; do :; done
touch "${last#file:}"
exit 0
`, argsFile)
	ffmpeg := stubTool(t, dir, "ffmpeg", script)

	err := Merge(context.Background(), ffmpeg, MergeSpec{
		VideoPath: filepath.Join(dir, "video.mp4"),
		AudioPath: filepath.Join(dir, "audio.mp3"),
		OutPath:   filepath.Join(dir, "clip.mkv"),
		Repeat:    1,
		Duration:  "00:00:10",
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	args := string(data)
	if !strings.Contains(args, "-t 00:00:10") {
		t.Fatalf("expected duration cap in args, got %q", args)
	}
	if !strings.Contains(args, "-c copy -shortest") {
		t.Fatalf("expected stream copy args, got %q", args)
	}
}
