package media

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"gyre/internal/services"
)

// corruptionSignatures are the FFmpeg stderr messages that indicate missing
// chunks: the first two for audio streams, "Invalid NAL" for video, and the
// moov error for the old Coub storage method.
var corruptionSignatures = []string{
	"Header missing",
	"Failed to read frame size",
	"Invalid NAL",
	"moov atom not found",
}

const moovSignature = "moov atom not found"

// CheckStream runs a short structural probe (decode the first second) over a
// downloaded stream file. Video streams failing with the moov signature get
// the legacy two-byte header patch and one re-probe; anything still broken is
// reported as corrupted.
func CheckStream(ctx context.Context, ffmpeg, path string, video bool) error {
	stderr, err := runProbe(ctx, ffmpeg, path)
	if err != nil {
		return err
	}

	corrupted, moovMissing := classify(stderr)
	if !corrupted {
		return nil
	}

	if video && moovMissing {
		if err := PatchLegacyHeader(path); err != nil {
			return services.Wrap(services.ErrCorrupted, "media", "patch legacy header", path, err)
		}
		stderr, err = runProbe(ctx, ffmpeg, path)
		if err != nil {
			return err
		}
		if corrupted, _ = classify(stderr); !corrupted {
			return nil
		}
	}

	return services.Wrap(services.ErrCorrupted, "media", "verify stream", path, nil)
}

// PatchLegacyHeader overwrites the first two bytes with zeros. Coub used to
// store videos in this broken state and fixed them before playback; some old
// coubs are still stored that way.
func PatchLegacyHeader(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) < 2 {
		return errors.New("stream too short to patch")
	}
	patched := append([]byte{0x00, 0x00}, data[2:]...)
	return os.WriteFile(path, patched, 0o644)
}

// classify matches probe stderr against the known corruption signatures.
func classify(stderr string) (corrupted bool, moovMissing bool) {
	for _, signature := range corruptionSignatures {
		if strings.Contains(stderr, signature) {
			corrupted = true
		}
	}
	moovMissing = strings.Contains(stderr, moovSignature)
	return corrupted, moovMissing
}

// runProbe decodes the first second of the file into the null muxer and
// returns FFmpeg's stderr. Probe exit status is deliberately ignored; only
// the stderr signatures matter.
func runProbe(ctx context.Context, ffmpeg, path string) (string, error) {
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-v", "error",
		"-i", "file:"+path,
		"-t", "1",
		"-f", "null", "-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", services.Wrap(services.ErrExternalTool, "media", "probe", "ffmpeg not runnable", err)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return stderr.String(), nil
}
