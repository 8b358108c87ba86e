package deps

import (
	"os/exec"
	"strings"
)

// ResolveFFmpegPath returns the FFmpeg command to execute. A configured path
// wins as-is; otherwise the binary is resolved from PATH so status output
// shows the absolute location that will actually run.
func ResolveFFmpegPath(configured string) string {
	configured = strings.TrimSpace(configured)
	if configured != "" && configured != "ffmpeg" {
		return configured
	}
	if resolved, err := exec.LookPath("ffmpeg"); err == nil {
		return resolved
	}
	return "ffmpeg"
}
