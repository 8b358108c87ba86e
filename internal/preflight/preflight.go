package preflight

import (
	"context"

	"gyre/internal/config"
	"gyre/internal/coubapi"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the preflight checks for a run: output directory access,
// FFmpeg availability when a merge or probe can happen, and API connectivity.
// Checks run before any item is scheduled so failures surface as one clear
// error instead of a wall of per-item noise.
func RunAll(ctx context.Context, cfg *config.Config, client *coubapi.Client) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Output.Dir),
		CheckFFmpeg(cfg.Tools.FFmpeg),
	}
	if client != nil {
		results = append(results, CheckConnectivity(ctx, client))
	}
	return results
}
