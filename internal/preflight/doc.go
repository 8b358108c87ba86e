// Package preflight provides readiness checks for the external pieces a run
// depends on: the output directory, the FFmpeg binary and the API origin.
// They run once before scheduling so a doomed run fails with one clear error
// instead of a wall of per-item noise.
package preflight
