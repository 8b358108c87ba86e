// Package main hosts the gyre CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into download
// runs and configuration scaffolding. It centralizes configuration
// resolution, flag overrides, exit code mapping and structured logging setup
// so the heavy lifting can live in the internal packages.
package main
