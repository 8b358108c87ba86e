package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"gyre/internal/config"
	"gyre/internal/coubapi"
	"gyre/internal/ledger"
	"gyre/internal/logging"
	"gyre/internal/pipeline"
	"gyre/internal/preflight"
	"gyre/internal/progress"
	"gyre/internal/scheduler"
	"gyre/internal/sources"
)

func run(cmd *cobra.Command, flags *runFlags, args []string) error {
	cfg, err := flags.loadConfig(cmd)
	if err != nil {
		return exitWith(exitOptions, err)
	}

	// Progress lines own stdout; everything diagnostic goes to stderr.
	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: os.Stderr,
	})
	if err != nil {
		return exitWith(exitOptions, err)
	}

	parsed := make([]sources.Source, 0, len(args))
	for _, arg := range args {
		src, err := sources.ParseInput(arg, cfg.Format.Recoubs)
		if err != nil {
			return exitWith(exitOptions, fmt.Errorf("input %q: %w", arg, err))
		}
		parsed = append(parsed, src)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := coubapi.New(
		coubapi.WithRetries(cfg.Download.Retries),
		coubapi.WithHTTPClient(coubapi.NewHTTPClient(cfg.Download.Connections, cfg.RequestTimeout())),
	)

	if code, err := runPreflight(ctx, cfg, client); err != nil {
		return exitWith(code, err)
	}

	ids, err := enumerate(ctx, parsed, client, cfg.Download.MaxItems, logger)
	if err != nil {
		if ctx.Err() != nil {
			return exitWith(exitInterrupt, ctx.Err())
		}
		return exitWith(exitRuntime, err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No items to download")
		return nil
	}

	if cfg.Output.WriteListPath != "" {
		if err := writeList(cfg.Output.WriteListPath, ids); err != nil {
			return exitWith(exitRuntime, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d links to %s\n", len(ids), cfg.Output.WriteListPath)
		return nil
	}

	led, err := ledger.New(cfg.Output.ArchivePath)
	if err != nil {
		return exitWith(exitRuntime, err)
	}
	defer led.Close()

	pipe := pipeline.New(cfg, client, led, logger)
	reporter := progress.NewConsoleReporter(cmd.OutOrStdout())
	sched := scheduler.New(pipe, led, reporter, cfg.Download.Connections, logger)

	summary, runErr := sched.Run(ctx, ids)
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))

	switch {
	case errors.Is(runErr, context.Canceled):
		return exitWith(exitInterrupt, runErr)
	case runErr != nil:
		return exitWith(exitRuntime, runErr)
	case summary.Errors > 0:
		return exitWith(exitDownload, fmt.Errorf("%d of %d items failed", summary.Errors, summary.Total))
	}
	return nil
}

// runPreflight maps check failures to their exit codes: a broken output
// directory is a runtime problem, a missing FFmpeg a dependency problem and
// an unreachable API a connection problem.
func runPreflight(ctx context.Context, cfg *config.Config, client *coubapi.Client) (int, error) {
	for _, result := range preflight.RunAll(ctx, cfg, client) {
		if result.Passed {
			continue
		}
		err := fmt.Errorf("%s: %s", result.Name, result.Detail)
		switch result.Name {
		case "FFmpeg":
			return exitDependency, err
		case "Connection":
			return exitConnection, err
		default:
			return exitRuntime, err
		}
	}
	return exitOK, nil
}

// enumerate flattens every source into one identifier list, newest first per
// source, honoring the global item limit across sources.
func enumerate(ctx context.Context, srcs []sources.Source, client *coubapi.Client, limit int, logger *slog.Logger) ([]string, error) {
	var ids []string
	for _, src := range srcs {
		remaining := 0
		if limit > 0 {
			remaining = limit - len(ids)
			if remaining <= 0 {
				break
			}
		}
		found, err := src.IDs(ctx, client, remaining)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", src.Kind(), src.Describe(), err)
		}
		logger.Info("source enumerated",
			logging.String("kind", src.Kind()),
			logging.String("source", src.Describe()),
			logging.Int("items", len(found)))
		ids = append(ids, found...)
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// writeList dumps the canonical links, one per line.
func writeList(path string, ids []string) error {
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(coubapi.CanonicalURL(id))
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write link list: %w", err)
	}
	return nil
}
