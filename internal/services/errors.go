package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable marks items the upstream API cannot serve: explicit
	// error payloads, no viable stream combination, exhausted metadata
	// retries.
	ErrUnavailable = errors.New("item unavailable")
	// ErrExists marks the normal skip outcome when output already exists
	// and overwriting is disabled.
	ErrExists = errors.New("output already exists")
	// ErrCorrupted marks streams that failed structural verification.
	ErrCorrupted = errors.New("stream corrupted")
	// ErrTransient marks failures worth retrying: connection errors and
	// malformed response bodies.
	ErrTransient = errors.New("transient failure")
	// ErrExternalTool marks FFmpeg invocation failures.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks fatal pre-run errors that abort the whole
	// invocation.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later outcome classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether an error should be retried by the metadata fetch
// retry loop.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransient)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
