package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesMarker(t *testing.T) {
	err := Wrap(ErrUnavailable, "pipeline", "fetch metadata", "retry budget exhausted", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable marker, got %v", err)
	}
}

func TestWrapChainsCause(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(ErrTransient, "api", "get", "", cause)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if got := err.Error(); got != "transient failure: api: get: connection reset" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !Retryable(err) {
		t.Fatalf("nil marker should default to transient, got %v", err)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(Wrap(ErrCorrupted, "media", "probe", "", nil)) {
		t.Fatal("corruption must not be retryable")
	}
	if !Retryable(fmt.Errorf("outer: %w", ErrTransient)) {
		t.Fatal("wrapped transient errors must stay retryable")
	}
}
