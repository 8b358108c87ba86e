// Package services defines the shared error taxonomy. Per-item terminal
// outcomes travel as marker-tagged error values classified with errors.Is,
// never as panics or control-flow exceptions.
package services
