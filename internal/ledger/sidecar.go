package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Appender serializes append-only line writes to a sidecar file. The file is
// opened per call; the mutex keeps concurrent pipelines from interleaving
// partial lines.
type Appender struct {
	mu   sync.Mutex
	path string
}

// NewAppender builds an appender for path. An empty path yields a disabled
// appender whose writes are no-ops.
func NewAppender(path string) *Appender {
	return &Appender{path: path}
}

// Enabled reports whether a target file is configured.
func (a *Appender) Enabled() bool {
	return a != nil && a.path != ""
}

// AppendLine writes one line to the sidecar file.
func (a *Appender) AppendLine(line string) error {
	if !a.Enabled() {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	file, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open sidecar %s: %w", a.path, err)
	}
	if _, err := fmt.Fprintln(file, line); err != nil {
		file.Close()
		return fmt.Errorf("append sidecar line: %w", err)
	}
	return file.Close()
}

// ItemRecord is the JSON object appended per successful item.
type ItemRecord struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Creation  string   `json:"creation"`
	Channel   string   `json:"channel"`
	Community string   `json:"community"`
	Tags      []string `json:"tags"`
}

// AppendJSON marshals v onto a single sidecar line.
func (a *Appender) AppendJSON(v any) error {
	if !a.Enabled() {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal sidecar record: %w", err)
	}
	return a.AppendLine(string(data))
}
