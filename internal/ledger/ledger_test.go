package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.txt")

	first, err := New(path)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	if err := first.RecordCompleted("abc123"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := New(path)
	if err != nil {
		t.Fatalf("reload ledger: %v", err)
	}
	defer second.Close()
	if !second.InArchive("abc123") {
		t.Fatal("expected reloaded ledger to contain appended id")
	}
	if second.InArchive("missing") {
		t.Fatal("unexpected archive member")
	}
}

func TestMissingArchiveFileIsNotAnError(t *testing.T) {
	l, err := New(filepath.Join(t.TempDir(), "absent.txt"))
	if err != nil {
		t.Fatalf("missing archive should start empty, got %v", err)
	}
	defer l.Close()
	if l.InArchive("anything") {
		t.Fatal("archive should be empty")
	}
}

func TestUnreadableArchiveFails(t *testing.T) {
	// A directory at the archive path is unreadable as a file without
	// being non-existent.
	dir := t.TempDir()
	archiveAsDir := filepath.Join(dir, "archive.txt")
	if err := os.Mkdir(archiveAsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := New(archiveAsDir); err == nil {
		t.Fatal("expected error for unreadable archive")
	}
}

func TestSessionCheckAndInsert(t *testing.T) {
	l, err := New("")
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	defer l.Close()

	if l.SeenThisRun("abc") {
		t.Fatal("first sighting must not be a duplicate")
	}
	if !l.SeenThisRun("abc") {
		t.Fatal("second sighting must be a duplicate")
	}
}

func TestSessionConcurrentClaims(t *testing.T) {
	l, err := New("")
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	defer l.Close()

	const workers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	claims := 0
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !l.SeenThisRun("contested") {
				mu.Lock()
				claims++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if claims != 1 {
		t.Fatalf("exactly one goroutine may claim an id, got %d", claims)
	}
}

func TestSecondInvocationBlockedWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.txt")
	first, err := New(path)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	defer first.Close()

	if _, err := New(path); err == nil {
		t.Fatal("expected lock contention error for concurrent invocation")
	}
}

func TestCloseIdempotent(t *testing.T) {
	l, err := New(filepath.Join(t.TempDir(), "archive.txt"))
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestRecordWithoutArchiveIsNoop(t *testing.T) {
	l, err := New("")
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	defer l.Close()
	if err := l.RecordCompleted("abc"); err != nil {
		t.Fatalf("record without archive: %v", err)
	}
}

func TestAppenderLinesAndJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sidecar.txt")
	a := NewAppender(path)

	if err := a.AppendLine("https://coub.com/view/abc"); err != nil {
		t.Fatalf("append line: %v", err)
	}
	if err := a.AppendJSON(ItemRecord{ID: "abc", Tags: []string{"cat"}}); err != nil {
		t.Fatalf("append json: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "https://coub.com/view/abc" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	var record ItemRecord
	if err := json.Unmarshal([]byte(lines[1]), &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record.ID != "abc" || len(record.Tags) != 1 {
		t.Fatalf("unexpected record %+v", record)
	}
}

func TestDisabledAppenderIsNoop(t *testing.T) {
	a := NewAppender("")
	if a.Enabled() {
		t.Fatal("empty path must disable the appender")
	}
	if err := a.AppendLine("ignored"); err != nil {
		t.Fatalf("disabled append: %v", err)
	}
}
