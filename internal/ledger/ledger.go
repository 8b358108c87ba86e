package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// Ledger tracks which item identifiers were seen this run (session set) and
// across runs (archive set loaded from a line-oriented file). The archive
// file is append-only and never rewritten in place.
type Ledger struct {
	mu      sync.Mutex
	session map[string]struct{}
	archive map[string]struct{}

	archivePath string
	archiveFile *os.File
	lock        *flock.Flock
	closed      bool
}

// New builds a ledger. An empty archivePath disables cross-run persistence;
// a configured but unreadable archive (for reasons other than non-existence)
// is a fatal error. The archive file is guarded by a sibling lock file so two
// invocations cannot interleave partial lines.
func New(archivePath string) (*Ledger, error) {
	l := &Ledger{
		session: make(map[string]struct{}),
		archive: make(map[string]struct{}),
	}
	if archivePath == "" {
		return l, nil
	}
	l.archivePath = archivePath

	l.lock = flock.New(archivePath + ".lock")
	locked, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock archive %s: %w", archivePath, err)
	}
	if !locked {
		return nil, fmt.Errorf("archive %s is in use by another invocation", archivePath)
	}

	data, err := os.ReadFile(archivePath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		l.unlock()
		return nil, fmt.Errorf("read archive %s: %w", archivePath, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if id := strings.TrimSpace(line); id != "" {
			l.archive[id] = struct{}{}
		}
	}

	file, err := os.OpenFile(archivePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l.unlock()
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	l.archiveFile = file

	return l, nil
}

// SeenThisRun records id in the session set, reporting whether it was already
// there. The check-and-insert is atomic so concurrent pipelines cannot both
// claim the same identifier.
func (l *Ledger) SeenThisRun(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dupe := l.session[id]; dupe {
		return true
	}
	l.session[id] = struct{}{}
	return false
}

// InArchive reports membership in the archive set. The set is immutable for
// the duration of the run; in-run completions land in the session set and the
// file, not here.
func (l *Ledger) InArchive(id string) bool {
	_, ok := l.archive[id]
	return ok
}

// RecordCompleted appends one identifier line to the archive file. Called
// only for items that reached the success outcome. A ledger without an
// archive configured silently ignores the call.
func (l *Ledger) RecordCompleted(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.archiveFile == nil {
		return nil
	}
	if _, err := fmt.Fprintln(l.archiveFile, id); err != nil {
		return fmt.Errorf("append archive entry: %w", err)
	}
	return nil
}

// Enabled reports whether an archive file is configured.
func (l *Ledger) Enabled() bool {
	return l.archivePath != ""
}

// Close releases the in-memory sets, the file handle and the lock. Safe to
// call more than once.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.session = nil
	l.archive = nil

	var closeErr error
	if l.archiveFile != nil {
		closeErr = l.archiveFile.Close()
		l.archiveFile = nil
	}
	l.unlock()
	return closeErr
}

func (l *Ledger) unlock() {
	if l.lock != nil {
		_ = l.lock.Unlock()
		_ = os.Remove(l.lock.Path())
		l.lock = nil
	}
}
