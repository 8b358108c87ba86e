package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Outcome is the terminal state of one pipeline item.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeExists
	OutcomeUnavailable
	OutcomeCorrupted
)

// String returns the user-facing outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "finished"
	case OutcomeExists:
		return "exists"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeCorrupted:
		return "failed to download"
	default:
		return "unknown"
	}
}

// Failed reports whether the outcome counts against the error total.
func (o Outcome) Failed() bool {
	return o == OutcomeUnavailable || o == OutcomeCorrupted
}

// Event is one progress line: the item's position in the admitted set, the
// run total, its canonical URL and how it ended.
type Event struct {
	Index   int
	Total   int
	URL     string
	Outcome Outcome
}

// Reporter consumes per-item events. Implementations must be safe for
// concurrent use; pipelines report from their own goroutines.
type Reporter interface {
	Report(Event)
}

// ConsoleReporter renders events as aligned counter lines, colorized when the
// destination is a terminal.
type ConsoleReporter struct {
	mu       sync.Mutex
	w        io.Writer
	colorize bool
}

// NewConsoleReporter builds a reporter writing to w. Color is enabled only
// when w is a terminal.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &ConsoleReporter{w: w, colorize: colorize}
}

var (
	successColor = color.New(color.FgGreen)
	existsColor  = color.New(color.FgYellow)
	failureColor = color.New(color.FgRed)
)

func (r *ConsoleReporter) paint(o Outcome) string {
	label := o.String()
	if !r.colorize {
		return label
	}
	switch o {
	case OutcomeSuccess:
		return successColor.Sprint(label)
	case OutcomeExists:
		return existsColor.Sprint(label)
	default:
		return failureColor.Sprint(label)
	}
}

// Report writes one line for the event. The counter is padded to the width of
// the run total so lines stay aligned.
func (r *ConsoleReporter) Report(ev Event) {
	width := len(fmt.Sprint(ev.Total))
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "  [%*d/%d] %-30s ... %s\n",
		width, ev.Index, ev.Total, ev.URL, r.paint(ev.Outcome))
}

// Nop discards all events.
type Nop struct{}

func (Nop) Report(Event) {}
