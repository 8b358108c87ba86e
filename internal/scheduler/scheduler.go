package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"gyre/internal/coubapi"
	"gyre/internal/ledger"
	"gyre/internal/logging"
	"gyre/internal/progress"
)

// Processor runs one admitted identifier to a terminal outcome.
type Processor interface {
	Process(ctx context.Context, id string) (progress.Outcome, error)
}

// Summary aggregates one run.
type Summary struct {
	Total  int
	Done   int
	Errors int
}

// Scheduler admits identifiers through the ledger and fans them out to a
// bounded worker pool. Concurrency is capped by the connection budget; the
// per-host transport cap makes the two limits line up.
type Scheduler struct {
	processor Processor
	ledger    *ledger.Ledger
	reporter  progress.Reporter
	logger    *slog.Logger
	workers   int
}

// New builds a scheduler running at most workers items concurrently.
func New(processor Processor, led *ledger.Ledger, reporter progress.Reporter, workers int, logger *slog.Logger) *Scheduler {
	if workers <= 0 {
		workers = 1
	}
	if reporter == nil {
		reporter = progress.Nop{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		processor: processor,
		ledger:    led,
		reporter:  reporter,
		logger:    logging.WithComponent(logger, "scheduler"),
		workers:   workers,
	}
}

// Run processes ids and reports the aggregate. Identifiers already seen this
// run or present in the archive are dropped at admission, so the reported
// total covers only items that actually enter the pipeline. The first
// run-fatal processor error cancels the remaining work and is returned after
// in-flight items drain.
func (s *Scheduler) Run(ctx context.Context, ids []string) (Summary, error) {
	admitted := make([]string, 0, len(ids))
	for _, id := range ids {
		if s.ledger.SeenThisRun(id) {
			continue
		}
		if s.ledger.InArchive(id) {
			s.logger.Debug("skipping archived item", logging.String("id", id))
			continue
		}
		admitted = append(admitted, id)
	}

	total := len(admitted)
	runID := uuid.NewString()
	s.logger.Info("run started",
		logging.String("run_id", runID),
		logging.Int("total", total),
		logging.Int("workers", s.workers))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		sequence atomic.Int64
		done     atomic.Int64
		failures atomic.Int64

		fatalOnce sync.Once
		fatal     error
	)

	jobs := make(chan string)
	var wg sync.WaitGroup
	workers := min(s.workers, total)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				outcome, err := s.processor.Process(runCtx, id)
				if err != nil {
					fatalOnce.Do(func() {
						fatal = err
						cancel()
					})
					return
				}
				if outcome.Failed() {
					failures.Add(1)
				} else {
					done.Add(1)
				}
				s.reporter.Report(progress.Event{
					Index:   int(sequence.Add(1)),
					Total:   total,
					URL:     coubapi.CanonicalURL(id),
					Outcome: outcome,
				})
			}
		}()
	}

feed:
	for _, id := range admitted {
		select {
		case jobs <- id:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	summary := Summary{
		Total:  total,
		Done:   int(done.Load()),
		Errors: int(failures.Load()),
	}
	s.logger.Info("run finished",
		logging.String("run_id", runID),
		logging.Int("done", summary.Done),
		logging.Int("errors", summary.Errors))

	if fatal != nil {
		return summary, fatal
	}
	return summary, ctx.Err()
}
