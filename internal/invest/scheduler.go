package invest

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler periodically drives the maturity sweep. It holds no state of its
// own; all correctness lives in the sweep's idempotence.
type Scheduler struct {
	book     *Book
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler builds a scheduler sweeping at the given interval.
func NewScheduler(book *Book, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{book: book, interval: interval, logger: logger}
}

// Run blocks, sweeping on every tick until ctx is cancelled. A failed sweep is
// logged and retried on the next tick; re-invocation is safe.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			matured, err := s.book.SweepMatured(ctx, time.Now().UTC())
			if err != nil {
				s.logger.Error("maturity sweep", "error", err)
				continue
			}
			if matured > 0 {
				s.logger.Info("maturity sweep", "matured", matured)
			}
		}
	}
}
