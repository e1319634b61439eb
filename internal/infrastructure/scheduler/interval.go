package scheduler

import (
	"context"
	"sync"
	"time"

	"RedditScout/internal/ports"
)

// IntervalScheduler drives recurring pipeline runs with a time.Ticker.
// Ticks invoke the job synchronously in one goroutine, so runs never
// overlap.
type IntervalScheduler struct {
	interval time.Duration
	mu       sync.Mutex
	stop     chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler firing every interval.
func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &IntervalScheduler{interval: interval}
}

// Start runs the job immediately, then on every tick, until Stop or
// context cancellation. Starting an already-running scheduler is a no-op.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	// The goroutine reads its own copy of the channel, never the field,
	// so Stop resetting the field cannot race with the select.
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine. Safe to call more than once.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
