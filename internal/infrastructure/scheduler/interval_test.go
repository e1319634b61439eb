package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestIntervalSchedulerFiresImmediatelyAndTicks(t *testing.T) {
	t.Parallel()

	fired := make(chan time.Time, 8)
	s := NewIntervalScheduler(5 * time.Millisecond)
	if err := s.Start(context.Background(), func(at time.Time) { fired <- at }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(context.Background())

	for i := 0; i < 2; i++ {
		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatalf("expected firing %d within a second", i+1)
		}
	}
}

func TestIntervalSchedulerStopHaltsFiring(t *testing.T) {
	t.Parallel()

	fired := make(chan time.Time, 64)
	s := NewIntervalScheduler(time.Millisecond)
	if err := s.Start(context.Background(), func(at time.Time) { fired <- at }); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expected an immediate first run")
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	// Anything already in flight drains; after that the goroutine must
	// be gone even though the context was never cancelled.
	time.Sleep(20 * time.Millisecond)
	for len(fired) > 0 {
		<-fired
	}
	time.Sleep(20 * time.Millisecond)
	if n := len(fired); n != 0 {
		t.Fatalf("scheduler still firing after Stop: %d extra runs", n)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("second Stop must be a no-op: %v", err)
	}
}

func TestIntervalSchedulerRestartsAfterStop(t *testing.T) {
	t.Parallel()

	fired := make(chan time.Time, 8)
	s := NewIntervalScheduler(5 * time.Millisecond)
	ctx := context.Background()

	if err := s.Start(ctx, func(at time.Time) { fired <- at }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-fired
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if err := s.Start(ctx, func(at time.Time) { fired <- at }); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer s.Stop(ctx)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("restarted scheduler never fired")
	}
}
