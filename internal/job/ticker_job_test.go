package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

func TestTickerLoop_RunsOnInterval(t *testing.T) {
	var passes atomic.Int32
	l := newTickerLoop("audit-loop", 50*time.Millisecond, log.DefaultLogger, func(_ context.Context) {
		passes.Add(1)
	}, false)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- l.Start(ctx) }()

	time.Sleep(180 * time.Millisecond)
	if err := l.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if got := passes.Load(); got < 2 {
		t.Errorf("expected at least 2 passes, got %d", got)
	}
}

func TestTickerLoop_StopIsIdempotent(t *testing.T) {
	l := newTickerLoop("audit-loop", time.Hour, log.DefaultLogger, func(_ context.Context) {}, false)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- l.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)

	for i := 0; i < 5; i++ {
		if err := l.Stop(ctx); err != nil {
			t.Fatalf("Stop call %d returned error: %v", i, err)
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
}

func TestTickerLoop_RunFirst(t *testing.T) {
	var passes atomic.Int32
	l := newTickerLoop("audit-loop", time.Hour, log.DefaultLogger, func(_ context.Context) {
		passes.Add(1)
	}, true)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- l.Start(ctx) }()

	// Long enough for the initial pass, far short of the ticker.
	time.Sleep(20 * time.Millisecond)

	if err := l.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	<-done

	if got := passes.Load(); got != 1 {
		t.Errorf("expected exactly 1 initial pass, got %d", got)
	}
}

func TestTickerLoop_NoRunFirst(t *testing.T) {
	var passes atomic.Int32
	l := newTickerLoop("audit-loop", time.Hour, log.DefaultLogger, func(_ context.Context) {
		passes.Add(1)
	}, false)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- l.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)

	if err := l.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	<-done

	if got := passes.Load(); got != 0 {
		t.Errorf("expected 0 passes before the first tick, got %d", got)
	}
}

func TestTickerLoop_ContextCancellation(t *testing.T) {
	l := newTickerLoop("audit-loop", time.Hour, log.DefaultLogger, func(_ context.Context) {}, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTickerLoop_PassCompletesBeforeStartReturns(t *testing.T) {
	var finished atomic.Bool
	passStarted := make(chan struct{})

	l := newTickerLoop("audit-loop", 20*time.Millisecond, log.DefaultLogger, func(_ context.Context) {
		select {
		case <-passStarted:
		default:
			close(passStarted)
			time.Sleep(80 * time.Millisecond)
			finished.Store(true)
		}
	}, false)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- l.Start(ctx) }()

	select {
	case <-passStarted:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("first pass did not start in time")
	}

	// Stop while the pass is still running. Passes run on the Start
	// goroutine, so Start cannot return mid-pass.
	if err := l.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
		if !finished.Load() {
			t.Error("pass should have finished before Start returned")
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Start did not return in time")
	}
}
