package job

import (
	"context"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// tickerLoop drives a background task on a fixed interval and plugs into
// the application lifecycle as a transport.Server. Concrete jobs embed it
// and supply the task via run. Passes execute one at a time on the Start
// goroutine, so a job never observes two of its own passes concurrently.
type tickerLoop struct {
	name     string
	log      *log.Helper
	interval time.Duration
	runFirst bool
	run      func(ctx context.Context)

	stopCh   chan struct{}
	stopOnce sync.Once
}

func newTickerLoop(name string, interval time.Duration, logger log.Logger, run func(ctx context.Context), runFirst bool) tickerLoop {
	return tickerLoop{
		name:     name,
		log:      log.NewHelper(logger),
		interval: interval,
		runFirst: runFirst,
		run:      run,
		stopCh:   make(chan struct{}),
	}
}

// Start implements transport.Server.
func (l *tickerLoop) Start(ctx context.Context) error {
	l.log.Infof("%s started, interval %s", l.name, l.interval)

	if l.runFirst {
		l.run(ctx)
	}

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Infof("%s stopped by context", l.name)
			return ctx.Err()
		case <-l.stopCh:
			l.log.Infof("%s stopped", l.name)
			return nil
		case <-ticker.C:
			l.run(ctx)
		}
	}
}

// Stop implements transport.Server. Safe to call more than once.
func (l *tickerLoop) Stop(_ context.Context) error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
	return nil
}
