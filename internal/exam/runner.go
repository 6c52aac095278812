package exam

import (
	"context"
	"sync"
	"time"
)

// Runner drives a Supervisor with two tickers: the progression loop and
// the penalty loop.
type Runner struct {
	sup      *Supervisor
	progress time.Duration
	penalty  time.Duration

	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
	wg        *sync.WaitGroup
}

// NewRunner creates a runner using the supervisor's intervals.
func NewRunner(sup *Supervisor) *Runner {
	opts := sup.Options()
	return &Runner{
		sup:      sup,
		progress: opts.ProgressInterval,
		penalty:  opts.PenaltyInterval,
	}
}

// IsRunning returns whether the loops are running
func (r *Runner) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isRunning
}

// Start launches both loops. They stop on Stop or when ctx is done.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.isRunning {
		r.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	wg := &sync.WaitGroup{}
	r.isRunning = true
	r.stopChan = stop
	r.wg = wg
	r.mu.Unlock()

	wg.Add(2)
	go r.loop(ctx, wg, stop, r.progress, r.sup.Progress)
	go r.loop(ctx, wg, stop, r.penalty, func(ctx context.Context) { r.sup.Evaluate(ctx) })

	go func() {
		wg.Wait()
		r.mu.Lock()
		if r.stopChan == stop {
			r.isRunning = false
			r.stopChan = nil
		}
		r.mu.Unlock()
	}()
}

// Stop stops both loops and waits for the current iterations to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	stop, wg := r.stopChan, r.wg
	if stop == nil {
		r.mu.Unlock()
		return
	}
	close(stop)
	r.isRunning = false
	r.stopChan = nil
	r.mu.Unlock()

	wg.Wait()
}

func (r *Runner) loop(ctx context.Context, wg *sync.WaitGroup, stop <-chan struct{}, every time.Duration, tick func(context.Context)) {
	defer wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick(ctx)
		}
	}
}
