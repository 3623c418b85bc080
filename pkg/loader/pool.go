// Package loader runs source load steps off the interactive path.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bastiangx/wordmux/internal/logger"
	"github.com/bastiangx/wordmux/pkg/source"
	"golang.org/x/sync/semaphore"
)

// ErrPoolClosed is reported through onFailed when Submit is called after Close.
var ErrPoolClosed = errors.New("loader pool closed")

var plog = logger.New("loader")

// Pool loads sources in parallel with at most a fixed number running at once.
// Submit never blocks the caller; each submission gets exactly one of its
// callbacks, on the loading goroutine.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool creates a pool allowing workers concurrent loads.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		ctx:    ctx,
		cancel: cancel,
		sem:    semaphore.NewWeighted(int64(workers)),
	}
}

// Submit schedules src.Load. onDone or onFailed may be nil.
func (p *Pool) Submit(src source.Loadable, onDone func(), onFailed func(error)) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		if onFailed != nil {
			onFailed(ErrPoolClosed)
		}
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		err := p.run(src)
		if err != nil {
			plog.Warn("load failed", "source", src.Name(), "err", err)
			if onFailed != nil {
				onFailed(err)
			}
			return
		}
		if onDone != nil {
			onDone()
		}
	}()
}

func (p *Pool) run(src source.Loadable) (err error) {
	if err := p.sem.Acquire(p.ctx, 1); err != nil {
		return fmt.Errorf("waiting to load %s: %w", src.Name(), err)
	}
	defer p.sem.Release(1)
	if err := p.ctx.Err(); err != nil {
		return fmt.Errorf("waiting to load %s: %w", src.Name(), err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loading %s panicked: %v", src.Name(), r)
		}
	}()

	start := time.Now()
	if err := src.Load(p.ctx); err != nil {
		return fmt.Errorf("loading %s: %w", src.Name(), err)
	}
	plog.Debug("loaded", "source", src.Name(), "took", time.Since(start))
	return nil
}

// Close cancels loads still waiting for a slot and waits for every submission to report.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.cancel()
	p.wg.Wait()
}
