package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// writeFunc performs one mutation inside the batch transaction.
type writeFunc func(ctx context.Context, tx *sql.Tx) error

// job is one queued op. fail is called instead of run when the batch
// transaction cannot be opened or committed; it may be nil.
type job struct {
	run  writeFunc
	fail func(error)
}

// writer commits queued mutations in order on a single goroutine, batching
// whatever has queued up since the last commit into one transaction. Each
// op runs under its own savepoint, so a failing op only undoes itself.
type writer struct {
	db      *sql.DB
	ops     chan job
	flushes chan chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool

	errMu   sync.Mutex
	lastErr error
}

const maxBatch = 64

func newWriter(db *sql.DB, queue int) *writer {
	w := &writer{
		db:      db,
		ops:     make(chan job, queue),
		flushes: make(chan chan struct{}),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

// submit queues op. It reports false once the writer is closed.
func (w *writer) submit(op writeFunc) bool {
	return w.enqueue(job{run: op})
}

func (w *writer) enqueue(j job) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	w.ops <- j
	return true
}

func (w *writer) loop() {
	defer w.wg.Done()
	defer close(w.done)
	for {
		select {
		case op, ok := <-w.ops:
			if !ok {
				return
			}
			w.commit(w.drain([]job{op}, maxBatch))
		case ack := <-w.flushes:
			if batch := w.drain(nil, -1); len(batch) > 0 {
				w.commit(batch)
			}
			close(ack)
		}
	}
}

// drain appends queued ops to batch without blocking; limit < 0 takes all.
func (w *writer) drain(batch []job, limit int) []job {
	for limit < 0 || len(batch) < limit {
		select {
		case op, ok := <-w.ops:
			if !ok {
				return batch
			}
			batch = append(batch, op)
		default:
			return batch
		}
	}
	return batch
}

func (w *writer) commit(batch []job) {
	if err := w.execute(batch); err != nil {
		storeLog.Error("word store write failed", "ops", len(batch), "err", err)
		w.errMu.Lock()
		if w.lastErr == nil {
			w.lastErr = err
		}
		w.errMu.Unlock()
	}
}

// execute runs batch in one transaction and returns the first error. A
// failing op is rolled back to its savepoint and the rest still run. When
// the transaction itself fails, every job's fail hook is called.
func (w *writer) execute(batch []job) error {
	ctx := context.Background()
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("begin batch tx: %w", err)
		failAll(batch, err)
		return err
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	var firstErr error
	for _, j := range batch {
		ran, err := runIsolated(ctx, tx, j.run)
		if err == nil {
			continue
		}
		storeLog.Warn("word store op rolled back", "err", err)
		if !ran && j.fail != nil {
			j.fail(err)
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := tx.Commit(); err != nil {
		err = fmt.Errorf("commit batch tx: %w", err)
		failAll(batch, err)
		return err
	}
	return firstErr
}

// runIsolated runs op under a savepoint. ran is false when op was never
// called because the savepoint could not be opened.
func runIsolated(ctx context.Context, tx *sql.Tx, op writeFunc) (ran bool, err error) {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT op"); err != nil {
		return false, fmt.Errorf("savepoint: %w", err)
	}
	if err := op(ctx, tx); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO op"); rbErr != nil {
			return true, fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		_, _ = tx.ExecContext(ctx, "RELEASE op")
		return true, err
	}
	if _, err := tx.ExecContext(ctx, "RELEASE op"); err != nil {
		return true, fmt.Errorf("release savepoint: %w", err)
	}
	return true, nil
}

func failAll(batch []job, err error) {
	for _, j := range batch {
		if j.fail != nil {
			j.fail(err)
		}
	}
}

// flush blocks until everything submitted before the call is committed.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	ack := make(chan struct{})
	w.mu.Unlock()

	select {
	case w.flushes <- ack:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *writer) err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.lastErr
}

// close stops accepting ops, commits what is queued and waits for the loop.
func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.ops)
	w.mu.Unlock()
	w.wg.Wait()
}

// snapshot queues a read behind every mutation submitted so far. The caller
// must hold the lock that orders its own submits, so mutations made after
// the call are not part of the read. The result channel always receives
// exactly one value once the batch holding the read has run.
func (w *writer) snapshot(read writeFunc) (<-chan error, bool) {
	result := make(chan error, 1)
	report := func(err error) {
		select {
		case result <- err:
		default:
		}
	}
	ok := w.enqueue(job{
		run: func(ctx context.Context, tx *sql.Tx) error {
			report(read(ctx, tx))
			return nil
		},
		fail: report,
	})
	return result, ok
}

func waitSnapshot(ctx context.Context, result <-chan error) error {
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
