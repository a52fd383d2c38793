package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ErrInvalidWorkers is returned by Run when the worker count is less than one.
var ErrInvalidWorkers = errors.New("queue: worker count must be at least 1")

// Queue is a fixed set of items shared by a group of workers.
// All items are loaded by New; nothing can be added later.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	next  int

	pending   sync.WaitGroup
	taken     atomic.Int64
	completed atomic.Int64
}

// New returns a queue pre-loaded with items, in order.
func New[T any](items []T) *Queue[T] {
	q := &Queue[T]{items: append([]T(nil), items...)}
	q.pending.Add(len(q.items))
	return q
}

// Take returns the next item. ok is false once every item has been taken.
// Every successful Take must be paired with a call to Done.
func (q *Queue[T]) Take() (item T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.next >= len(q.items) {
		return item, false
	}
	item = q.items[q.next]
	var zero T
	q.items[q.next] = zero
	q.next++
	q.taken.Add(1)
	return item, true
}

// Done marks one taken item as fully processed.
func (q *Queue[T]) Done() {
	q.completed.Add(1)
	q.pending.Done()
}

// Join blocks until every item has been taken and marked done.
func (q *Queue[T]) Join() {
	q.pending.Wait()
}

// Len returns the number of items not yet taken.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.next
}

// Taken returns how many items have been handed to workers.
func (q *Queue[T]) Taken() int64 { return q.taken.Load() }

// Completed returns how many items have been marked done.
func (q *Queue[T]) Completed() int64 { return q.completed.Load() }

// drain marks every untaken item as done without processing it,
// so that Join can return after cancellation.
func (q *Queue[T]) drain() int {
	q.mu.Lock()
	n := len(q.items) - q.next
	q.next = len(q.items)
	q.mu.Unlock()

	for i := 0; i < n; i++ {
		q.pending.Done()
	}
	return n
}

// Func processes a single item. Failures must be expressed through the
// item's own side effects; Func has no error return.
type Func[T any] func(ctx context.Context, item T)

// Options configures Run.
type Options struct {
	// Logger receives recovered panics. Default: slog.Default().
	Logger *slog.Logger
}

// Run calls fn once for every item using exactly workers concurrent workers
// and returns after every item has been processed.
//
// Each worker takes items one at a time until the queue is empty, then exits.
// A panic in fn is recovered and logged; the item still counts as processed.
// When ctx is cancelled, workers stop taking new items, Run waits for the
// in-flight ones and returns ctx.Err(). A cancellation that arrives after
// the last item was taken is not reported.
func Run[T any](ctx context.Context, items []T, workers int, fn Func[T], opts Options) error {
	if workers < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	q := New(items)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			work(ctx, q, fn, opts.Logger.With("worker", id))
		}(i)
	}

	// Workers exit on an empty queue, so once they are all gone the only
	// items still pending are the ones skipped by cancellation.
	wg.Wait()
	skipped := q.drain()
	q.Join()

	if skipped == 0 {
		return nil
	}
	opts.Logger.Debug("queue cancelled", "skipped", skipped, "completed", q.Completed())
	return ctx.Err()
}

func work[T any](ctx context.Context, q *Queue[T], fn Func[T], logger *slog.Logger) {
	for ctx.Err() == nil {
		item, ok := q.Take()
		if !ok {
			return
		}
		call(ctx, fn, item, logger)
		q.Done()
	}
}

// call invokes fn, recovering a panic so the worker keeps going.
func call[T any](ctx context.Context, fn Func[T], item T, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("work item panicked", "item", item, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn(ctx, item)
}
