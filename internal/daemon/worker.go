package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrWorkerStopped is returned for tasks posted after the worker exited.
var ErrWorkerStopped = errors.New("worker stopped")

// Worker runs tasks one at a time in the order they were posted. Everything
// that touches a container goes through it.
type Worker struct {
	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake chan struct{}
	done chan struct{}

	logger *slog.Logger
}

// NewWorker creates an idle worker. Call Run to start draining the queue.
func NewWorker(logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger.With("component", "worker"),
	}
}

// Post enqueues fn without waiting for it. It reports false when the worker
// has already stopped.
func (w *Worker) Post(fn func()) bool {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return false
	}
	w.queue = append(w.queue, fn)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return true
}

// Do enqueues fn and waits for its result. If ctx ends first the task still
// runs but its result is dropped.
func (w *Worker) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	task := func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("task panic recovered", "error", fmt.Sprint(r))
				err = fmt.Errorf("task panic: %v", r)
			}
			result <- err
		}()
		err = fn()
	}
	if !w.Post(task) {
		return ErrWorkerStopped
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		// The task may have run just before shutdown.
		select {
		case err := <-result:
			return err
		default:
			return ErrWorkerStopped
		}
	}
}

// Run drains the queue until ctx is cancelled. Tasks still queued at that
// point are discarded.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Debug("worker started")
	defer func() {
		w.mu.Lock()
		w.stopped = true
		dropped := len(w.queue)
		w.queue = nil
		w.mu.Unlock()
		close(w.done)
		w.logger.Debug("worker stopped", "dropped", dropped)
	}()

	for {
		for {
			fn, ok := w.next()
			if !ok {
				break
			}
			if ctx.Err() != nil {
				return nil
			}
			w.run(fn)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-w.wake:
		}
	}
}

// Stopped is closed once Run has returned.
func (w *Worker) Stopped() <-chan struct{} {
	return w.done
}

func (w *Worker) next() (func(), bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return nil, false
	}
	fn := w.queue[0]
	w.queue[0] = nil
	w.queue = w.queue[1:]
	return fn, true
}

func (w *Worker) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("task panic recovered", "error", fmt.Sprint(r))
		}
	}()
	fn()
}
