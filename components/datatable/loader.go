package datatable

import (
	"context"
	"sync"
	"time"
)

// FetchFunc loads the rows of a table.
type FetchFunc[R any] func(ctx context.Context) ([]R, error)

// LoadTarget receives the progress of a Loader.
type LoadTarget[R any] interface {
	LoadStarted(ctx context.Context)
	LoadFinished(ctx context.Context, rows []R, err error)
}

// Loader runs one cancellable fetch bound to the lifetime of a mounted table.
// After Close returns the target receives no further calls.
type Loader[R any] struct {
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// StartLoader marks target as loading and fetches in the background after delay.
func StartLoader[R any](parent context.Context, fetch FetchFunc[R], delay time.Duration, target LoadTarget[R]) *Loader[R] {
	ctx, cancel := context.WithCancel(parent)
	l := &Loader[R]{cancel: cancel, done: make(chan struct{})}
	target.LoadStarted(ctx)
	go l.run(ctx, fetch, delay, target)
	return l
}

func (l *Loader[R]) run(ctx context.Context, fetch FetchFunc[R], delay time.Duration, target LoadTarget[R]) {
	defer close(l.done)
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
	rows, err := fetch(ctx)
	if ctx.Err() != nil {
		return
	}
	target.LoadFinished(ctx, rows, err)
}

// Done is closed once the fetch has finished or been cancelled.
func (l *Loader[R]) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until the load settles or ctx ends.
func (l *Loader[R]) Wait(ctx context.Context) error {
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels a pending load and waits for the worker to exit.
func (l *Loader[R]) Close() {
	l.closeOnce.Do(func() {
		l.cancel()
		<-l.done
	})
}
