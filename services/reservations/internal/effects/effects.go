// Package effects runs post-commit side effects in the background. Failures are
// logged and dropped; nothing is retried.
package effects

import (
	"context"
	"sync"
	"time"

	"github.com/diagnosis/guestroom-reservations/pkg/logger"
)

type Dispatcher struct {
	wg      sync.WaitGroup
	timeout time.Duration
}

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Dispatcher{timeout: timeout}
}

// Go runs fn detached from the caller's cancellation but keeps its values, so
// log lines still carry request and booking ids.
func (d *Dispatcher) Go(ctx context.Context, what string, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "Side effect panicked", "effect", what, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to "+what, "error", err)
		}
	}()
}

// Wait blocks until every dispatched effect has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
