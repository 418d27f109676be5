package notifications

import (
	"context"
	"sync"
	"time"

	"cineplex/pkg/logger"
)

// Dispatcher runs notification jobs after the caller's write has committed.
// Jobs outlive the request context but not their timeout, and a failure is
// only logged.
type Dispatcher struct {
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(timeout time.Duration, log *logger.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Dispatcher{timeout: timeout, log: log.WithComponent("dispatcher")}
}

func (d *Dispatcher) Go(ctx context.Context, kind string, fields map[string]interface{}, job func(ctx context.Context) error) {
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				d.log.ErrorContext(jobCtx, "Notification job panicked", "notification", kind, "panic", r)
			}
		}()

		if err := job(jobCtx); err != nil {
			d.log.LogNotificationFailed(jobCtx, kind, err, fields)
		}
	}()
}

// Wait blocks until every started job returns or ctx is done
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
