// Package async runs functions on goroutines and delivers their results as
// callbacks on a single owning goroutine.
package async

import (
	"context"
)

// Runner spawns goroutines for functions and queues their callbacks in a
// Mailbox. Callbacks run only inside ProcessMessages or Wait, on the caller's
// goroutine, so the state they touch needs no locking.
//
//	r := async.NewRunner()
//	r.RunAsync(func() error { return launch(test) }, func(err error) { record(test, err) })
//	for r.NumRunning() > 0 {
//	  if err := r.Wait(ctx); err != nil {
//	    break
//	  }
//	}
//
// A Runner must only be used from one goroutine.
type Runner struct {
	bx *Mailbox
	// readyCh holds at most one wakeup; any number of completions between
	// two Waits collapse into it.
	readyCh chan struct{}
}

func NewRunner() *Runner {
	return &Runner{
		bx:      NewMailbox(),
		readyCh: make(chan struct{}, 1),
	}
}

// NumRunning is the number of functions whose callbacks have not yet run.
func (r *Runner) NumRunning() int {
	return r.bx.Count()
}

// RunAsync runs f on a new goroutine. cb receives f's error from a later
// ProcessMessages or Wait.
func (r *Runner) RunAsync(f func() error, cb AsyncErrorResponseHandler) {
	asyncErr := r.bx.NewAsyncError(cb)
	go func(rsp *AsyncError) {
		rsp.SetValue(f())
		select {
		case r.readyCh <- struct{}{}:
		default:
		}
	}(asyncErr)
}

// ProcessMessages runs the callbacks of all completed functions without
// blocking and returns how many ran.
func (r *Runner) ProcessMessages() int {
	return r.bx.ProcessMessages()
}

// Wait blocks until at least one callback has run or ctx is done. With
// nothing running it returns immediately. The returned error is ctx.Err().
func (r *Runner) Wait(ctx context.Context) error {
	for r.NumRunning() > 0 {
		if r.ProcessMessages() > 0 {
			return nil
		}
		select {
		case <-r.readyCh:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
