package async

// AsyncError is a single-assignment error value, filled in by the goroutine
// doing the work and read by the goroutine that owns the Mailbox.
//
// SetValue must be called exactly once. TryGetValue never blocks.
type AsyncError struct {
	errCh     chan error
	val       error
	completed bool
}

func newAsyncError() *AsyncError {
	return &AsyncError{
		errCh: make(chan error, 1),
	}
}

// SetValue completes the AsyncError. A second call panics.
func (e *AsyncError) SetValue(err error) {
	e.errCh <- err
	close(e.errCh)
}

// TryGetValue reports whether the value has been set and, if so, what it is.
// A pending AsyncError returns (false, nil).
func (e *AsyncError) TryGetValue() (bool, error) {
	if e.completed {
		return true, e.val
	}
	select {
	case err := <-e.errCh:
		e.val = err
		e.completed = true
		return true, err
	default:
		return false, nil
	}
}
