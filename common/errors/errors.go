package errors

// ExitCodeError pairs an error with the process exit code it should produce.
type ExitCodeError struct {
	code ExitCode
	error
}

func NewError(err error, exitCode ExitCode) *ExitCodeError {
	if err == nil {
		return nil
	}
	return &ExitCodeError{exitCode, err}
}

func (e *ExitCodeError) GetExitCode() ExitCode {
	if e == nil {
		return 0
	}
	return e.code
}

// Cause exposes the wrapped error to github.com/pkg/errors.Cause.
func (e *ExitCodeError) Cause() error {
	return e.error
}

// GetExitCode returns the exit code carried by err, or fallback when err
// carries none. A nil err maps to 0.
func GetExitCode(err error, fallback ExitCode) ExitCode {
	if err == nil {
		return 0
	}
	if e, ok := err.(*ExitCodeError); ok && e != nil {
		return e.code
	}
	return fallback
}
