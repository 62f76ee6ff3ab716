package cli

import (
	"errors"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// ExitError carries a process exit code from a command to main.
type ExitError struct {
	Code   int
	Reason string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	if e.Reason == "" {
		return e.Err.Error()
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// setupError marks err as a failure before any submission happened.
func setupError(reason string, err error) error {
	return &ExitError{Code: ExitFailure, Reason: reason, Err: err}
}

// ExitCode maps err to a process exit code: 0 for nil, the carried code for
// an *ExitError anywhere in the chain, 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
