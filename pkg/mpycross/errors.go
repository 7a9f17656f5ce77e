// SPDX-License-Identifier: MPL-2.0

package mpycross

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/invowk/mpycross/pkg/types"
)

var (
	// ErrInvalidOption is the sentinel error wrapped by InvalidOptionError.
	ErrInvalidOption = errors.New("invalid option")
	// ErrExecution is the sentinel error wrapped by ExecutionError.
	ErrExecution = errors.New("compiler execution failed")
)

type (
	// InvalidOptionError is returned when a structured option value is outside
	// its documented domain. It is always raised before a process is started.
	InvalidOptionError struct {
		// Option is the option name (e.g., "optimization_level").
		Option string
		// Value is the rejected value as text.
		Value string
		// Reason describes the accepted domain.
		Reason string
	}

	// ExecutionError is returned when the compiler binary could not be located
	// or launched, or when an operation that requires a zero exit status
	// (such as Version) did not get one. It is distinct from a compiler that
	// ran and rejected its input, which is reported through Outcome.
	ExecutionError struct {
		// Op is the operation that failed ("compile", "version", "run").
		Op string
		// Path is the compiler binary path.
		Path string
		// ExitCode is the exit status when the process ran to completion.
		ExitCode types.ExitCode
		// Stderr holds the captured standard error, if any.
		Stderr []byte
		// Err is the underlying launch or I/O error, if any.
		Err error
	}
)

// Error implements the error interface.
func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option %s=%s: %s", e.Option, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidOption so callers can use errors.Is for programmatic detection.
func (e *InvalidOptionError) Unwrap() error { return ErrInvalidOption }

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mpy-cross %s: %s: %v", e.Op, e.Path, e.Err)
	}
	msg := fmt.Sprintf("mpy-cross %s: %s exited with status %s", e.Op, e.Path, e.ExitCode)
	if stderr := bytes.TrimSpace(e.Stderr); len(stderr) > 0 {
		msg += ": " + string(stderr)
	}
	return msg
}

// Unwrap returns ErrExecution and the underlying cause, so both
// errors.Is(err, ErrExecution) and errors.Is(err, fs.ErrNotExist) work.
func (e *ExecutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExecution}
	}
	return []error{ErrExecution, e.Err}
}
