// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/invowk/mpycross/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
// A nil Err means the failure was already reported (e.g., compiler diagnostics
// were copied to stderr) and nothing more should be printed.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %s", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ProcessCode maps the exit code to a value suitable for os.Exit.
// Signaled processes (negative codes) map to 1.
func (e *ExitError) ProcessCode() int {
	if e.Code.IsSignaled() || e.Code == 0 {
		return 1
	}
	return int(e.Code)
}
