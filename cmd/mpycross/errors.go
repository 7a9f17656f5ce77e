// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/invowk/mpycross/internal/config"
	"github.com/invowk/mpycross/internal/issue"
	"github.com/invowk/mpycross/pkg/mpycross"

	"github.com/charmbracelet/fang"
)

// compilerError converts engine errors into actionable CLI errors. Errors the
// engine does not define are returned unchanged.
func compilerError(op, resource string, err error) error {
	var invalid *mpycross.InvalidOptionError
	if errors.As(err, &invalid) {
		return issue.NewErrorContext().
			WithOperation(op).
			WithResource(invalid.Option).
			WithIssue(issue.InvalidOptionId).
			WithSuggestion(fmt.Sprintf("Choose a value for %s that %s", invalid.Option, invalid.Reason)).
			Wrap(err).
			BuildError()
	}

	var execErr *mpycross.ExecutionError
	if !errors.As(err, &execErr) {
		return err
	}
	if resource == "" {
		resource = execErr.Path
	}
	if errors.Is(err, fs.ErrNotExist) {
		return issue.NewErrorContext().
			WithOperation(op).
			WithResource(resource).
			WithIssue(issue.CompilerNotFoundId).
			WithSuggestion("Reinstall mpycross with its bundled mpy-cross binary").
			WithSuggestion("Point --binary or compiler.binary_path at an mpy-cross executable").
			Wrap(err).
			BuildError()
	}
	return issue.NewErrorContext().
		WithOperation(op).
		WithResource(resource).
		WithIssue(issue.CompilerLaunchFailedId).
		WithSuggestion("Check that the binary is executable and built for this platform").
		Wrap(err).
		BuildError()
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// handleError is the fang error handler. Failures that were already reported
// print nothing; actionable errors print their suggestions and, in verbose
// mode, the catalog page for their failure class.
func (a *App) handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		fang.DefaultErrorHandler(w, styles, err)
		return
	}

	verbose := a.verbose || a.flags.verbose
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	if !verbose || ae.Issue() == nil {
		return
	}
	scheme := a.colorScheme
	if scheme == "" {
		scheme = config.ColorSchemeAuto
	}
	if rendered, renderErr := ae.Issue().Render(scheme.String()); renderErr == nil {
		fmt.Fprint(w, rendered)
	}
}
