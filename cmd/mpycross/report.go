// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

const (
	reportText reportFormat = "text"
	reportJSON reportFormat = "json"
	reportTOML reportFormat = "toml"
)

// ErrInvalidReportFormat is returned when a --report value is not recognized.
var ErrInvalidReportFormat = errors.New("invalid report format")

type (
	// reportFormat selects how compile results are printed.
	reportFormat string

	// compileReport summarizes a compile run for machine consumption.
	compileReport struct {
		Compiler string       `json:"compiler" toml:"compiler"`
		Files    []fileReport `json:"files" toml:"files"`
	}

	// fileReport describes the outcome for one source.
	fileReport struct {
		Source   string `json:"source" toml:"source"`
		Output   string `json:"output,omitempty" toml:"output,omitempty"`
		ExitCode int    `json:"exit_code" toml:"exit_code"`
		Header   string `json:"header,omitempty" toml:"header,omitempty"`
		Stdout   string `json:"stdout,omitempty" toml:"stdout,omitempty"`
		Stderr   string `json:"stderr,omitempty" toml:"stderr,omitempty"`
	}
)

func (f reportFormat) validate() error {
	switch f {
	case reportText, reportJSON, reportTOML:
		return nil
	default:
		return fmt.Errorf("%w %q (valid: text, json, toml)", ErrInvalidReportFormat, string(f))
	}
}

// Succeeded reports whether the compiler accepted the source.
func (r fileReport) Succeeded() bool { return r.ExitCode == 0 }

// write prints the report in the selected format.
func (r compileReport) write(w io.Writer, format reportFormat, verbose bool) error {
	switch format {
	case reportJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case reportTOML:
		data, err := toml.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return r.writeText(w, verbose)
	}
}

func (r compileReport) writeText(w io.Writer, verbose bool) error {
	for _, f := range r.Files {
		var line string
		switch {
		case f.Succeeded():
			line = fmt.Sprintf("%s %s → %s", SuccessStyle.Render("✓"), f.Source, CmdStyle.Render(f.Output))
			if verbose && f.Header != "" {
				line += " " + VerboseStyle.Render("("+f.Header+")")
			}
		default:
			line = fmt.Sprintf("%s %s %s", ErrorStyle.Render("✗"), f.Source, SubtitleStyle.Render(fmt.Sprintf("(exit status %d)", f.ExitCode)))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
