// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/invowk/mpycross/internal/config"
	"github.com/invowk/mpycross/internal/issue"
	"github.com/invowk/mpycross/pkg/mpycross"
	"github.com/invowk/mpycross/pkg/types"

	"github.com/spf13/cobra"
)

const (
	// stdinSource reads the source from standard input.
	stdinSource = "-"
	// defaultStdinName is the logical name for a source read from stdin.
	defaultStdinName = "stdin.py"
)

type (
	// compileFlags holds the flags of `mpycross compile`.
	compileFlags struct {
		outDir       string
		name         string
		optLevel     int
		smallIntBits int
		noUnicode    bool
		arch         string
		emit         string
		heapSize     int64
		report       string
		workers      int
	}

	// compileSource is one input of a compile run.
	compileSource struct {
		path   string // as given on the command line, or "-"
		name   string // logical name passed to the compiler
		output string // .mpy destination
	}
)

func newCompileCommand(app *App) *cobra.Command {
	flags := &compileFlags{}

	cmd := &cobra.Command{
		Use:   "compile [flags] <file.py|->... [-- extra mpy-cross args]",
		Short: "Compile MicroPython sources to .mpy files",
		Long: `Compile MicroPython sources to .mpy files.

Each source is compiled by its own mpy-cross process. X.py is written to X.mpy
next to the source, or into --out-dir. Use '-' to read a single source from
standard input; its logical name is set with --name.

Arguments after '--' are appended verbatim to every mpy-cross invocation.`,
		Example: `  mpycross compile main.py
  mpycross compile -O3 --arch xtensawin --emit native lib/*.py --out-dir build
  cat main.py | mpycross compile --name main.py -
  mpycross compile main.py -- -march=armv6`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, extra := splitPassthrough(cmd, args)
			return runCompile(cmd, app, flags, files, extra)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&flags.outDir, "out-dir", "o", "", "directory for .mpy files (default: next to each source)")
	fl.StringVar(&flags.name, "name", defaultStdinName, "logical source name when reading from stdin")
	fl.IntVarP(&flags.optLevel, "optimization-level", "O", 0, "optimization level (0-3)")
	fl.IntVar(&flags.smallIntBits, "small-int-bits", mpycross.DefaultSmallIntBits, "bits of a small int")
	fl.BoolVar(&flags.noUnicode, "no-unicode", false, "disable unicode support in the target")
	fl.StringVar(&flags.arch, "arch", "", "native emitter architecture ("+joinNames(mpycross.Archs())+")")
	fl.StringVar(&flags.emit, "emit", "", "code emitter ("+joinNames(mpycross.Emitters())+")")
	fl.Int64Var(&flags.heapSize, "heap-size", 0, "compiler heap size in bytes")
	fl.StringVar(&flags.report, "report", string(reportText), "report format (text, json, toml)")
	fl.IntVarP(&flags.workers, "workers", "j", 0, "concurrent compiler processes (default from config, 0 = one per CPU)")

	return cmd
}

// splitPassthrough separates source arguments from the arguments after '--'.
func splitPassthrough(cmd *cobra.Command, args []string) (files, extra []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}

// options layers explicitly set flags over the configured defaults.
func (f *compileFlags) options(cmd *cobra.Command, base mpycross.Options, extra []string) mpycross.Options {
	opts := base
	fl := cmd.Flags()
	if fl.Changed("optimization-level") {
		opts = opts.WithOptimizationLevel(f.optLevel)
	}
	if fl.Changed("small-int-bits") {
		opts = opts.WithSmallIntBits(f.smallIntBits)
	}
	if fl.Changed("no-unicode") {
		opts.NoUnicode = f.noUnicode
	}
	if fl.Changed("arch") {
		opts = opts.WithArch(mpycross.Arch(f.arch))
	}
	if fl.Changed("emit") {
		opts = opts.WithEmit(mpycross.Emitter(f.emit))
	}
	if fl.Changed("heap-size") {
		opts = opts.WithHeapSize(f.heapSize)
	}
	if len(extra) > 0 {
		opts = opts.WithExtraArgs(extra...)
	}
	return opts
}

func runCompile(cmd *cobra.Command, app *App, flags *compileFlags, files, extra []string) error {
	ctx := cmd.Context()

	format := reportFormat(flags.report)
	if err := format.validate(); err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no source files given")
	}

	s, err := app.newSession(ctx)
	if err != nil {
		return err
	}

	opts := flags.options(cmd, s.cfg.Defaults.Options(), extra)
	if ok, errs := opts.IsValid(); !ok {
		return compilerError("compile", "", errs[0])
	}

	sources, err := resolveSources(files, flags.name, flags.outDir)
	if err != nil {
		return err
	}

	reqs := make([]mpycross.Request, len(sources))
	for i, src := range sources {
		text, err := readSource(app.stdin, src.path)
		if err != nil {
			return issue.NewErrorContext().
				WithOperation("read source").
				WithResource(src.path).
				WithIssue(issue.SourceNotFoundId).
				WithSuggestion("Check the path for typos").
				Wrap(err).
				BuildError()
		}
		reqs[i] = mpycross.Request{FileName: src.name, Source: text, Options: opts}
	}

	workers := s.cfg.Compiler.Workers.Resolve()
	if cmd.Flags().Changed("workers") {
		workers = config.WorkerCount(flags.workers).Resolve()
	}
	s.logger.Debug("compiling", "files", len(reqs), "workers", workers)

	results, err := s.compiler.CompileAll(ctx, reqs, workers)
	if err != nil {
		return err
	}

	report, failure, err := collectResults(ctx, app, s, sources, results, flags.outDir, format)
	if err != nil {
		return err
	}
	if err := report.write(app.stdout, format, s.verbose); err != nil {
		return err
	}
	if failure != 0 {
		return &ExitError{Code: failure}
	}
	return nil
}

// collectResults writes artifacts and compiler output, and builds the report.
// It returns the first nonzero compiler exit code.
func collectResults(ctx context.Context, app *App, s *session, sources []compileSource, results []mpycross.BatchResult, outDir string, format reportFormat) (compileReport, types.ExitCode, error) {
	report := compileReport{Compiler: s.compiler.BinaryPath()}
	var failure types.ExitCode

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return report, 0, outputError(outDir, err)
		}
	}

	for i, res := range results {
		src := sources[i]
		if res.Err != nil {
			return report, 0, compilerError("compile", src.path, res.Err)
		}

		out := res.Outcome
		// Compiler diagnostics are passed through unchanged.
		if _, err := app.stderr.Write(out.Stderr); err != nil {
			return report, 0, err
		}
		if format == reportText {
			if _, err := app.stdout.Write(out.Stdout); err != nil {
				return report, 0, err
			}
		}

		entry := fileReport{
			Source:   src.name,
			ExitCode: int(out.ExitCode),
			Stderr:   string(out.Stderr),
		}
		if format != reportText {
			entry.Stdout = string(out.Stdout)
		}

		if out.ExitCode.IsSuccess() && res.Artifact.Present() {
			if err := os.WriteFile(src.output, res.Artifact, 0o644); err != nil {
				return report, 0, outputError(src.output, err)
			}
			entry.Output = src.output
			if hdr, err := res.Artifact.Header(); err == nil {
				entry.Header = hdr.String()
			}
		}

		if !out.ExitCode.IsSuccess() && failure == 0 {
			failure = out.ExitCode
		}
		s.logger.Debug("compiled", "file", src.name, "exit_code", out.ExitCode, "output", entry.Output)
		report.Files = append(report.Files, entry)
	}

	if ctx.Err() != nil {
		return report, 0, ctx.Err()
	}
	return report, failure, nil
}

func outputError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("write artifact").
		WithResource(path).
		WithIssue(issue.OutputWriteFailedId).
		WithSuggestion("Check that the output directory is writable").
		WithSuggestion("Pick another directory with --out-dir").
		Wrap(err).
		BuildError()
}

// resolveSources derives logical names and output paths for the inputs and
// rejects inputs that would overwrite each other's output.
func resolveSources(files []string, stdinName, outDir string) ([]compileSource, error) {
	sources := make([]compileSource, 0, len(files))
	outputs := make(map[string]string, len(files))
	sawStdin := false

	for _, path := range files {
		src := compileSource{path: path, name: path}
		if path == stdinSource {
			if sawStdin {
				return nil, fmt.Errorf("'-' may be given only once")
			}
			sawStdin = true
			src.name = stdinName
		}
		src.output = outputPath(src, outDir)

		if prev, ok := outputs[src.output]; ok {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, path, src.output)
		}
		outputs[src.output] = path
		sources = append(sources, src)
	}
	return sources, nil
}

// outputPath maps X.py to X.mpy, next to the source or inside outDir.
// Sources read from stdin land in outDir or the working directory.
func outputPath(src compileSource, outDir string) string {
	base := src.name
	if src.path != stdinSource {
		base = src.path
	}
	mpy := strings.TrimSuffix(base, filepath.Ext(base)) + ".mpy"

	switch {
	case outDir != "":
		return filepath.Join(outDir, filepath.Base(mpy))
	case src.path == stdinSource:
		return filepath.Base(mpy)
	default:
		return mpy
	}
}

func readSource(stdin io.Reader, path string) (string, error) {
	if path == stdinSource {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// joinNames renders option names for flag help.
func joinNames[T ~string](names []T) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
