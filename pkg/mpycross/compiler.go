// SPDX-License-Identifier: MPL-2.0

package mpycross

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/invowk/mpycross/pkg/types"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const (
	// inputFileName is the staged source file inside each working directory.
	// Only its extension matters to the compiler.
	inputFileName = "input.py"
	// sourceExt and artifactExt follow the compiler's naming convention:
	// X.py compiles to X.mpy in the same directory.
	sourceExt   = ".py"
	artifactExt = ".mpy"

	// sourceNameFlag introduces the logical file name embedded in diagnostics.
	sourceNameFlag = "-s"
	// versionFlag makes the compiler print its version and exit.
	versionFlag = "--version"

	workDirPattern = "mpy-cross-"
)

type (
	// Compiler runs one specific mpy-cross binary. The binary path is fixed at
	// construction and never changes, so a Compiler is safe for concurrent use.
	Compiler struct {
		binaryPath  string
		tempDir     string
		logger      *log.Logger
		execCommand execCommandFunc
		removeAll   func(path string) error
	}

	// CompilerOption configures a Compiler.
	CompilerOption func(*Compiler)

	// execCommandFunc is the function signature for creating exec.Cmd.
	execCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd
)

// WithLogger sets the logger used for debug tracing and cleanup warnings.
// The default logger writes warnings to stderr.
func WithLogger(logger *log.Logger) CompilerOption {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTempDir sets the parent directory for per-invocation working
// directories. The default ("") is the system temporary directory.
func WithTempDir(dir string) CompilerOption {
	return func(c *Compiler) {
		c.tempDir = dir
	}
}

// withExecCommand sets the command factory used to start the compiler.
func withExecCommand(fn execCommandFunc) CompilerOption {
	return func(c *Compiler) {
		c.execCommand = fn
	}
}

// withRemoveAll sets the function that deletes working directories.
func withRemoveAll(fn func(path string) error) CompilerOption {
	return func(c *Compiler) {
		c.removeAll = fn
	}
}

// New creates a Compiler that runs the binary at binaryPath.
// The path is not checked; a missing binary surfaces as an ExecutionError
// when the compiler is first run.
func New(binaryPath string, opts ...CompilerOption) *Compiler {
	c := &Compiler{
		binaryPath: binaryPath,
		logger: log.NewWithOptions(os.Stderr, log.Options{
			Prefix: BinaryBaseName,
			Level:  log.WarnLevel,
		}),
		execCommand: exec.CommandContext,
		removeAll:   os.RemoveAll,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewBundled creates a Compiler for the binary installed next to the running
// executable (see DefaultBinaryPath).
func NewBundled(opts ...CompilerOption) (*Compiler, error) {
	path, err := DefaultBinaryPath()
	if err != nil {
		return nil, err
	}
	return New(path, opts...), nil
}

// BinaryPath returns the compiler binary this Compiler runs.
func (c *Compiler) BinaryPath() string {
	return c.binaryPath
}

// Compile compiles req.Source and returns the process outcome together with
// the compiled artifact, or a nil Artifact if the compiler wrote no output.
//
// The call blocks until the compiler exits. The source is staged in a fresh
// temporary directory that is removed before Compile returns, whatever the
// result. A nonzero exit is not an error: callers inspect Outcome.ExitCode
// and Outcome.Stderr. Errors are limited to *InvalidOptionError (no process
// is started), *ExecutionError (the binary could not be run) and failures to
// stage the input.
func (c *Compiler) Compile(ctx context.Context, req Request) (*Outcome, Artifact, error) {
	logger := c.logger.With("invocation", uuid.NewString(), "file", req.FileName)

	workDir, err := os.MkdirTemp(c.tempDir, workDirPattern)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create working directory: %w", err)
	}
	defer c.removeWorkDir(logger, workDir)

	inputPath := filepath.Join(workDir, inputFileName)
	if err := os.WriteFile(inputPath, []byte(req.Source), 0o600); err != nil {
		return nil, nil, fmt.Errorf("failed to stage source: %w", err)
	}

	argv, err := c.buildArgs(inputPath, req)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("running compiler", "args", argv)
	outcome, err := c.run(ctx, "compile", argv)
	if err != nil {
		return nil, nil, err
	}

	artifact := readArtifact(artifactPath(inputPath))
	logger.Debug("compiler finished", "exit_code", outcome.ExitCode, "artifact_bytes", len(artifact))

	return outcome, artifact, nil
}

// Version returns the compiler's self-reported version string with
// surrounding whitespace removed. The string is returned verbatim; it
// normally contains VersionMarker followed by the .mpy format version.
func (c *Compiler) Version(ctx context.Context) (string, error) {
	argv := []string{c.binaryPath, versionFlag}
	outcome, err := c.run(ctx, "version", argv)
	if err != nil {
		return "", err
	}
	if !outcome.ExitCode.IsSuccess() {
		return "", &ExecutionError{
			Op:       "version",
			Path:     c.binaryPath,
			ExitCode: outcome.ExitCode,
			Stderr:   outcome.Stderr,
		}
	}
	return strings.TrimSpace(string(outcome.Stdout)), nil
}

// Run executes the compiler with args passed through untouched and the
// given standard streams, returning its exit code. Any of the streams may
// be nil. Only a failure to launch the binary is returned as an error.
func (c *Compiler) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (types.ExitCode, error) {
	argv := append([]string{c.binaryPath}, args...)
	c.logger.Debug("running compiler", "args", argv)

	cmd := c.execCommand(ctx, argv[0], argv[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	code, err := exitStatus(ctx, cmd.Run())
	if err != nil {
		return code, &ExecutionError{Op: "run", Path: c.binaryPath, Err: err}
	}
	return code, nil
}

// buildArgs assembles the full argument vector, binary first.
func (c *Compiler) buildArgs(inputPath string, req Request) ([]string, error) {
	flags, err := req.Options.flags()
	if err != nil {
		return nil, err
	}

	argv := make([]string, 0, 4+len(flags))
	argv = append(argv, c.binaryPath, inputPath, sourceNameFlag, req.FileName)
	return append(argv, flags...), nil
}

// run starts argv without stdin, captures both output streams and waits
// for it to exit.
func (c *Compiler) run(ctx context.Context, op string, argv []string) (*Outcome, error) {
	var stdout, stderr bytes.Buffer

	cmd := c.execCommand(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	code, err := exitStatus(ctx, cmd.Run())
	if err != nil {
		return nil, &ExecutionError{Op: op, Path: argv[0], Stderr: stderr.Bytes(), Err: err}
	}

	return &Outcome{
		ExitCode: code,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	}, nil
}

// exitStatus splits the result of exec.Cmd.Run into the process exit code
// and a launch error. A process that ran and exited nonzero is not an error
// unless the context ended it.
func exitStatus(ctx context.Context, err error) (types.ExitCode, error) {
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := types.ExitCode(exitErr.ExitCode())
		if validateErr := code.Validate(); validateErr != nil {
			return 0, validateErr
		}
		return code, nil
	}

	// Binary missing, not executable, etc.
	return 0, err
}

// removeWorkDir deletes the working directory. Failures are logged and never
// replace a result that was already computed.
func (c *Compiler) removeWorkDir(logger *log.Logger, dir string) {
	if err := c.removeAll(dir); err != nil {
		logger.Warn("failed to remove working directory", "path", dir, "error", err)
	}
}

// artifactPath derives the compiler's output path from the staged input path.
func artifactPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, sourceExt) + artifactExt
}

// readArtifact returns the output file's contents, or nil if it cannot be read.
func readArtifact(path string) Artifact {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return Artifact(data)
}
