// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/invowk/mpycross/internal/config"
	"github.com/invowk/mpycross/pkg/mpycross"
	"github.com/invowk/mpycross/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: all Cobra command handlers receive an App reference and reach
	// configuration and the compiler only through it.
	App struct {
		Config    ConfigProvider
		Compilers CompilerFactory
		configDir string
		stdin     io.Reader
		stdout    io.Writer
		stderr    io.Writer
		flags     rootFlags

		// Set by newSession for error reporting after the command ran.
		verbose     bool
		colorScheme config.ColorScheme
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		Compilers CompilerFactory
		// ConfigDir overrides the platform config directory when set.
		ConfigDir string
		Stdin     io.Reader
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// rootFlags holds the persistent flags shared by every command.
	rootFlags struct {
		verbose    bool
		configFile string
		binary     string
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// Compiler is the subset of *mpycross.Compiler the commands use.
	Compiler interface {
		BinaryPath() string
		CompileAll(ctx context.Context, reqs []mpycross.Request, workers int) ([]mpycross.BatchResult, error)
		Version(ctx context.Context) (string, error)
		Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (types.ExitCode, error)
	}

	// CompilerFactory builds a Compiler for binaryPath ("" = bundled binary).
	CompilerFactory func(binaryPath string, logger *log.Logger) (Compiler, error)

	// session is the per-command state derived from flags and configuration.
	session struct {
		cfg      *config.Config
		compiler Compiler
		logger   *log.Logger
		verbose  bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Compilers == nil {
		deps.Compilers = newMPYCrossCompiler
	}
	return &App{
		Config:    deps.Config,
		Compilers: deps.Compilers,
		configDir: deps.ConfigDir,
		stdin:     deps.Stdin,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}, nil
}

// newMPYCrossCompiler is the production CompilerFactory.
func newMPYCrossCompiler(binaryPath string, logger *log.Logger) (Compiler, error) {
	if binaryPath == "" {
		c, err := mpycross.NewBundled(mpycross.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return mpycross.New(binaryPath, mpycross.WithLogger(logger)), nil
}

// loadOptions returns the config loading inputs selected by flags.
func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath: a.flags.configFile,
		ConfigDirPath:  a.configDir,
	}
}

// loadConfig loads the configuration selected by --config.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return a.Config.Load(ctx, a.loadOptions())
}

// newLogger returns the stderr logger used by the compiler and commands.
func (a *App) newLogger(verbose bool) *log.Logger {
	logger := log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  log.WarnLevel,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newSession loads configuration and builds the compiler. The --binary flag
// takes priority over compiler.binary_path, which takes priority over the
// bundled binary.
func (a *App) newSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	verbose := a.flags.verbose || cfg.UI.Verbose
	a.verbose, a.colorScheme = verbose, cfg.UI.ColorScheme
	logger := a.newLogger(verbose)

	binary := a.flags.binary
	if binary == "" {
		binary = cfg.Compiler.BinaryPath.String()
	}

	compiler, err := a.Compilers(binary, logger)
	if err != nil {
		return nil, compilerError("locate mpy-cross", binary, err)
	}
	logger.Debug("using compiler", "path", compiler.BinaryPath())

	return &session{cfg: cfg, compiler: compiler, logger: logger, verbose: verbose}, nil
}
