// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the mpycross command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mpycross",
		Short: "Compile MicroPython sources to .mpy bytecode",
		Long: TitleStyle.Render("mpycross") + SubtitleStyle.Render(" - Compile MicroPython sources to .mpy bytecode") + `

mpycross drives the mpy-cross compiler that ships next to it. Each source is
compiled in an isolated working directory; compiler diagnostics are printed
unchanged and the resulting .mpy file is written next to the source.

` + SubtitleStyle.Render("Examples:") + `
  mpycross compile main.py               Compile main.py to main.mpy
  mpycross compile -O2 --arch armv7emsp lib/*.py --out-dir build
  mpycross compile --report json *.py    Print a machine-readable report
  mpycross version                       Show the bundled compiler version
  mpycross run -- --help                 Run mpy-cross with raw arguments
  mpycross config show                   Show current configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.flags.configFile, "config", "", "config file (default is $HOME/.config/mpycross/config.cue)")
	rootCmd.PersistentFlags().StringVar(&app.flags.binary, "binary", "", "mpy-cross binary to use instead of the bundled one")

	rootCmd.AddCommand(newCompileCommand(app))
	rootCmd.AddCommand(newVersionCommand(app))
	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
// ldflags values win; otherwise the module version recorded by `go install`
// is used.
func getVersionString() string {
	if Version != "dev" {
		return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

// Execute builds the application and runs the command tree.
// This is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ProcessCode())
		}
		os.Exit(1)
	}
}
