// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/invowk/mpycross/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `mpycross config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mpycross configuration",
		Long: `Manage mpycross configuration.

Configuration is stored in:
  - Linux: ~/.config/mpycross/config.cue
  - macOS: ~/Library/Application Support/mpycross/config.cue
  - Windows: %APPDATA%\mpycross\config.cue

A mpycross.cue file in the working directory is used when none exists there.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.FilePath(app.loadOptions())
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, path, err := config.Resolve(ctx, app.loadOptions())
	if err != nil {
		return err
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", CmdStyle.Render("compiler"))
	binary := cfg.Compiler.BinaryPath.String()
	if binary == "" {
		binary = "(bundled)"
	}
	writeValue(w, "binary_path", binary)
	writeValue(w, "workers", strconv.Itoa(int(cfg.Compiler.Workers)))

	d := cfg.Defaults
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", CmdStyle.Render("defaults"))
	writeValue(w, "optimization_level", optionalInt(d.OptimizationLevel))
	writeValue(w, "small_int_bits", optionalInt(d.SmallIntBits))
	writeValue(w, "no_unicode", strconv.FormatBool(d.NoUnicode))
	writeValue(w, "arch", orUnset(d.Arch))
	writeValue(w, "emit", orUnset(d.Emit))
	if d.HeapSize != nil {
		writeValue(w, "heap_size", strconv.FormatInt(*d.HeapSize, 10))
	} else {
		writeValue(w, "heap_size", orUnset(""))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", CmdStyle.Render("ui"))
	writeValue(w, "color_scheme", cfg.UI.ColorScheme.String())
	writeValue(w, "verbose", strconv.FormatBool(cfg.UI.Verbose))

	return nil
}

func writeValue(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %s: %s\n", key, SuccessStyle.Render(value))
}

func optionalInt(v *int) string {
	if v == nil {
		return orUnset("")
	}
	return strconv.Itoa(*v)
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

func initConfig(app *App) error {
	path, created, err := config.CreateDefaultConfig(app.configDir)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
