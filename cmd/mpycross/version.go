// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the mpy-cross compiler version",
		Long: `Show the version reported by the mpy-cross compiler, including the .mpy
format version it emits. Use 'mpycross --version' for the version of mpycross
itself.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context())
			if err != nil {
				return err
			}

			version, err := s.compiler.Version(cmd.Context())
			if err != nil {
				return compilerError("query mpy-cross version", s.compiler.BinaryPath(), err)
			}

			fmt.Fprintln(app.stdout, version)
			if s.verbose {
				fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("binary:"), CmdStyle.Render(s.compiler.BinaryPath()))
				fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("mpycross:"), getVersionString())
			}
			return nil
		},
	}
}
