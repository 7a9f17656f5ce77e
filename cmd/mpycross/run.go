// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

func newRunCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [-- mpy-cross args...]",
		Short: "Run mpy-cross with raw arguments",
		Long: `Run the mpy-cross compiler with the given arguments, wired to this
process's standard input, output and error. The compiler's exit status becomes
the exit status of mpycross. Put '--' before arguments that start with '-'.`,
		Example: `  mpycross run -- --version
  mpycross run -- -O2 -march=armv7m main.py`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context())
			if err != nil {
				return err
			}

			code, err := s.compiler.Run(cmd.Context(), args, app.stdin, app.stdout, app.stderr)
			if err != nil {
				return compilerError("run mpy-cross", s.compiler.BinaryPath(), err)
			}
			if !code.IsSuccess() {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}
