// cmd/penkit/commands/script.go
package commands

import (
	"github.com/spf13/cobra"

	"github.com/penkit-sh/penkit/pkg/script"
)

// NewScriptCommand runs a file of shell commands non-interactively, one
// command per line under the same dispatch contract as the prompt.
func NewScriptCommand() *cobra.Command {
	var continueOnError bool

	cmd := &cobra.Command{
		Use:   "script <file>",
		Short: "Execute shell commands from a script file",
		Long: `Executes the commands in the given file as if they were typed at the
interactive prompt. Blank lines and #-comments are skipped. The first
failing command aborts the rest unless --continue-on-error is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newShellEnv(cmd)
			if err != nil {
				return err
			}
			defer env.persist()

			if cmd.Flags().Changed("continue-on-error") {
				if err := env.app.Config().Set("scripts.continue_on_error", continueOnError); err != nil {
					return err
				}
			}

			runner := script.NewRunner(env.shell, env.app.Config(), env.printer)
			return runner.Run(cmd.Context(), args[0])
		},
	}

	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep executing after a failing line")

	return cmd
}
