// cmd/penkit/commands/config.go
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penkit-sh/penkit/pkg/appctx"
	"github.com/penkit-sh/penkit/pkg/config"
	"github.com/penkit-sh/penkit/pkg/ui"
)

// NewConfigCommand groups the configuration subcommands.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change configuration",
	}

	cmd.AddCommand(newConfigListCommand())
	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func configFromCmd(cmd *cobra.Command) (*config.Manager, error) {
	cfg, ok := appctx.Config(cmd.Context())
	if !ok {
		return nil, errors.New("configuration not initialized")
	}
	return cfg, nil
}

func newConfigListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configuration key with its resolved value and layer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromCmd(cmd)
			if err != nil {
				return err
			}

			printer := ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
			rows := make([][]string, 0)
			for _, r := range cfg.All() {
				rows = append(rows, []string{r.Key, fmt.Sprintf("%v", r.Value), r.Layer})
			}
			printer.Table([]string{"key", "value", "layer"}, rows)
			return nil
		},
	}
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromCmd(cmd)
			if err != nil {
				return err
			}

			v, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", v)
			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value and persist it to the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromCmd(cmd)
			if err != nil {
				return err
			}

			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s => %s\n", args[0], args[1])
			return nil
		},
	}
}
