// cmd/penkit/commands/root.go
package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penkit-sh/penkit/pkg/appctx"
	"github.com/penkit-sh/penkit/pkg/cli"
	"github.com/penkit-sh/penkit/pkg/config"
	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/hook"
	"github.com/penkit-sh/penkit/pkg/logging"
	"github.com/penkit-sh/penkit/pkg/plugin"
	"github.com/penkit-sh/penkit/pkg/toolexec"
	"github.com/penkit-sh/penkit/pkg/workspace"

	// Built-in tool integrations and modules register from their init
	// functions.
	_ "github.com/penkit-sh/penkit/pkg/integrations"
	_ "github.com/penkit-sh/penkit/pkg/modules/pingsweep"
	_ "github.com/penkit-sh/penkit/pkg/modules/portscan"
	_ "github.com/penkit-sh/penkit/pkg/modules/webscan"
)

const cliExecutable = "penkit"

// NewCommand constructs the top-level penkit CLI command, wiring global
// flags, AppManager lifecycle, and shared workspace preparation. Running it
// without a subcommand starts the interactive shell.
func NewCommand() *cobra.Command {
	var (
		configFile        string
		workspaceDisabled bool
		appManager        *engine.AppManager
		verbosityCount    int
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "PenKit is an interactive shell for orchestrating security tools",
		Long: `PenKit wraps external security tools behind a uniform module interface.
Select a module, set its options, and run it against a target from an
interactive prompt or a script file. Results are parsed, summarized, and
kept in the session history.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			factory := &engine.DefaultAppManagerFactory{}

			mgr, err := factory.Create(cmd.Flags(), configFile)
			if err != nil {
				return fmt.Errorf("initialize AppManager: %w", err)
			}
			appManager = mgr

			ctx := context.WithValue(cmd.Context(), engine.AppManagerKey, appManager)
			ctx = appctx.WithConfig(ctx, appManager.Config())

			pluginsDir := appManager.Config().GetString("plugins.path")
			if !workspaceDisabled {
				prepared, err := workspace.Prepare(appManager.Config().GetString("workdir"))
				if err != nil {
					return fmt.Errorf("prepare workspace: %w", err)
				}
				ctx = workspace.WithContext(ctx, prepared)
				log.Debug().Str("workspace", prepared).Msg("workspace ready")
				if pluginsDir == "" {
					pluginsDir = workspace.PluginsDir(prepared)
				}

				logFile := filepath.Join(workspace.LogsDir(prepared), "penkit.log")
				if detach, err := logging.AttachLogFile(logFile); err != nil {
					log.Warn().Str("path", logFile).Err(err).Msg("File logging disabled")
				} else {
					appManager.HookManager.Register(hook.OnShutdown, func(context.Context) {
						if err := detach(); err != nil {
							log.Warn().Err(err).Msg("Failed to close log file")
						}
					})
				}
			} else {
				log.Debug().Msg("workspace disabled for this run")
			}

			if pluginsDir != "" {
				if n, err := plugin.Discover(pluginsDir, engine.Default(), toolexec.Default()); err != nil {
					log.Warn().Str("dir", pluginsDir).Err(err).Msg("plugin discovery failed")
				} else if n > 0 {
					log.Debug().Int("plugins", n).Msg("plugin modules loaded")
				}
			}

			toolexec.Default().ApplySettings(&toolexec.ConfigSettings{Config: appManager.Config()})

			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if appManager != nil {
				appManager.Shutdown()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newShellEnv(cmd)
			if err != nil {
				return err
			}
			defer env.persist()
			return env.shell.Run(cmd.Context())
		},
	}

	cmd.SilenceUsage = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().BoolVar(&workspaceDisabled, "no-workspace", false, "Disable workspace persistence for this run")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase logging verbosity (repeatable)")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewScriptCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(cli.NewModulesCommand(engine.Default()))
	cmd.AddCommand(cli.NewVersionCommand(cliExecutable))

	return cmd
}
