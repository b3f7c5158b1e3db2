// cmd/penkit/commands/shellenv.go
package commands

import (
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/penkit-sh/penkit/pkg/config"
	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/session"
	"github.com/penkit-sh/penkit/pkg/shell"
	"github.com/penkit-sh/penkit/pkg/ui"
	"github.com/penkit-sh/penkit/pkg/workspace"
)

// shellEnv bundles the interpreter with the managers it runs against.
type shellEnv struct {
	app      *engine.AppManager
	printer  *ui.Printer
	sessions *session.Manager
	store    *session.Store
	shell    *shell.Interpreter
}

// newShellEnv composes an interpreter from the app manager and workspace
// stashed on the command context. Persisted sessions are restored when a
// sessions directory is available.
func newShellEnv(cmd *cobra.Command) (*shellEnv, error) {
	app, ok := cmd.Context().Value(engine.AppManagerKey).(*engine.AppManager)
	if !ok || app == nil {
		return nil, errors.New("application manager not initialized")
	}

	cfg := app.Config()
	sessions := session.NewManager(engine.Default(), app.EventBus)

	var store *session.Store
	if dir := sessionsDir(cmd, cfg); dir != "" {
		store = session.NewStore(dir)
		if n := store.Restore(sessions); n > 0 {
			log.Debug().Int("sessions", n).Msg("restored persisted sessions")
		}
	}

	var historyPath string
	if root, ok := workspace.FromContext(cmd.Context()); ok {
		historyPath = workspace.HistoryFile(root)
	}

	printer := ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), colorEnabled())
	interp := shell.New(shell.Options{
		In:          cmd.InOrStdin(),
		Printer:     printer,
		Registry:    engine.Default(),
		Sessions:    sessions,
		Config:      cfg,
		Store:       store,
		HistoryPath: historyPath,
		Version:     app.Version.Version,
	})

	return &shellEnv{app: app, printer: printer, sessions: sessions, store: store, shell: interp}, nil
}

func sessionsDir(cmd *cobra.Command, cfg *config.Manager) string {
	if dir := cfg.GetString("sessions.path"); dir != "" {
		return dir
	}
	if root, ok := workspace.FromContext(cmd.Context()); ok {
		return workspace.SessionsDir(root)
	}
	return ""
}

// persist saves every session before the process exits.
func (e *shellEnv) persist() {
	if e.store == nil {
		return
	}
	if err := e.store.SaveAll(e.sessions); err != nil {
		log.Error().Err(err).Msg("failed to persist sessions")
	}
}

func colorEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
