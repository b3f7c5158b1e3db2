// pkg/engine/manager.go
package engine

import (
	"context"

	"github.com/penkit-sh/penkit/pkg/config"
	"github.com/penkit-sh/penkit/pkg/event"
	"github.com/penkit-sh/penkit/pkg/hook"
	"github.com/penkit-sh/penkit/pkg/version"
)

type contextKey string

// AppManagerKey stores the active AppManager on command contexts so
// subcommands can reach the shared managers without globals.
const AppManagerKey contextKey = "penkit.engine.app_manager"

// AppManager represents the application manager constructed by the factory.
// It holds the cancellable root context and the shared managers every
// command and shell session works against.
type AppManager struct {
	// ctx is the context for managing request-scoped values, cancellation
	// signals, and deadlines across API boundaries.
	ctx context.Context
	// cancel is the function to cancel the associated context, used to
	// signal termination or cleanup.
	cancel context.CancelFunc

	ConfigManager *config.Manager // Configuration manager for loading and managing application settings.

	EventBus *event.Bus // Event bus for lifecycle notifications within the application.

	HookManager *hook.Manager // Hook manager for startup and shutdown hooks.

	// Version represents the build version information.
	Version version.Struct
}

// Context returns the context associated with the AppManager instance.
func (a *AppManager) Context() context.Context {
	return a.ctx
}

// Config returns the configuration manager.
func (a *AppManager) Config() *config.Manager {
	return a.ConfigManager
}

// Shutdown runs the registered shutdown hooks and cancels the manager's
// context, signaling running operations to terminate.
func (a *AppManager) Shutdown() {
	if a.HookManager != nil {
		a.HookManager.Trigger(a.ctx, hook.OnShutdown)
	}
	a.cancel()
}
