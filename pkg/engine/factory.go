// pkg/engine/factory.go
package engine

import (
	"context"

	"github.com/penkit-sh/penkit/pkg/config"
	"github.com/penkit-sh/penkit/pkg/event"
	"github.com/penkit-sh/penkit/pkg/hook"
	"github.com/penkit-sh/penkit/pkg/logging"
	"github.com/penkit-sh/penkit/pkg/version"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// AppManagerFactory constructs AppManager instances.
type AppManagerFactory interface {
	CreateWithConfig(flags *pflag.FlagSet, configFile string) (*AppManager, error)
}

// DefaultAppManagerFactory is the standard factory used by the CLI.
type DefaultAppManagerFactory struct{}

// Create initializes a new AppManager instance. It configures global logging
// from the runtime flags, loads configuration from configFile (the default
// user path when empty), then reapplies the logging level the configuration
// resolved, so file and environment settings take effect unless the operator
// overrode verbosity on the command line.
//
// Parameters:
//   - flags:      A pflag.FlagSet containing runtime flags, may be nil.
//   - configFile: Path to the configuration file.
func (f *DefaultAppManagerFactory) Create(flags *pflag.FlagSet, configFile string) (*AppManager, error) {
	if err := logging.ConfigureGlobalLogging(f.GetRuntimeLogLevel(flags).String()); err != nil {
		return nil, err
	}

	configManager := config.NewManager()
	if err := configManager.Load(flags, configFile); err != nil {
		return nil, err
	}

	if !verbosityChanged(flags) {
		if err := logging.ConfigureGlobalLogging(configManager.GetString("log.level")); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &AppManager{
		ctx:           ctx,
		cancel:        cancel,
		ConfigManager: configManager,
		EventBus:      event.New(),
		HookManager:   hook.NewManager(),
		Version:       version.Get(),
	}, nil
}

// CreateWithConfig creates a new AppManager instance using the provided
// pflag.FlagSet and configuration file.
func (f *DefaultAppManagerFactory) CreateWithConfig(flags *pflag.FlagSet, configFile string) (*AppManager, error) {
	return f.Create(flags, configFile)
}

// CreateWithNoConfig creates a new AppManager instance without flags,
// loading only the default configuration sources.
func (f *DefaultAppManagerFactory) CreateWithNoConfig() (*AppManager, error) {
	return f.Create(nil, "")
}

// GetRuntimeLogLevel determines the startup log level from the verbosity
// count flag: -v info, -vv debug, -vvv trace, none or unknown warn.
func (f *DefaultAppManagerFactory) GetRuntimeLogLevel(flags *pflag.FlagSet) zerolog.Level {
	logLevel := zerolog.DebugLevel
	if flags != nil {
		verbosityLevel, err := flags.GetCount("verbosity")
		if err == nil {
			switch verbosityLevel {
			case 1:
				logLevel = zerolog.InfoLevel
			case 2:
				logLevel = zerolog.DebugLevel
			case 3:
				logLevel = zerolog.TraceLevel
			default:
				logLevel = zerolog.WarnLevel
			}
		}
	}
	return logLevel
}

func verbosityChanged(flags *pflag.FlagSet) bool {
	if flags == nil {
		return false
	}
	return flags.Changed("verbosity") || flags.Changed("debug")
}
