// pkg/shell/commands.go
package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/penkit-sh/penkit/pkg/session"
)

func (i *Interpreter) buildCommands() {
	i.register(command{
		name:    "help",
		usage:   "help",
		summary: "Show this help message",
		run:     i.cmdHelp,
	})
	i.register(command{
		name:    "use",
		usage:   "use <module>",
		summary: "Select a module to configure and run",
		run:     i.cmdUse,
	})
	i.register(command{
		name:    "show",
		usage:   "show modules|options",
		summary: "Show available modules or the active module's options",
		run:     i.cmdShow,
	})
	i.register(command{
		name:    "set",
		usage:   "set <option> <value>",
		summary: "Set an option on the active module, or a session variable",
		run:     i.cmdSet,
	})
	i.register(command{
		name:    "unset",
		usage:   "unset <option>",
		summary: "Clear an option back to its default",
		run:     i.cmdUnset,
	})
	i.register(command{
		name:    "run",
		usage:   "run",
		summary: "Execute the active module",
		run:     i.cmdRun,
	})
	i.register(command{
		name:    "back",
		usage:   "back",
		summary: "Return to the previous context",
		run:     i.cmdBack,
	})
	i.register(command{
		name:    "sessions",
		usage:   "sessions [create|switch|destroy <id> | list]",
		summary: "Manage sessions",
		run:     i.cmdSessions,
	})
	i.register(command{
		name:    "config",
		usage:   "config [get <key> | set <key> <value> | save]",
		summary: "Inspect and change configuration",
		run:     i.cmdConfig,
	})
	i.register(command{
		name:    "history",
		usage:   "history",
		summary: "Show the commands issued this session",
		run:     i.cmdHistory,
	})
	i.register(command{
		name:    "exit",
		usage:   "exit",
		summary: "Leave the shell",
		run:     i.cmdExit,
	})

	// Alias kept off the help listing.
	i.commands["quit"] = command{name: "quit", run: i.cmdExit}
}

func (i *Interpreter) cmdHelp(ctx context.Context, args []string) error {
	i.printer.Println("Available commands:")
	for _, name := range i.order {
		c := i.commands[name]
		i.printer.Printf("  %-42s %s\n", c.usage, c.summary)
	}
	return nil
}

func (i *Interpreter) cmdUse(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return &UsageError{Usage: "use <module>"}
	}
	mc, err := i.sessions.Use(args[0])
	if err != nil {
		return err
	}
	i.printer.Successf("Using module: %s", mc.Name())
	return nil
}

func (i *Interpreter) cmdShow(ctx context.Context, args []string) error {
	what := "modules"
	if len(args) > 0 {
		what = strings.ToLower(args[0])
	}

	switch what {
	case "modules":
		i.printer.ModulesTable(i.registry.List())
		return nil
	case "options":
		mc := i.sessions.Current().Active()
		if mc == nil {
			return session.ErrNoModuleSelected
		}
		i.printer.OptionsTable(mc.Name(), mc.Options.Specs(), mc.Options.Resolved())
		return nil
	default:
		return &UsageError{Usage: "show modules|options"}
	}
}

func (i *Interpreter) cmdSet(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return &UsageError{Usage: "set <option> <value>"}
	}
	name := args[0]
	value := strings.Join(args[1:], " ")
	if err := i.sessions.Current().SetOption(name, value); err != nil {
		return err
	}
	i.printer.Printf("%s => %s\n", name, value)
	return nil
}

func (i *Interpreter) cmdUnset(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return &UsageError{Usage: "unset <option>"}
	}
	if err := i.sessions.Current().UnsetOption(args[0]); err != nil {
		return err
	}
	i.printer.Printf("%s => unset\n", args[0])
	return nil
}

func (i *Interpreter) cmdRun(ctx context.Context, args []string) error {
	mc := i.sessions.Current().Active()
	if mc == nil {
		return session.ErrNoModuleSelected
	}

	i.printer.Infof("Running module: %s", mc.Name())
	res, err := i.sessions.Run(ctx)
	if err != nil {
		return err
	}

	if summary := res.Summary(); summary != "" {
		i.printer.Println(summary)
	}
	i.printer.Successf("Module execution completed")
	return nil
}

func (i *Interpreter) cmdBack(ctx context.Context, args []string) error {
	if !i.sessions.Current().Back() {
		i.printer.Warnf("No active module")
		return nil
	}
	i.printer.Infof("Returned to previous context")
	return nil
}

func (i *Interpreter) cmdSessions(ctx context.Context, args []string) error {
	action := "list"
	if len(args) > 0 {
		action = strings.ToLower(args[0])
	}

	switch action {
	case "list":
		i.printer.SessionsTable(i.sessions.List(), i.sessions.Current().ID)
		return nil
	case "create":
		id := ""
		if len(args) > 1 {
			id = args[1]
		}
		s, err := i.sessions.Create(id)
		if err != nil {
			return err
		}
		i.printer.Successf("Session created: %s", s.ID)
		return nil
	case "switch":
		if len(args) != 2 {
			return &UsageError{Usage: "sessions switch <id>"}
		}
		s, err := i.switchSession(args[1])
		if err != nil {
			return err
		}
		i.printer.Successf("Switched to session: %s", s.ID)
		return nil
	case "destroy":
		if len(args) != 2 {
			return &UsageError{Usage: "sessions destroy <id>"}
		}
		if err := i.sessions.Destroy(args[1]); err != nil {
			return err
		}
		if i.store != nil {
			if err := i.store.Delete(args[1]); err != nil {
				i.printer.Warnf("Could not remove persisted state for %s: %v", args[1], err)
			}
		}
		i.printer.Successf("Session destroyed: %s", args[1])
		return nil
	default:
		return &UsageError{Usage: "sessions [create|switch|destroy <id> | list]"}
	}
}

// switchSession saves the outgoing session before handing over, so a later
// crash cannot lose a finished run's results.
func (i *Interpreter) switchSession(id string) (*session.Session, error) {
	if i.store != nil {
		if err := i.store.Save(i.sessions.Current()); err != nil {
			i.printer.Warnf("Could not persist session %s: %v", i.sessions.Current().ID, err)
		}
	}
	return i.sessions.Switch(id)
}

func (i *Interpreter) cmdConfig(ctx context.Context, args []string) error {
	action := "list"
	if len(args) > 0 {
		action = strings.ToLower(args[0])
	}

	switch action {
	case "list":
		rows := make([][]string, 0)
		for _, r := range i.config.All() {
			rows = append(rows, []string{r.Key, fmt.Sprintf("%v", r.Value), r.Layer})
		}
		i.printer.Table([]string{"key", "value", "layer"}, rows)
		i.printer.Println()
		return nil
	case "get":
		if len(args) != 2 {
			return &UsageError{Usage: "config get <key>"}
		}
		v, err := i.config.Get(args[1])
		if err != nil {
			return err
		}
		i.printer.Printf("%v\n", v)
		return nil
	case "set":
		if len(args) < 3 {
			return &UsageError{Usage: "config set <key> <value>"}
		}
		key := args[1]
		value := strings.Join(args[2:], " ")
		if err := i.config.Set(key, value); err != nil {
			return err
		}
		i.printer.Printf("%s => %s\n", key, value)
		return nil
	case "save":
		if err := i.config.Save(); err != nil {
			return err
		}
		i.printer.Successf("Configuration saved: %s", i.config.FilePath())
		return nil
	default:
		return &UsageError{Usage: "config [get <key> | set <key> <value> | save]"}
	}
}

func (i *Interpreter) cmdHistory(ctx context.Context, args []string) error {
	for n, line := range i.history {
		i.printer.Printf("%4d  %s\n", n+1, line)
	}
	return nil
}

func (i *Interpreter) cmdExit(ctx context.Context, args []string) error {
	return ErrExit
}
