// pkg/shell/shell.go
// Package shell implements the interactive command interpreter. The loop
// reads one line at a time, dispatches it against a fixed command table,
// and reports errors without ever terminating the process; only exit or
// end of input stops it. Durable state lives in the session manager and
// the configuration store, never in the interpreter itself.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/penkit-sh/penkit/pkg/config"
	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/session"
	"github.com/penkit-sh/penkit/pkg/ui"
)

// command is one entry of the fixed dispatch table.
type command struct {
	name    string
	usage   string
	summary string
	run     func(ctx context.Context, args []string) error
}

// Options wires the interpreter's collaborators.
type Options struct {
	In          io.Reader
	Printer     *ui.Printer
	Registry    *engine.Registry
	Sessions    *session.Manager
	Config      *config.Manager
	Store       *session.Store // optional, enables sessions persistence
	HistoryPath string         // optional, persists interactive history across runs
	Version     string
}

// Interpreter is the single-threaded read-eval loop.
type Interpreter struct {
	in          io.Reader
	printer     *ui.Printer
	registry    *engine.Registry
	sessions    *session.Manager
	config      *config.Manager
	store       *session.Store
	historyPath string
	version     string

	history  []string
	commands map[string]command
	order    []string
}

// New builds an interpreter with its command table.
func New(opts Options) *Interpreter {
	i := &Interpreter{
		in:          opts.In,
		printer:     opts.Printer,
		registry:    opts.Registry,
		sessions:    opts.Sessions,
		config:      opts.Config,
		store:       opts.Store,
		historyPath: opts.HistoryPath,
		version:     opts.Version,
		commands:    make(map[string]command),
	}
	i.buildCommands()
	i.loadHistory()
	return i
}

// Prompt returns the prompt for the current context, penkit > at the top
// level and penkit (<module>) > with a module selected.
func (i *Interpreter) Prompt() string {
	if mc := i.sessions.Current().Active(); mc != nil {
		return fmt.Sprintf("penkit (%s) > ", mc.Name())
	}
	return "penkit > "
}

// History returns the commands dispatched so far, oldest first.
func (i *Interpreter) History() []string {
	out := make([]string, len(i.history))
	copy(out, i.history)
	return out
}

// Execute tokenizes and dispatches a single line. Blank lines are ignored.
// The returned error is the command's outcome; the caller decides whether
// to report it and continue (interactive) or abort (script default).
func (i *Interpreter) Execute(ctx context.Context, line string) error {
	tokens, err := Split(line)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	i.remember(strings.TrimSpace(line))

	name := strings.ToLower(tokens[0])
	cmd, ok := i.commands[name]
	if !ok {
		return &UnknownCommandError{Name: name}
	}
	return cmd.run(ctx, tokens[1:])
}

// Run drives the interactive loop until exit or end of input. Command
// errors are printed and the loop continues; only an input stream failure
// is returned.
func (i *Interpreter) Run(ctx context.Context) error {
	i.printer.Banner(i.version, i.registry.Len())

	scanner := bufio.NewScanner(i.in)
	for {
		if ctx.Err() != nil {
			return nil
		}

		i.printer.Promptf("%s", i.Prompt())
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			i.printer.Println()
			i.printer.Successf("Goodbye")
			return nil
		}

		if line := strings.TrimSpace(scanner.Text()); line != "" {
			i.appendHistoryFile(line)
		}
		if err := i.Execute(ctx, scanner.Text()); err != nil {
			if errors.Is(err, ErrExit) {
				i.printer.Successf("Goodbye")
				return nil
			}
			i.printer.Errorf("%v", err)
		}
	}
}

func (i *Interpreter) remember(line string) {
	i.history = append(i.history, line)
	if max := i.config.GetInt("shell.history_size"); max > 0 && len(i.history) > max {
		i.history = i.history[len(i.history)-max:]
	}
}

// loadHistory seeds the in-memory history from the persisted file, one
// command per line, so a new shell starts where the last one left off.
func (i *Interpreter) loadHistory() {
	if i.historyPath == "" {
		return
	}
	data, err := os.ReadFile(i.historyPath)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			i.history = append(i.history, line)
		}
	}
	if max := i.config.GetInt("shell.history_size"); max > 0 && len(i.history) > max {
		i.history = i.history[len(i.history)-max:]
	}
}

// appendHistoryFile records one interactive line. Only lines typed at the
// prompt are persisted; script execution stays out of the history file. A
// failing file is reported once and persistence is disabled for the run.
func (i *Interpreter) appendHistoryFile(line string) {
	if i.historyPath == "" {
		return
	}
	f, err := os.OpenFile(i.historyPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		log.Warn().Err(err).Str("path", i.historyPath).Msg("History persistence disabled")
		i.historyPath = ""
		return
	}
	fmt.Fprintln(f, line)
	f.Close()
}

func (i *Interpreter) register(c command) {
	i.commands[c.name] = c
	i.order = append(i.order, c.name)
}
