// pkg/script/runner.go
// Package script feeds the shell interpreter from a command file instead
// of interactive input, one command per line under the same contract.
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/penkit-sh/penkit/pkg/config"
	"github.com/penkit-sh/penkit/pkg/shell"
	"github.com/penkit-sh/penkit/pkg/ui"
)

// LineError reports the script line a command failed on.
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Runner executes script files through an interpreter.
type Runner struct {
	shell   *shell.Interpreter
	config  *config.Manager
	printer *ui.Printer
}

// NewRunner creates a script runner.
func NewRunner(sh *shell.Interpreter, cfg *config.Manager, printer *ui.Printer) *Runner {
	return &Runner{shell: sh, config: cfg, printer: printer}
}

// Run executes the script at path. Blank lines and #-comments are skipped.
// By default the first failing command aborts the rest and the error names
// the 1-based line; with scripts.continue_on_error set, failures are
// reported and the script keeps going, like the interactive loop.
func (r *Runner) Run(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening script: %w", err)
	}
	defer f.Close()
	return r.run(ctx, path, f)
}

func (r *Runner) run(ctx context.Context, path string, in io.Reader) error {
	continueOnError := r.config.GetBool("scripts.continue_on_error")

	scanner := bufio.NewScanner(in)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		r.printer.Dimf("> %s", line)
		err := r.shell.Execute(ctx, line)
		if err == nil {
			continue
		}
		if errors.Is(err, shell.ErrExit) {
			return nil
		}

		lineErr := &LineError{Path: path, Line: lineNo, Err: err}
		if !continueOnError {
			return lineErr
		}
		r.printer.Errorf("%v", lineErr)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading script: %w", err)
	}
	return nil
}
