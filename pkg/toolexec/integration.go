// pkg/toolexec/integration.go
// Package toolexec launches external security tools as subprocesses, native
// or containerized, with hard timeouts and full output capture. Every run
// produces an ExecutionResult; a non-zero exit code is data, not an error.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/penkit-sh/penkit/pkg/parser"
)

// DefaultTimeout bounds executions whose caller did not set one.
const DefaultTimeout = 600 * time.Second

const versionProbeTimeout = 30 * time.Second

// Integration couples a tool descriptor with the runtime settings that
// decide how it launches. Output parsing dispatches through the parser
// registry under the descriptor name.
type Integration struct {
	Descriptor Descriptor

	settings Settings
	lookPath func(file string) (string, error)
}

// NewIntegration builds an integration. A nil settings falls back to
// descriptor defaults (native when on PATH, container otherwise).
func NewIntegration(desc Descriptor, settings Settings) *Integration {
	if settings == nil {
		settings = defaultSettings{}
	}
	return &Integration{
		Descriptor: desc,
		settings:   settings,
		lookPath:   exec.LookPath,
	}
}

// Name returns the registry and config key of the tool.
func (i *Integration) Name() string { return i.Descriptor.Name }

// Available reports whether the tool can be launched at all.
func (i *Integration) Available() bool {
	_, err := i.command(nil)
	return err == nil
}

// binaryPath resolves the native binary: explicit config path first, then
// PATH lookup.
func (i *Integration) binaryPath() (string, bool) {
	if p := i.settings.ToolPath(i.Descriptor.Name); p != "" {
		return p, true
	}
	if i.Descriptor.Binary == "" {
		return "", false
	}
	if p, err := i.lookPath(i.Descriptor.Binary); err == nil {
		return p, true
	}
	return "", false
}

func (i *Integration) containerImage() string {
	if img := i.settings.ContainerImage(i.Descriptor.Name); img != "" {
		return img
	}
	return i.Descriptor.ContainerImage
}

// command builds the full argv for a run: `<binary> <default_args> <args>`
// natively, or `docker run --rm <container_options> <image> <default_args>
// <args>` in container mode.
func (i *Integration) command(args []string) ([]string, error) {
	mode := i.Descriptor.mode()
	forceContainer := mode == ModeContainer || i.settings.UseContainer(i.Descriptor.Name)

	if !forceContainer {
		if bin, ok := i.binaryPath(); ok {
			argv := make([]string, 0, 1+len(i.Descriptor.DefaultArgs)+len(args))
			argv = append(argv, bin)
			argv = append(argv, i.Descriptor.DefaultArgs...)
			argv = append(argv, args...)
			return argv, nil
		}
		if mode == ModeNative {
			return nil, &ToolNotFoundError{Tool: i.Descriptor.Name, Binary: i.Descriptor.Binary}
		}
	}

	if image := i.containerImage(); image != "" {
		argv := make([]string, 0, 4+len(i.Descriptor.ContainerOptions)+len(i.Descriptor.DefaultArgs)+len(args))
		argv = append(argv, "docker", "run", "--rm")
		argv = append(argv, i.Descriptor.ContainerOptions...)
		argv = append(argv, image)
		argv = append(argv, i.Descriptor.DefaultArgs...)
		argv = append(argv, args...)
		return argv, nil
	}

	return nil, &ToolNotFoundError{Tool: i.Descriptor.Name, Binary: i.Descriptor.Binary}
}

// Execute runs the tool and blocks until it finishes or the timeout expires.
// The subprocess gets its own process group; on timeout the whole group is
// killed so container wrappers and forked scanners cannot linger. Partial
// output survives a timeout inside the returned result and TimeoutError.
func (i *Integration) Execute(ctx context.Context, args []string, timeout time.Duration) (*ExecutionResult, error) {
	argv, err := i.command(args)
	if err != nil {
		return nil, err
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, argv[0], argv[1:]...)
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := &ExecutionResult{
		ID:        uuid.New().String(),
		Tool:      i.Descriptor.Name,
		Command:   argv,
		StartedAt: time.Now(),
	}

	log.Debug().Str("tool", i.Descriptor.Name).Str("command", strings.Join(argv, " ")).Dur("timeout", timeout).Msg("executing tool")

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &ToolNotFoundError{Tool: i.Descriptor.Name, Binary: argv[0]}
		}
		return nil, fmt.Errorf("starting %s: %w", i.Descriptor.Name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-execCtx.Done():
		killProcessGroup(cmd)
		<-done

		res.Duration = time.Since(res.StartedAt)
		res.Stdout = stdout.String()
		res.Stderr = stderr.String()
		res.ExitCode = -1
		res.Parsed = parser.Fallback(res.Stdout, res.Stderr)

		if ctx.Err() != nil {
			return res, fmt.Errorf("execution canceled: %w", ctx.Err())
		}

		log.Warn().Str("tool", i.Descriptor.Name).Dur("timeout", timeout).Msg("tool execution timed out, process group killed")
		return res, &TimeoutError{
			Tool:    i.Descriptor.Name,
			Timeout: timeout,
			Stdout:  res.Stdout,
			Stderr:  res.Stderr,
		}

	case waitErr := <-done:
		res.Duration = time.Since(res.StartedAt)
		res.Stdout = stdout.String()
		res.Stderr = stderr.String()

		if waitErr != nil {
			var exitErr *exec.ExitError
			if !errors.As(waitErr, &exitErr) {
				return res, fmt.Errorf("running %s: %w", i.Descriptor.Name, waitErr)
			}
			res.ExitCode = exitErr.ExitCode()
		}

		res.Success = res.ExitCode == 0
		res.Parsed = parser.Parse(i.Descriptor.Name, res.Stdout, res.Stderr)

		log.Debug().Str("tool", i.Descriptor.Name).Int("exit_code", res.ExitCode).Dur("duration", res.Duration).Msg("tool execution finished")
		return res, nil
	}
}

// CheckVersion probes the tool version via its version arguments. In
// container mode the probe is skipped and the image reference is reported
// instead, so startup never pulls images.
func (i *Integration) CheckVersion(ctx context.Context) (string, error) {
	if _, ok := i.binaryPath(); !ok || i.settings.UseContainer(i.Descriptor.Name) {
		if image := i.containerImage(); image != "" {
			return "container:" + image, nil
		}
		return "", &ToolNotFoundError{Tool: i.Descriptor.Name, Binary: i.Descriptor.Binary}
	}

	bin, _ := i.binaryPath()
	execCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, bin, i.Descriptor.VersionArgs...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("version probe for %s: %w", i.Descriptor.Name, err)
	}

	banner := strings.TrimSpace(string(out))
	if i.Descriptor.VersionPattern != nil {
		if m := i.Descriptor.VersionPattern.FindStringSubmatch(banner); m != nil {
			return m[1], nil
		}
	}
	return banner, nil
}
