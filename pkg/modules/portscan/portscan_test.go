// pkg/modules/portscan/portscan_test.go
package portscan

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/toolexec"
)

func TestMain(m *testing.M) {
	log.Logger = zerolog.Nop()
	os.Exit(m.Run())
}

type fakeRunner struct {
	args    []string
	timeout time.Duration
	res     *toolexec.ExecutionResult
	err     error
}

func (f *fakeRunner) Execute(_ context.Context, args []string, timeout time.Duration) (*toolexec.ExecutionResult, error) {
	f.args = args
	f.timeout = timeout
	return f.res, f.err
}

func moduleWithRunner(fake *fakeRunner) *Module {
	m := New()
	m.tool = func() (runner, error) { return fake, nil }
	return m
}

func scanOptions(t *testing.T, m *Module, values map[string]string) *engine.Options {
	t.Helper()
	opts := engine.NewOptions(m.Metadata().Options)
	for name, value := range values {
		require.NoError(t, opts.Set(name, value))
	}
	return opts
}

func parsedScan() map[string]interface{} {
	return map[string]interface{}{
		"parsed": true,
		"tool":   "nmap",
		"scan_info": map[string]interface{}{
			"summary": "1 host up",
		},
		"hosts": []map[string]interface{}{
			{
				"ip_address": "10.0.0.5",
				"status":     "up",
				"open_ports": []map[string]interface{}{
					{"port": 22, "state": "open"},
					{"port": 80, "state": "open"},
					{"port": 443, "state": "closed"},
				},
			},
			{
				"ip_address": "10.0.0.6",
				"status":     "down",
				"open_ports": []map[string]interface{}{},
			},
		},
	}
}

func TestBuildArgs_Defaults(t *testing.T) {
	m := New()
	opts := scanOptions(t, m, map[string]string{"target": "10.0.0.5"})

	args, err := buildArgs(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"-oX", "-", "-p", "1-1000", "-sT", "-T4", "-sV", "10.0.0.5"}, args)
}

func TestBuildArgs_AllOptions(t *testing.T) {
	m := New()
	opts := scanOptions(t, m, map[string]string{
		"target":            "scanme.example.org",
		"ports":             "22,80,8000-8100",
		"scan_type":         "syn",
		"timing":            "2",
		"service_detection": "false",
		"script_scan":       "true",
		"show_only_open":    "true",
	})

	args, err := buildArgs(opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"-oX", "-", "-p", "22,80,8000-8100", "-sS", "-T2", "-sC", "--open", "scanme.example.org"}, args)
}

func TestBuildArgs_RejectsUnknownScanType(t *testing.T) {
	m := New()
	opts := scanOptions(t, m, map[string]string{"target": "10.0.0.5", "scan_type": "xmas"})

	_, err := buildArgs(opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidOption)
	assert.Contains(t, err.Error(), "xmas")
}

func TestBuildArgs_RejectsTimingOutOfRange(t *testing.T) {
	m := New()
	opts := scanOptions(t, m, map[string]string{"target": "10.0.0.5", "timing": "9"})

	_, err := buildArgs(opts)
	assert.ErrorIs(t, err, engine.ErrInvalidOption)
}

func TestBuildArgs_RejectsMalformedPorts(t *testing.T) {
	m := New()

	for _, ports := range []string{"8100-8000", "0,80", "https", "1-70000"} {
		opts := scanOptions(t, m, map[string]string{"target": "10.0.0.5", "ports": ports})

		_, err := buildArgs(opts)
		assert.ErrorIs(t, err, engine.ErrInvalidOption, "ports=%s", ports)
	}
}

func TestRun_SummarizesParsedHosts(t *testing.T) {
	fake := &fakeRunner{res: &toolexec.ExecutionResult{
		Tool:     "nmap",
		ExitCode: 0,
		Success:  true,
		Parsed:   parsedScan(),
	}}
	m := moduleWithRunner(fake)
	opts := scanOptions(t, m, map[string]string{"target": "10.0.0.0/30"})

	res, err := m.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, "1 of 2 hosts up, 2 open ports", res.Summary())
	assert.Same(t, fake.res, res[engine.ExecutionKey])
	assert.Contains(t, res, "hosts")
	assert.Contains(t, res, "scan_info")

	assert.Equal(t, 600*time.Second, fake.timeout)
	require.NotEmpty(t, fake.args)
	assert.Equal(t, "10.0.0.0/30", fake.args[len(fake.args)-1])
}

func TestRun_UnparsedOutputFallsBackToExitCode(t *testing.T) {
	fake := &fakeRunner{res: &toolexec.ExecutionResult{
		Tool:     "nmap",
		ExitCode: 1,
		Parsed:   map[string]interface{}{"parsed": false, "raw": "garbled"},
	}}
	m := moduleWithRunner(fake)
	opts := scanOptions(t, m, map[string]string{"target": "10.0.0.5"})

	res, err := m.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "nmap finished with exit code 1, output not parsed", res.Summary())
}

func TestRun_TimeoutKeepsPartialOutput(t *testing.T) {
	partial := &toolexec.ExecutionResult{
		Tool:     "nmap",
		ExitCode: -1,
		Stdout:   "<nmaprun",
		Parsed:   map[string]interface{}{"parsed": false, "raw": "<nmaprun"},
	}
	fake := &fakeRunner{res: partial, err: &toolexec.TimeoutError{Tool: "nmap", Timeout: time.Second}}
	m := moduleWithRunner(fake)
	opts := scanOptions(t, m, map[string]string{"target": "10.0.0.5", "timeout": "1"})

	res, err := m.Run(context.Background(), opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, toolexec.ErrExecutionTimeout)

	require.NotNil(t, res)
	assert.Contains(t, res.Summary(), "aborted")
	assert.Same(t, partial, res[engine.ExecutionKey])
	assert.Equal(t, time.Second, fake.timeout)
}

func TestRun_ToolMissing(t *testing.T) {
	m := New()
	m.tool = func() (runner, error) {
		return nil, &toolexec.ToolNotFoundError{Tool: "nmap", Binary: "nmap"}
	}
	opts := scanOptions(t, m, map[string]string{"target": "10.0.0.5"})

	res, err := m.Run(context.Background(), opts)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, toolexec.ErrToolNotFound)
}

func TestRun_InvalidOptionsNeverLaunch(t *testing.T) {
	fake := &fakeRunner{err: errors.New("should not be called")}
	m := moduleWithRunner(fake)
	opts := scanOptions(t, m, map[string]string{"target": "10.0.0.5", "scan_type": "bogus"})

	_, err := m.Run(context.Background(), opts)
	assert.ErrorIs(t, err, engine.ErrInvalidOption)
	assert.Nil(t, fake.args)
}

func TestModuleRegistered(t *testing.T) {
	mod, err := engine.GetModuleInstance("port_scanner")
	require.NoError(t, err)
	assert.Equal(t, "port_scanner", mod.Metadata().Name)
}
