// cmd/penkit/commands/root_test.go
package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points the workspace and the default config location at a
// fresh temp dir so tests never touch real operator state.
func isolateEnv(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("PENKIT_WORKDIR", tmp)
	t.Setenv("HOME", tmp)
	return tmp
}

func runRoot(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	if in != "" {
		cmd.SetIn(strings.NewReader(in))
	}
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommandPreparesWorkspaceAndRunsVersion(t *testing.T) {
	tmp := isolateEnv(t)

	out, err := runRoot(t, "", "version", "--short")
	require.NoError(t, err)
	assert.Contains(t, out, "penkit version: ")

	for _, sub := range []string{"sessions", "plugins", "logs", "scripts"} {
		if _, err := os.Stat(filepath.Join(tmp, sub)); err != nil {
			t.Fatalf("expected workspace subdir %q: %v", sub, err)
		}
	}

	_, statErr := os.Stat(filepath.Join(tmp, "logs", "penkit.log"))
	assert.NoError(t, statErr, "log file should be created alongside the workspace")
}

func TestRootCommandNoWorkspace(t *testing.T) {
	tmp := isolateEnv(t)

	_, err := runRoot(t, "", "--no-workspace", "version", "--short")
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(tmp, "sessions"))
	assert.True(t, os.IsNotExist(statErr), "workspace must not be prepared with --no-workspace")
}

func TestRootCommandRejectsUnknownSubcommand(t *testing.T) {
	isolateEnv(t)

	_, err := runRoot(t, "", "frobnicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestRootCommandListsBuiltinModules(t *testing.T) {
	isolateEnv(t)

	out, err := runRoot(t, "", "modules", "-o", "json")
	require.NoError(t, err)

	var listings []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listings))

	names := make([]string, 0, len(listings))
	for _, l := range listings {
		names = append(names, l.Name)
	}
	assert.Contains(t, names, "port_scanner")
	assert.Contains(t, names, "web_scanner")
	assert.Contains(t, names, "ping_sweep")
}

func TestRootCommandDiscoversPluginManifests(t *testing.T) {
	tmp := isolateEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(tmp, "plugins"), 0o750))

	manifest := `name: banner_grab
description: Grab service banners with netcat
version: 1.0.0
author: test
tool:
  name: banner-netcat
  binary: nc
options:
  - name: target
    description: Target host
    required: true
args:
  - option: target
`
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "plugins", "banner.yaml"), []byte(manifest), 0o600))

	out, err := runRoot(t, "", "modules", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "banner_grab")
}

func TestRootCommandRunsInteractiveShell(t *testing.T) {
	tmp := isolateEnv(t)

	out, err := runRoot(t, "help\nexit\n")
	require.NoError(t, err)

	assert.Contains(t, out, "modules loaded. Type 'help' for a list of commands.")
	assert.Contains(t, out, "Available commands:")
	assert.Contains(t, out, "Goodbye")

	// Leaving the shell persists the session state and the typed commands.
	_, statErr := os.Stat(filepath.Join(tmp, "sessions", "default", "metadata.yaml"))
	assert.NoError(t, statErr)

	history, readErr := os.ReadFile(filepath.Join(tmp, "history"))
	require.NoError(t, readErr)
	assert.Equal(t, "help\nexit\n", string(history))
}

func TestRootCommandShellRestoresSessions(t *testing.T) {
	isolateEnv(t)

	_, err := runRoot(t, "sessions create recon\nexit\n")
	require.NoError(t, err)

	out, err := runRoot(t, "sessions list\nexit\n")
	require.NoError(t, err)
	assert.Contains(t, out, "recon")
}
