// cmd/penkit/commands/script_test.go
package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penkit-sh/penkit/pkg/engine"
)

func writeScript(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.pks")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o600))
	return path
}

func TestScriptCommandExecutesFile(t *testing.T) {
	tmp := isolateEnv(t)

	path := writeScript(t, `# smoke script
help
sessions create demo
`)

	out, err := runRoot(t, "", "script", path)
	require.NoError(t, err)

	assert.Contains(t, out, "> help")
	assert.Contains(t, out, "Session created: demo")

	_, statErr := os.Stat(filepath.Join(tmp, "sessions", "demo", "metadata.yaml"))
	assert.NoError(t, statErr, "script sessions must be persisted on exit")
}

func TestScriptCommandStopsOnFirstError(t *testing.T) {
	tmp := isolateEnv(t)

	path := writeScript(t, `use nosuchmodule
sessions create after
`)

	_, err := runRoot(t, "", "script", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrNotFound))
	assert.Contains(t, err.Error(), ":1:")

	_, statErr := os.Stat(filepath.Join(tmp, "sessions", "after"))
	assert.True(t, os.IsNotExist(statErr), "commands after the failing line must not run")
}

func TestScriptCommandContinueOnError(t *testing.T) {
	tmp := isolateEnv(t)

	path := writeScript(t, `use nosuchmodule
sessions create after
`)

	out, err := runRoot(t, "", "script", path, "--continue-on-error")
	require.NoError(t, err)
	assert.Contains(t, out, "Session created: after")

	_, statErr := os.Stat(filepath.Join(tmp, "sessions", "after", "metadata.yaml"))
	assert.NoError(t, statErr)
}

func TestScriptCommandExitStopsCleanly(t *testing.T) {
	tmp := isolateEnv(t)

	path := writeScript(t, `sessions create early
exit
sessions create never
`)

	_, err := runRoot(t, "", "script", path)
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(tmp, "sessions", "early", "metadata.yaml"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(tmp, "sessions", "never"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestScriptCommandMissingFile(t *testing.T) {
	tmp := isolateEnv(t)

	_, err := runRoot(t, "", "script", filepath.Join(tmp, "absent.pks"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening script")
}
