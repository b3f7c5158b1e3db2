// pkg/workspace/workspace.go
// Package workspace manages the on-disk working directory shared by
// sessions, plugins, and logs.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var defaultSubdirs = []string{
	"sessions",
	"plugins",
	"logs",
	"scripts",
}

// Seam for tests.
var userHomeDir = os.UserHomeDir

// Prepare ensures the workspace root and required subdirectories exist.
// It returns the absolute path to the workspace root that was prepared.
// An empty root resolves through PENKIT_WORKSPACE and then ~/.penkit.
func Prepare(root string) (string, error) {
	if root == "" {
		var err error
		root, err = defaultRoot()
		if err != nil {
			return "", err
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve workspace path: %w", err)
	}

	if err := os.MkdirAll(absRoot, 0o750); err != nil {
		return "", fmt.Errorf("create workspace root: %w", err)
	}

	for _, sub := range defaultSubdirs {
		subPath := filepath.Join(absRoot, sub)
		if err := os.MkdirAll(subPath, 0o750); err != nil {
			return "", fmt.Errorf("create workspace subdir %q: %w", sub, err)
		}
	}

	return absRoot, nil
}

type ctxKey string

const workspaceRootKey ctxKey = "workspace.root"

// WithContext stores the prepared workspace root on the provided context.
func WithContext(ctx context.Context, root string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, workspaceRootKey, root)
}

// FromContext extracts the workspace root from context.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	val := ctx.Value(workspaceRootKey)
	if root, ok := val.(string); ok && root != "" {
		return root, true
	}
	return "", false
}

func defaultRoot() (string, error) {
	if dir := os.Getenv("PENKIT_WORKSPACE"); dir != "" {
		return dir, nil
	}

	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if home == "" {
		return "", errors.New("cannot determine workspace directory")
	}
	return filepath.Join(home, ".penkit"), nil
}

// SessionsDir returns the directory session state is persisted under.
func SessionsDir(root string) string { return filepath.Join(root, "sessions") }

// PluginsDir returns the directory plugin manifests are discovered in.
func PluginsDir(root string) string { return filepath.Join(root, "plugins") }

// LogsDir returns the directory log files are written to.
func LogsDir(root string) string { return filepath.Join(root, "logs") }

// HistoryFile returns the path of the interactive command history file.
func HistoryFile(root string) string { return filepath.Join(root, "history") }

// Subdirectories returns the list of default workspace subdirectories.
func Subdirectories() []string {
	subs := make([]string, len(defaultSubdirs))
	copy(subs, defaultSubdirs)
	return subs
}
