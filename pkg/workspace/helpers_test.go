// pkg/workspace/helpers_test.go
package workspace

// overrideUserHomeDir temporarily overrides the userHomeDir function with the provided fn.
// It returns a cleanup function that restores the original userHomeDir implementation.
func overrideUserHomeDir(fn func() (string, error)) func() {
	old := userHomeDir
	userHomeDir = fn
	return func() { userHomeDir = old }
}
