// cmd/penkit/main.go
package main

import (
	"os"

	"github.com/penkit-sh/penkit/cmd/penkit/commands"
	"github.com/penkit-sh/penkit/pkg/shell"
)

func main() {
	if err := commands.NewCommand().Execute(); err != nil {
		os.Exit(shell.ExitCode(err))
	}
}
