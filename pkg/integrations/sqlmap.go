// pkg/integrations/sqlmap.go
package integrations

import (
	"regexp"

	"github.com/penkit-sh/penkit/pkg/toolexec"
)

// SQLMapDescriptor is the preset for the sqlmap injection scanner. --batch
// keeps it non-interactive under the shell.
var SQLMapDescriptor = toolexec.Descriptor{
	Name:           "sqlmap",
	Binary:         "sqlmap",
	VersionArgs:    []string{"--version"},
	VersionPattern: regexp.MustCompile(`sqlmap (\d+\.\d+(?:\.\d+)?)`),
	DefaultArgs:    []string{"--batch"},
	ContainerImage: "vulnerables/sqlmap-python3",
}

func init() {
	toolexec.MustRegisterIntegration(toolexec.NewIntegration(SQLMapDescriptor, nil))
}
