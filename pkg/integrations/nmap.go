// pkg/integrations/nmap.go
// Package integrations registers the built-in tool presets. Importing it
// populates the toolexec default registry; the shell binary does this with
// a blank import.
package integrations

import (
	"regexp"

	"github.com/penkit-sh/penkit/pkg/toolexec"
)

// NmapDescriptor is the preset for the nmap port scanner. The container
// fallback needs host networking so scans see the real network.
var NmapDescriptor = toolexec.Descriptor{
	Name:             "nmap",
	Binary:           "nmap",
	VersionArgs:      []string{"--version"},
	VersionPattern:   regexp.MustCompile(`Nmap version ([0-9.]+)`),
	ContainerImage:   "instrumentisto/nmap:latest",
	ContainerOptions: []string{"--net=host"},
}

func init() {
	toolexec.MustRegisterIntegration(toolexec.NewIntegration(NmapDescriptor, nil))
}
