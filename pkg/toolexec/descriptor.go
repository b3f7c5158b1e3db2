// pkg/toolexec/descriptor.go
package toolexec

import "regexp"

// Mode selects how a tool is launched.
type Mode string

const (
	// ModeAuto prefers the native binary and falls back to the container
	// image when the binary is not installed.
	ModeAuto Mode = "auto"

	// ModeNative requires the binary on PATH (or an explicit path setting).
	ModeNative Mode = "native"

	// ModeContainer always launches through docker.
	ModeContainer Mode = "container"
)

// Descriptor describes one external tool: how to find it, how to launch it
// in a container when it is not installed, and how to read its version.
// Descriptors are immutable once registered.
type Descriptor struct {
	// Name keys the integration in the registry and in config
	// (tools.<name>.*). Also the parser dispatch key.
	Name string

	// Binary is the executable looked up on PATH for native runs.
	Binary string

	// VersionArgs invoke the tool's version banner (usually --version).
	VersionArgs []string

	// VersionPattern extracts the version number from the banner output.
	VersionPattern *regexp.Regexp

	// DefaultArgs are prepended to every invocation.
	DefaultArgs []string

	// ContainerImage is the image used for container runs.
	ContainerImage string

	// ContainerOptions are passed to `docker run` before the image.
	ContainerOptions []string

	// Mode is the launch policy. Empty means ModeAuto.
	Mode Mode
}

func (d Descriptor) mode() Mode {
	if d.Mode == "" {
		return ModeAuto
	}
	return d.Mode
}
