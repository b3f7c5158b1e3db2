// pkg/toolexec/settings.go
package toolexec

import "github.com/penkit-sh/penkit/pkg/config"

// Settings supplies the per-tool execution configuration an Integration
// honors at launch time.
type Settings interface {
	// ToolPath returns an explicit binary path, or "" to look up PATH.
	ToolPath(tool string) string

	// UseContainer forces the container launch path for the tool.
	UseContainer(tool string) bool

	// ContainerImage overrides the descriptor's image, or "" to keep it.
	ContainerImage(tool string) string
}

// ConfigSettings reads tool settings from the configuration manager
// (tools.<name>.path, tools.<name>.use_container,
// tools.<name>.container_image).
type ConfigSettings struct {
	Config *config.Manager
}

func (s *ConfigSettings) ToolPath(tool string) string {
	return s.Config.GetString("tools." + tool + ".path")
}

func (s *ConfigSettings) UseContainer(tool string) bool {
	return s.Config.GetBool("tools." + tool + ".use_container")
}

func (s *ConfigSettings) ContainerImage(tool string) string {
	return s.Config.GetString("tools." + tool + ".container_image")
}

// defaultSettings is used when an Integration has no settings attached.
type defaultSettings struct{}

func (defaultSettings) ToolPath(string) string       { return "" }
func (defaultSettings) UseContainer(string) bool     { return false }
func (defaultSettings) ContainerImage(string) string { return "" }
