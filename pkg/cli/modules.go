// pkg/cli/modules.go
package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/ui"
)

// moduleListing is the structured shape of one module for JSON/YAML output.
type moduleListing struct {
	Name        string          `json:"name" yaml:"name"`
	Version     string          `json:"version" yaml:"version"`
	Description string          `json:"description" yaml:"description"`
	Author      string          `json:"author,omitempty" yaml:"author,omitempty"`
	Options     []optionListing `json:"options,omitempty" yaml:"options,omitempty"`
}

type optionListing struct {
	Name        string      `json:"name" yaml:"name"`
	Type        string      `json:"type" yaml:"type"`
	Default     interface{} `json:"default,omitempty" yaml:"default,omitempty"`
	Required    bool        `json:"required" yaml:"required"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewModulesCommand lists the registered modules, built-ins and loaded
// plugins alike, in text, json or yaml form.
func NewModulesCommand(registry *engine.Registry) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List available modules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mods := registry.List()

			switch strings.ToLower(outputFormat) {
			case "json":
				data, err := json.MarshalIndent(toListings(mods), "", "  ")
				if err != nil {
					return fmt.Errorf("marshal module list: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			case "yaml":
				data, err := yaml.Marshal(toListings(mods))
				if err != nil {
					return fmt.Errorf("marshal module list: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
			case "", "text":
				printer := ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
				printer.ModulesTable(mods)
			default:
				return fmt.Errorf("unknown output format %q (expected text, json or yaml)", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")

	return cmd
}

func toListings(mods []engine.Metadata) []moduleListing {
	out := make([]moduleListing, 0, len(mods))
	for _, m := range mods {
		listing := moduleListing{
			Name:        m.Name,
			Version:     m.Version,
			Description: m.Description,
			Author:      m.Author,
		}
		for _, opt := range m.Options {
			listing.Options = append(listing.Options, optionListing{
				Name:        opt.Name,
				Type:        string(opt.Type),
				Default:     opt.Default,
				Required:    opt.Required,
				Description: opt.Description,
			})
		}
		out = append(out, listing)
	}
	return out
}
