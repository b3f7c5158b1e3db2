// Copyright 2025 PenKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/toolexec"
	"github.com/penkit-sh/penkit/pkg/version"
)

// Discover scans dir for manifest files and registers every valid one as
// a module. Malformed manifests, version-gated manifests and registration
// collisions are logged and skipped; a missing directory means zero
// plugins, not an error. Returns the number of modules registered.
//
// Call before settings are applied to the tool registry so integrations
// created here pick them up with everything else.
func Discover(dir string, modules *engine.Registry, tools *toolexec.Registry) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("dir", dir).Msg("plugin directory does not exist, skipping discovery")
			return 0, nil
		}
		return 0, fmt.Errorf("reading plugin directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml":
		default:
			continue
		}

		path := filepath.Join(dir, entry.Name())
		m, err := Load(path)
		if err != nil {
			log.Warn().Str("file", entry.Name()).Err(err).Msg("skipping malformed plugin manifest")
			continue
		}

		if !version.AtLeast(m.MinPenKitVersion) {
			log.Warn().Str("plugin", m.Name).Str("requires", m.MinPenKitVersion).Msg("skipping plugin, build too old")
			continue
		}

		if err := ensureIntegration(tools, m.Tool); err != nil {
			log.Warn().Str("plugin", m.Name).Err(err).Msg("skipping plugin, tool unavailable")
			continue
		}

		if err := modules.Register(m.Factory(tools)); err != nil {
			log.Warn().Str("plugin", m.Name).Err(err).Msg("skipping plugin, registration refused")
			continue
		}

		log.Info().Str("plugin", m.Name).Str("version", m.Version).Str("tool", m.Tool.Name).Msg("plugin module loaded")
		loaded++
	}
	return loaded, nil
}

// ensureIntegration registers the manifest's tool unless an integration
// with that name already exists. Built-in presets always win.
func ensureIntegration(tools *toolexec.Registry, t ToolBlock) error {
	if _, err := tools.Lookup(t.Name); err == nil {
		return nil
	}
	if t.Binary == "" && t.ContainerImage == "" {
		return &toolexec.ToolNotFoundError{Tool: t.Name}
	}
	return tools.Register(toolexec.NewIntegration(toolexec.Descriptor{
		Name:             t.Name,
		Binary:           t.Binary,
		VersionArgs:      t.VersionArgs,
		DefaultArgs:      t.DefaultArgs,
		ContainerImage:   t.ContainerImage,
		ContainerOptions: t.ContainerOptions,
	}, nil))
}
