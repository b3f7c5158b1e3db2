// Copyright 2025 PenKit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package plugin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/toolexec"
)

var optionTypes = map[string]engine.OptionType{
	"string": engine.OptionString,
	"int":    engine.OptionInt,
	"bool":   engine.OptionBool,
}

type runner interface {
	Execute(ctx context.Context, args []string, timeout time.Duration) (*toolexec.ExecutionResult, error)
}

// manifestModule adapts a loaded manifest to the module contract. Each
// instance resolves its integration lazily so settings applied after
// discovery still take effect.
type manifestModule struct {
	manifest *Manifest
	meta     engine.Metadata
	tool     func() (runner, error)
}

// Factory returns an engine factory producing instances of this manifest's
// module, launching through the given tool registry.
func (m *Manifest) Factory(tools *toolexec.Registry) engine.Factory {
	meta := m.metadata()
	return func() engine.Module {
		return &manifestModule{
			manifest: m,
			meta:     meta,
			tool: func() (runner, error) {
				i, err := tools.Lookup(m.Tool.Name)
				if err != nil {
					return nil, err
				}
				return i, nil
			},
		}
	}
}

func (m *Manifest) metadata() engine.Metadata {
	specs := make([]engine.OptionSpec, 0, len(m.Options))
	for _, opt := range m.Options {
		specs = append(specs, engine.OptionSpec{
			Name:        opt.Name,
			Description: opt.Description,
			Type:        optionTypes[opt.effectiveType()],
			Default:     opt.Default,
			Required:    opt.Required,
		})
	}
	return engine.Metadata{
		Name:        m.Name,
		Description: m.Description,
		Version:     m.Version,
		Author:      m.Author,
		Options:     specs,
	}
}

func (p *manifestModule) Metadata() engine.Metadata { return p.meta }

// buildArgs renders the manifest's argument template against the resolved
// options. Empty option values drop their group instead of emitting a
// dangling flag.
func (p *manifestModule) buildArgs(opts *engine.Options) []string {
	var args []string
	for _, a := range p.manifest.Args {
		switch {
		case a.Arg != "":
			args = append(args, substitute(a.Arg, opts))
		case a.Option != "":
			value := opts.GetString(a.Option)
			if value == "" {
				continue
			}
			if a.Flag != "" {
				args = append(args, a.Flag)
			}
			args = append(args, value)
		case a.When != "":
			if opts.GetBool(a.When) {
				args = append(args, a.Flag)
			}
		}
	}
	return args
}

func substitute(token string, opts *engine.Options) string {
	for _, name := range placeholders(token) {
		token = strings.ReplaceAll(token, "{"+name+"}", opts.GetString(name))
	}
	return token
}

// timeout prefers a declared timeout option over the manifest default.
func (p *manifestModule) timeout(opts *engine.Options) time.Duration {
	for _, opt := range p.manifest.Options {
		if opt.Name == "timeout" && opt.effectiveType() == "int" {
			return time.Duration(opts.GetInt("timeout")) * time.Second
		}
	}
	return time.Duration(p.manifest.Timeout) * time.Second
}

// Run launches the tool with the rendered arguments. The execution record
// rides on the result so history and persistence see the real process
// outcome, partial or not.
func (p *manifestModule) Run(ctx context.Context, opts *engine.Options) (engine.Result, error) {
	tool, err := p.tool()
	if err != nil {
		return nil, err
	}

	res, err := tool.Execute(ctx, p.buildArgs(opts), p.timeout(opts))
	if err != nil {
		if res == nil {
			return nil, err
		}
		return engine.Result{
			engine.ResultKey:    fmt.Sprintf("%s aborted: %v", p.meta.Name, err),
			engine.ExecutionKey: res,
		}, err
	}

	summary := fmt.Sprintf("%s completed in %s", p.manifest.Tool.Name, res.Duration.Round(time.Millisecond))
	if !res.Success {
		summary = fmt.Sprintf("%s exited with code %d", p.manifest.Tool.Name, res.ExitCode)
	}
	return engine.Result{
		engine.ResultKey:    summary,
		engine.ExecutionKey: res,
	}, nil
}
