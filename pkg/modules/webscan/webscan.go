// pkg/modules/webscan/webscan.go
// Package webscan provides the web_scanner module, a wrapper around the
// sqlmap injection scanner. The integration preset keeps --batch on every
// invocation so sqlmap never waits for terminal input under the shell.
package webscan

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/toolexec"
)

// Thorough scans raise detection depth when the operator left the levels
// at their defaults.
const (
	thoroughLevel = 3
	thoroughRisk  = 2
)

type runner interface {
	Execute(ctx context.Context, args []string, timeout time.Duration) (*toolexec.ExecutionResult, error)
}

// Module wraps sqlmap as the web_scanner module.
type Module struct {
	meta engine.Metadata
	tool func() (runner, error)
}

// New builds a web_scanner instance bound to the default tool registry.
func New() *Module {
	return &Module{
		meta: engine.Metadata{
			Name:        "web_scanner",
			Description: "Scan web applications for vulnerabilities",
			Version:     "0.1.0",
			Author:      "PenKit Team",
			Options: []engine.OptionSpec{
				{Name: "target_url", Description: "Target URL to scan", Type: engine.OptionString, Required: true},
				{Name: "data", Description: "POST data to send with each request", Type: engine.OptionString, Default: ""},
				{Name: "cookie", Description: "Cookie header to include", Type: engine.OptionString, Default: ""},
				{Name: "user_agent", Description: "User-Agent header to send", Type: engine.OptionString, Default: "PenKit Web Scanner"},
				{Name: "scan_level", Description: "Detection level (1-5)", Type: engine.OptionInt, Default: 1},
				{Name: "risk_level", Description: "Risk of tests to perform (1-3)", Type: engine.OptionInt, Default: 1},
				{Name: "forms", Description: "Parse and test forms on the target", Type: engine.OptionBool, Default: true},
				{Name: "crawl_depth", Description: "Crawl the site to this depth, 0 disables", Type: engine.OptionInt, Default: 0},
				{Name: "threads", Description: "Concurrent requests", Type: engine.OptionInt, Default: 1},
				{Name: "timeout", Description: "Scan timeout in seconds", Type: engine.OptionInt, Default: 1800},
				{Name: "scan_type", Description: "Scan profile: quick or thorough", Type: engine.OptionString, Default: "quick"},
			},
		},
		tool: func() (runner, error) {
			i, err := toolexec.GetIntegration("sqlmap")
			if err != nil {
				return nil, err
			}
			return i, nil
		},
	}
}

// Metadata returns the module's descriptive attributes.
func (m *Module) Metadata() engine.Metadata { return m.meta }

// buildArgs maps the resolved options to sqlmap arguments. --batch comes
// from the integration preset, not from here.
func buildArgs(opts *engine.Options) ([]string, error) {
	level := opts.GetInt("scan_level")
	risk := opts.GetInt("risk_level")

	switch opts.GetString("scan_type") {
	case "quick":
	case "thorough":
		if !opts.IsSet("scan_level") {
			level = thoroughLevel
		}
		if !opts.IsSet("risk_level") {
			risk = thoroughRisk
		}
	default:
		return nil, &engine.InvalidOptionError{Option: "scan_type", Reason: fmt.Sprintf("unsupported value %q (expected quick or thorough)", opts.GetString("scan_type"))}
	}

	if level < 1 || level > 5 {
		return nil, &engine.InvalidOptionError{Option: "scan_level", Reason: fmt.Sprintf("detection level %d out of range 1-5", level)}
	}
	if risk < 1 || risk > 3 {
		return nil, &engine.InvalidOptionError{Option: "risk_level", Reason: fmt.Sprintf("risk level %d out of range 1-3", risk)}
	}

	args := []string{
		"-u", opts.GetString("target_url"),
		"--level", strconv.Itoa(level),
		"--risk", strconv.Itoa(risk),
	}

	if data := opts.GetString("data"); data != "" {
		args = append(args, "--data", data)
	}
	if cookie := opts.GetString("cookie"); cookie != "" {
		args = append(args, "--cookie", cookie)
	}
	if ua := opts.GetString("user_agent"); ua != "" {
		args = append(args, "--user-agent", ua)
	}
	if opts.GetBool("forms") {
		args = append(args, "--forms")
	}
	if depth := opts.GetInt("crawl_depth"); depth > 0 {
		args = append(args, "--crawl", strconv.Itoa(depth))
	}
	if threads := opts.GetInt("threads"); threads > 1 {
		args = append(args, "--threads", strconv.Itoa(threads))
	}

	return args, nil
}

// Run executes the scan and summarizes the findings the parser extracted.
func (m *Module) Run(ctx context.Context, opts *engine.Options) (engine.Result, error) {
	args, err := buildArgs(opts)
	if err != nil {
		return nil, err
	}

	sqlmap, err := m.tool()
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(opts.GetInt("timeout")) * time.Second
	res, err := sqlmap.Execute(ctx, args, timeout)
	if err != nil {
		if res == nil {
			return nil, err
		}
		return engine.Result{
			engine.ResultKey:    fmt.Sprintf("scan of %s aborted: %v", opts.GetString("target_url"), err),
			engine.ExecutionKey: res,
		}, err
	}

	out := engine.Result{
		engine.ResultKey:    summarize(res),
		engine.ExecutionKey: res,
	}
	if vulns, ok := res.Parsed["vulnerabilities"]; ok {
		out["vulnerabilities"] = vulns
	}
	if summary, ok := res.Parsed["summary"]; ok {
		out["summary"] = summary
	}
	return out, nil
}

func summarize(res *toolexec.ExecutionResult) string {
	parsed, _ := res.Parsed["parsed"].(bool)
	vulns, ok := res.Parsed["vulnerabilities"].([]map[string]interface{})
	if !parsed || !ok {
		return fmt.Sprintf("sqlmap finished with exit code %d, output not parsed", res.ExitCode)
	}
	if len(vulns) == 0 {
		return "no injection points found"
	}
	return fmt.Sprintf("%d injection findings", len(vulns))
}

func init() {
	engine.MustRegisterModuleFactory(func() engine.Module { return New() })
}
