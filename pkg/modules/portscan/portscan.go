// pkg/modules/portscan/portscan.go
// Package portscan provides the port_scanner module, a wrapper around the
// nmap network scanner. Scan output is requested as XML on stdout so the
// registered output parser can turn it into structured host records.
package portscan

import (
	"context"
	"fmt"
	"time"

	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/netutil"
	"github.com/penkit-sh/penkit/pkg/toolexec"
)

// scanTypeFlags maps the scan_type option to the nmap technique flag.
// syn and udp scans need elevated privileges; nmap reports that itself.
var scanTypeFlags = map[string]string{
	"tcp": "-sT",
	"syn": "-sS",
	"udp": "-sU",
}

// runner is the slice of the tool integration the module needs. Tests
// substitute a fake so no real nmap binary is involved.
type runner interface {
	Execute(ctx context.Context, args []string, timeout time.Duration) (*toolexec.ExecutionResult, error)
}

// Module wraps nmap as the port_scanner module.
type Module struct {
	meta engine.Metadata
	tool func() (runner, error)
}

// New builds a port_scanner instance bound to the default tool registry.
func New() *Module {
	return &Module{
		meta: engine.Metadata{
			Name:        "port_scanner",
			Description: "Scan for open ports on target systems",
			Version:     "0.1.0",
			Author:      "PenKit Team",
			Options: []engine.OptionSpec{
				{Name: "target", Description: "Target to scan (IP, hostname, CIDR)", Type: engine.OptionString, Required: true},
				{Name: "ports", Description: "Port specification, e.g. 22,80,8000-8100", Type: engine.OptionString, Default: "1-1000"},
				{Name: "scan_type", Description: "Scan technique: tcp, syn or udp", Type: engine.OptionString, Default: "tcp"},
				{Name: "timing", Description: "Nmap timing template (0-5)", Type: engine.OptionInt, Default: 4},
				{Name: "service_detection", Description: "Probe open ports for service and version info", Type: engine.OptionBool, Default: true},
				{Name: "script_scan", Description: "Run the default NSE script set", Type: engine.OptionBool, Default: false},
				{Name: "show_only_open", Description: "Report only hosts with open ports", Type: engine.OptionBool, Default: false},
				{Name: "timeout", Description: "Scan timeout in seconds", Type: engine.OptionInt, Default: 600},
			},
		},
		tool: func() (runner, error) {
			i, err := toolexec.GetIntegration("nmap")
			if err != nil {
				return nil, err
			}
			return i, nil
		},
	}
}

// Metadata returns the module's descriptive attributes.
func (m *Module) Metadata() engine.Metadata { return m.meta }

// buildArgs maps the resolved options to nmap arguments. XML goes to
// stdout for the parser; the target is always the final argument.
func buildArgs(opts *engine.Options) ([]string, error) {
	args := []string{"-oX", "-"}

	if ports := opts.GetString("ports"); ports != "" {
		// Reject a bad expression here instead of surfacing an nmap usage
		// error after the process launched.
		if _, err := netutil.ParsePortString(ports); err != nil {
			return nil, &engine.InvalidOptionError{Option: "ports", Reason: err.Error()}
		}
		args = append(args, "-p", ports)
	}

	scanType := opts.GetString("scan_type")
	flag, ok := scanTypeFlags[scanType]
	if !ok {
		return nil, &engine.InvalidOptionError{Option: "scan_type", Reason: fmt.Sprintf("unsupported value %q (expected tcp, syn or udp)", scanType)}
	}
	args = append(args, flag)

	timing := opts.GetInt("timing")
	if timing < 0 || timing > 5 {
		return nil, &engine.InvalidOptionError{Option: "timing", Reason: fmt.Sprintf("timing template %d out of range 0-5", timing)}
	}
	args = append(args, fmt.Sprintf("-T%d", timing))

	if opts.GetBool("service_detection") {
		args = append(args, "-sV")
	}
	if opts.GetBool("script_scan") {
		args = append(args, "-sC")
	}
	if opts.GetBool("show_only_open") {
		args = append(args, "--open")
	}

	args = append(args, opts.GetString("target"))
	return args, nil
}

// Run executes the scan and summarizes the parsed host records. A timeout
// still yields a result carrying whatever output nmap produced before the
// process group was killed.
func (m *Module) Run(ctx context.Context, opts *engine.Options) (engine.Result, error) {
	args, err := buildArgs(opts)
	if err != nil {
		return nil, err
	}

	nmap, err := m.tool()
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(opts.GetInt("timeout")) * time.Second
	res, err := nmap.Execute(ctx, args, timeout)
	if err != nil {
		if res == nil {
			return nil, err
		}
		return engine.Result{
			engine.ResultKey:    fmt.Sprintf("scan of %s aborted: %v", opts.GetString("target"), err),
			engine.ExecutionKey: res,
		}, err
	}

	out := engine.Result{
		engine.ResultKey:    summarize(res),
		engine.ExecutionKey: res,
	}
	if hosts, ok := res.Parsed["hosts"]; ok {
		out["hosts"] = hosts
	}
	if info, ok := res.Parsed["scan_info"]; ok {
		out["scan_info"] = info
	}
	return out, nil
}

// summarize reduces the parsed payload to a one-line outcome.
func summarize(res *toolexec.ExecutionResult) string {
	parsed, _ := res.Parsed["parsed"].(bool)
	hosts, ok := res.Parsed["hosts"].([]map[string]interface{})
	if !parsed || !ok {
		return fmt.Sprintf("nmap finished with exit code %d, output not parsed", res.ExitCode)
	}

	up, open := 0, 0
	for _, h := range hosts {
		if h["status"] == "up" {
			up++
		}
		ports, _ := h["open_ports"].([]map[string]interface{})
		for _, p := range ports {
			if p["state"] == "open" {
				open++
			}
		}
	}
	return fmt.Sprintf("%d of %d hosts up, %d open ports", up, len(hosts), open)
}

func init() {
	engine.MustRegisterModuleFactory(func() engine.Module { return New() })
}
