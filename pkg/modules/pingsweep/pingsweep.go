// pkg/modules/pingsweep/pingsweep.go
// Package pingsweep provides the ping_sweep module, a pure-Go host
// liveness probe. Unlike the tool-wrapping modules it launches no
// subprocess; each target is pinged over ICMP with go-ping.
package pingsweep

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-ping/ping"
	"github.com/rs/zerolog/log"

	"github.com/penkit-sh/penkit/pkg/engine"
	"github.com/penkit-sh/penkit/pkg/netutil"
)

// maxConcurrency bounds in-flight pingers for one sweep.
const maxConcurrency = 32

// pinger is the slice of go-ping the sweep needs. Tests substitute a
// fake so no ICMP traffic leaves the process.
type pinger interface {
	Run() error
	Stop()
	Statistics() *ping.Statistics
}

type pingerFactory func(addr string, count int, timeout time.Duration) (pinger, error)

// defaultPingerFactory builds an unprivileged UDP pinger. Raw-socket mode
// needs root and is not worth a module option here.
func defaultPingerFactory(addr string, count int, timeout time.Duration) (pinger, error) {
	p, err := ping.NewPinger(addr)
	if err != nil {
		return nil, err
	}
	p.Count = count
	p.Timeout = timeout
	p.SetPrivileged(false)
	return p, nil
}

// Module sweeps a target expression for hosts answering ICMP echo.
type Module struct {
	meta      engine.Metadata
	newPinger pingerFactory
}

// New builds a ping_sweep instance using real ICMP pingers.
func New() *Module {
	return &Module{
		meta: engine.Metadata{
			Name:        "ping_sweep",
			Description: "Discover live hosts with ICMP echo requests",
			Version:     "0.1.0",
			Author:      "PenKit Team",
			Options: []engine.OptionSpec{
				{Name: "targets", Description: "Comma-separated targets (IPs, hostnames, CIDRs, ranges)", Type: engine.OptionString, Required: true},
				{Name: "count", Description: "Echo requests per host", Type: engine.OptionInt, Default: 1},
				{Name: "timeout", Description: "Per-host timeout in seconds", Type: engine.OptionInt, Default: 5},
			},
		},
		newPinger: defaultPingerFactory,
	}
}

// Metadata returns the module's descriptive attributes.
func (m *Module) Metadata() engine.Metadata { return m.meta }

// Run expands the target expression and pings every host, bounded by
// maxConcurrency. Hosts that fail to resolve or answer are skipped, not
// fatal; cancellation returns the live hosts found so far.
func (m *Module) Run(ctx context.Context, opts *engine.Options) (engine.Result, error) {
	hosts, err := expandTargets(opts.GetString("targets"))
	if err != nil {
		return nil, err
	}

	count := opts.GetInt("count")
	if count < 1 {
		count = 1
	}
	timeout := time.Duration(opts.GetInt("timeout")) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var (
		mu   sync.Mutex
		live []string
		wg   sync.WaitGroup
	)
	sem := make(chan struct{}, maxConcurrency)

	log.Debug().Int("targets", len(hosts)).Int("count", count).Dur("timeout", timeout).Msg("starting ping sweep")

	for _, host := range hosts {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(addr string) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			p, err := m.newPinger(addr, count, timeout)
			if err != nil {
				log.Debug().Str("host", addr).Err(err).Msg("skipping unpingable target")
				return
			}

			// Stop the pinger when the sweep is canceled; Run only
			// honors its own timeout otherwise.
			done := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					p.Stop()
				case <-done:
				}
			}()

			runErr := p.Run()
			close(done)

			if ctx.Err() != nil {
				return
			}
			if runErr != nil {
				log.Debug().Str("host", addr).Err(runErr).Msg("ping failed")
				return
			}

			if p.Statistics().PacketsRecv > 0 {
				mu.Lock()
				live = append(live, addr)
				mu.Unlock()
			}
		}(host)
	}

	wg.Wait()
	sort.Strings(live)

	out := engine.Result{
		engine.ResultKey:  fmt.Sprintf("%d of %d hosts responded", len(live), len(hosts)),
		"live_hosts":      live,
		"targets_scanned": len(hosts),
	}
	if err := ctx.Err(); err != nil {
		out[engine.ResultKey] = fmt.Sprintf("sweep canceled, %d hosts responded before abort", len(live))
		return out, err
	}
	return out, nil
}

// expandTargets turns the comma-separated option value into individual
// hosts. An expression error only aborts when nothing usable remains.
func expandTargets(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	hosts, err := netutil.ExpandTargets(parts)
	if len(hosts) == 0 {
		reason := "no usable targets"
		if err != nil {
			reason = err.Error()
		}
		return nil, &engine.InvalidOptionError{Option: "targets", Reason: reason}
	}
	if err != nil {
		log.Warn().Err(err).Msg("some target expressions were skipped")
	}
	return hosts, nil
}

func init() {
	engine.MustRegisterModuleFactory(func() engine.Module { return New() })
}
