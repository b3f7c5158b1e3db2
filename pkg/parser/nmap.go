// pkg/parser/nmap.go
package parser

import (
	"encoding/xml"
	"regexp"
	"strings"
)

// nmapVersionPattern matches the banner of `nmap --version`.
var nmapVersionPattern = regexp.MustCompile(`Nmap version ([0-9.]+)`)

// XML document shapes for `nmap -oX -` output. Only the attributes the
// result mapping carries are declared.
type nmapRun struct {
	XMLName  xml.Name     `xml:"nmaprun"`
	Scanner  string       `xml:"scanner,attr"`
	Version  string       `xml:"version,attr"`
	Hosts    []nmapHost   `xml:"host"`
	RunStats nmapRunStats `xml:"runstats"`
}

type nmapRunStats struct {
	Finished nmapFinished `xml:"finished"`
}

type nmapFinished struct {
	Time    string `xml:"time,attr"`
	Elapsed string `xml:"elapsed,attr"`
	Summary string `xml:"summary,attr"`
	Exit    string `xml:"exit,attr"`
}

type nmapHost struct {
	Status    nmapStatus     `xml:"status"`
	Addresses []nmapAddress  `xml:"address"`
	Hostnames []nmapHostname `xml:"hostnames>hostname"`
	OSMatches []nmapOSMatch  `xml:"os>osmatch"`
	Ports     []nmapPort     `xml:"ports>port"`
}

type nmapStatus struct {
	State string `xml:"state,attr"`
}

type nmapAddress struct {
	Addr     string `xml:"addr,attr"`
	AddrType string `xml:"addrtype,attr"`
}

type nmapHostname struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type nmapOSMatch struct {
	Name string `xml:"name,attr"`
}

type nmapPort struct {
	Protocol string       `xml:"protocol,attr"`
	PortID   int          `xml:"portid,attr"`
	State    nmapState    `xml:"state"`
	Service  nmapService  `xml:"service"`
	Scripts  []nmapScript `xml:"script"`
}

type nmapState struct {
	State string `xml:"state,attr"`
}

type nmapService struct {
	Name    string `xml:"name,attr"`
	Product string `xml:"product,attr"`
	Version string `xml:"version,attr"`
}

type nmapScript struct {
	ID     string `xml:"id,attr"`
	Output string `xml:"output,attr"`
}

// NmapParser understands `nmap -oX -` XML documents and the plain
// `nmap --version` banner.
type NmapParser struct{}

func (p *NmapParser) Tool() string { return "nmap" }

func (p *NmapParser) Parse(stdout, stderr string) map[string]interface{} {
	if strings.TrimSpace(stdout) == "" {
		return Fallback(stdout, stderr)
	}

	if strings.Contains(stdout, "<nmaprun") {
		var run nmapRun
		if err := xml.Unmarshal([]byte(stdout), &run); err == nil {
			return nmapResult(&run)
		}
	}

	if m := nmapVersionPattern.FindStringSubmatch(stdout); m != nil {
		return map[string]interface{}{
			"parsed":  true,
			"tool":    "nmap",
			"version": m[1],
		}
	}

	return Fallback(stdout, stderr)
}

func nmapResult(run *nmapRun) map[string]interface{} {
	hosts := make([]map[string]interface{}, 0, len(run.Hosts))
	for _, h := range run.Hosts {
		if host := nmapHostResult(h); host != nil {
			hosts = append(hosts, host)
		}
	}

	return map[string]interface{}{
		"parsed": true,
		"tool":   "nmap",
		"scan_info": map[string]interface{}{
			"scanner": run.Scanner,
			"version": run.Version,
			"time":    run.RunStats.Finished.Time,
			"elapsed": run.RunStats.Finished.Elapsed,
			"exit":    run.RunStats.Finished.Exit,
			"summary": run.RunStats.Finished.Summary,
		},
		"hosts": hosts,
	}
}

func nmapHostResult(h nmapHost) map[string]interface{} {
	var ip, mac string
	for _, addr := range h.Addresses {
		switch addr.AddrType {
		case "ipv4":
			if ip == "" {
				ip = addr.Addr
			}
		case "mac":
			mac = addr.Addr
		}
	}
	// A host entry without an IPv4 address carries nothing actionable.
	if ip == "" {
		return nil
	}

	var hostname string
	for _, hn := range h.Hostnames {
		if hn.Type == "user" {
			hostname = hn.Name
			break
		}
	}

	var osName string
	if len(h.OSMatches) > 0 {
		osName = h.OSMatches[0].Name
	}

	status := "unknown"
	switch h.Status.State {
	case "up", "down":
		status = h.Status.State
	}

	ports := make([]map[string]interface{}, 0, len(h.Ports))
	for _, p := range h.Ports {
		if p.PortID == 0 {
			continue
		}
		ports = append(ports, nmapPortResult(p))
	}

	return map[string]interface{}{
		"ip_address":  ip,
		"hostname":    hostname,
		"os":          osName,
		"status":      status,
		"mac_address": mac,
		"open_ports":  ports,
	}
}

func nmapPortResult(p nmapPort) map[string]interface{} {
	version := p.Service.Product
	if p.Service.Version != "" {
		version += " " + p.Service.Version
	}
	version = strings.TrimSpace(version)

	var banner string
	for _, script := range p.Scripts {
		if script.ID == "banner" {
			banner = script.Output
			break
		}
	}

	service := p.Service.Name
	if service == "" && banner != "" {
		if info := IdentifyService(banner); info != nil {
			service = info.Name
			if version == "" {
				version = strings.TrimSpace(info.Version)
			}
		}
	}

	state := p.State.State
	if state == "" {
		state = "unknown"
	}

	return map[string]interface{}{
		"port":     p.PortID,
		"protocol": p.Protocol,
		"service":  service,
		"version":  version,
		"state":    state,
		"banner":   banner,
	}
}

func init() {
	Register(&NmapParser{})
}
