// pkg/netutil/netutil.go
// Package netutil provides helpers for expanding operator-supplied target
// and port expressions into concrete values.
package netutil

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// expansionLimit caps how many addresses a single expression may expand to,
// protecting the process from accidental /8 style inputs.
const expansionLimit = 65536

// ExpandTargets expands a list of target expressions (single IPs, hostnames,
// CIDR blocks, last-octet ranges like "10.0.0.5-20") into a deduplicated
// list of individual targets. Invalid expressions are skipped; the first
// failure is reported alongside the valid remainder.
func ExpandTargets(targets []string) ([]string, error) {
	var (
		expanded []string
		firstErr error
	)

	for _, raw := range targets {
		target := strings.TrimSpace(raw)
		if target == "" {
			continue
		}

		switch {
		case strings.Contains(target, "/"):
			ips, err := expandCIDR(target)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			expanded = append(expanded, ips...)

		case strings.Contains(target, "-"):
			ips, err := expandOctetRange(target)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			expanded = append(expanded, ips...)

		default:
			expanded = append(expanded, target)
		}
	}

	return dedupe(expanded), firstErr
}

// expandCIDR expands a CIDR block, skipping the network and broadcast
// addresses for IPv4 masks narrower than /31.
func expandCIDR(target string) ([]string, error) {
	ip, ipNet, err := net.ParseCIDR(target)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR %q: %w", target, err)
	}

	ones, bits := ipNet.Mask.Size()
	skipEdges := bits == 32 && ones > 0 && ones < 31

	var broadcast net.IP
	if skipEdges {
		broadcast = make(net.IP, net.IPv4len)
		for i := 0; i < net.IPv4len; i++ {
			broadcast[i] = ipNet.IP.To4()[i] | ^ipNet.Mask[i]
		}
	}

	var out []string
	for cur := ip.Mask(ipNet.Mask); ipNet.Contains(cur); incIP(cur) {
		if skipEdges && (cur.Equal(ipNet.IP) || cur.Equal(broadcast)) {
			continue
		}
		cp := make(net.IP, len(cur))
		copy(cp, cur)
		out = append(out, cp.String())
		if len(out) >= expansionLimit {
			return out, fmt.Errorf("CIDR %q expands beyond %d addresses, truncated", target, expansionLimit)
		}
	}
	return out, nil
}

// expandOctetRange expands a last-octet range such as "192.168.1.10-20".
// A plain hostname containing a dash passes through unchanged.
func expandOctetRange(target string) ([]string, error) {
	parts := strings.SplitN(target, "-", 2)
	base := strings.TrimSpace(parts[0])
	endStr := strings.TrimSpace(parts[1])

	if net.ParseIP(base) == nil {
		// Not an IP on the left side: treat the whole expression as a hostname.
		return []string{target}, nil
	}

	octets := strings.Split(base, ".")
	if len(octets) != 4 {
		return []string{target}, nil
	}

	start, errStart := cast.ToIntE(octets[3])
	end, errEnd := cast.ToIntE(endStr)
	if errStart != nil || errEnd != nil {
		return nil, fmt.Errorf("invalid range %q", target)
	}
	if end < start || start < 0 || end > 255 {
		return nil, fmt.Errorf("invalid range %q: bounds out of order", target)
	}

	prefix := strings.Join(octets[:3], ".")
	out := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, fmt.Sprintf("%s.%d", prefix, i))
	}
	return out, nil
}

// incIP increments an IP address in place (works for IPv4 and IPv6).
func incIP(ip net.IP) {
	for j := len(ip) - 1; j >= 0; j-- {
		ip[j]++
		if ip[j] > 0 {
			break
		}
	}
}

// dedupe removes duplicates and filters out multicast, unspecified and
// link-local addresses. Hostnames (unparseable as IPs) are kept as-is.
func dedupe(targets []string) []string {
	seen := make(map[string]bool, len(targets))
	var out []string
	for _, t := range targets {
		if t == "" || seen[t] {
			continue
		}
		if ip := net.ParseIP(t); ip != nil {
			if ip.IsMulticast() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
				continue
			}
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ParsePortString parses a port expression like "80,443,8000-8010" into a
// sorted, deduplicated list of port numbers. Elements may be single ports or
// dash-separated ranges; whitespace around elements is tolerated. Ports must
// fall within 1-65535.
func ParsePortString(s string) ([]int, error) {
	out := []int{}
	seen := make(map[int]bool)

	for _, element := range strings.Split(s, ",") {
		element = strings.TrimSpace(element)
		if element == "" {
			continue
		}

		var lo, hi int
		if strings.Contains(element, "-") {
			parts := strings.SplitN(element, "-", 2)
			loVal, errLo := cast.ToIntE(strings.TrimSpace(parts[0]))
			hiVal, errHi := cast.ToIntE(strings.TrimSpace(parts[1]))
			if errLo != nil || errHi != nil {
				return nil, fmt.Errorf("invalid port range %q", element)
			}
			lo, hi = loVal, hiVal
			if hi < lo {
				return nil, fmt.Errorf("invalid port range %q: start greater than end", element)
			}
		} else {
			p, err := cast.ToIntE(element)
			if err != nil {
				return nil, fmt.Errorf("invalid port %q", element)
			}
			lo, hi = p, p
		}

		if lo < 1 || hi > 65535 {
			return nil, fmt.Errorf("port out of range in %q", element)
		}
		for p := lo; p <= hi; p++ {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}

	sort.Ints(out)
	return out, nil
}
