// pkg/parser/banner_ssh.go
package parser

import "strings"

type sshBannerPlugin struct{}

func (p *sshBannerPlugin) Match(banner string) bool {
	return strings.HasPrefix(banner, "SSH-")
}

// Extract parses banners like "SSH-2.0-OpenSSH_8.9p1 Ubuntu-3ubuntu0.3",
// yielding "OpenSSH_8.9p1" as the software version.
func (p *sshBannerPlugin) Extract(banner string) *ServiceInfo {
	parts := strings.SplitN(banner, "-", 3)
	if len(parts) < 3 {
		return nil
	}
	fields := strings.Fields(parts[2])
	if len(fields) == 0 {
		return nil
	}
	return &ServiceInfo{Name: "ssh", Version: fields[0]}
}

func init() {
	RegisterBanner(&sshBannerPlugin{})
}
