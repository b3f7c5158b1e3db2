// pkg/parser/banner_http.go
package parser

import (
	"regexp"
	"strings"
)

// httpServerPattern splits a Server header value like "nginx/1.18.0" or
// "Apache 2.4.52" into product and version.
var httpServerPattern = regexp.MustCompile(`([a-zA-Z0-9._-]+)[/ ]?([0-9.a-zA-Z_-]*)`)

type httpBannerPlugin struct{}

func (p *httpBannerPlugin) Match(banner string) bool {
	return strings.Contains(strings.ToLower(banner), "server:")
}

func (p *httpBannerPlugin) Extract(banner string) *ServiceInfo {
	for _, line := range strings.Split(banner, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToLower(line), "server:") {
			continue
		}
		_, value, _ := strings.Cut(line, ":")
		m := httpServerPattern.FindStringSubmatch(strings.TrimSpace(value))
		if m == nil {
			continue
		}
		return &ServiceInfo{Name: m[1], Version: m[2]}
	}
	return nil
}

func init() {
	RegisterBanner(&httpBannerPlugin{})
}
