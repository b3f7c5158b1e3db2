// pkg/parser/banner.go
package parser

// ServiceInfo names a service identified from a raw banner.
type ServiceInfo struct {
	Name    string
	Version string
}

// BannerPlugin identifies a service from a single captured banner, such as
// the output of nmap's banner script.
type BannerPlugin interface {
	Match(banner string) bool
	Extract(banner string) *ServiceInfo
}

var bannerPlugins []BannerPlugin

// RegisterBanner adds a banner plugin. Plugins are consulted in registration
// order and the first successful extraction wins.
func RegisterBanner(p BannerPlugin) {
	bannerPlugins = append(bannerPlugins, p)
}

// IdentifyService runs banner through the registered plugins. It returns nil
// when no plugin recognizes the banner.
func IdentifyService(banner string) *ServiceInfo {
	for _, p := range bannerPlugins {
		if !p.Match(banner) {
			continue
		}
		if info := p.Extract(banner); info != nil {
			return info
		}
	}
	return nil
}
