package proxy

import (
	"errors"
	"math/rand"
	"net/http"
	"net/url"

	"github.com/williampepple1/product-page-scraper/internal/config"
)

// ErrNoHost is returned for proxy entries without a host
var ErrNoHost = errors.New("proxy url has no host")

// Manager handles proxy configuration and rotation
type Manager struct {
	Config *config.ProxyConfig
}

// NewManager creates a new proxy manager
func NewManager(config *config.ProxyConfig) *Manager {
	return &Manager{
		Config: config,
	}
}

// GetProxyURL returns a proxy URL from the configuration, or nil when
// proxies are disabled
func (m *Manager) GetProxyURL() (*url.URL, error) {
	if m == nil || m.Config == nil || !m.Config.Enabled || len(m.Config.List) == 0 {
		return nil, nil
	}

	proxyStr := m.Config.List[0]
	if m.Config.Rotate && len(m.Config.List) > 1 {
		proxyStr = m.Config.List[rand.Intn(len(m.Config.List))]
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, err
	}
	if proxyURL.Host == "" {
		return nil, ErrNoHost
	}

	if m.Config.Auth.Username != "" && m.Config.Auth.Password != "" {
		proxyURL.User = url.UserPassword(m.Config.Auth.Username, m.Config.Auth.Password)
	}

	return proxyURL, nil
}

// Server returns the proxy as scheme://host:port for browser launch flags.
// Browsers take credentials separately, so they are stripped.
func (m *Manager) Server() (string, error) {
	proxyURL, err := m.GetProxyURL()
	if err != nil || proxyURL == nil {
		return "", err
	}
	return proxyURL.Scheme + "://" + proxyURL.Host, nil
}

// ApplyToTransport applies the proxy to an HTTP transport
func (m *Manager) ApplyToTransport(transport *http.Transport) (string, error) {
	proxyURL, err := m.GetProxyURL()
	if err != nil {
		return "", err
	}

	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
		return proxyURL.Redacted(), nil
	}

	return "", nil
}
