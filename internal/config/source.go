package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	EnvSourceURL          = "SOURCE_URL"
	EnvSourceFetchTimeout = "SOURCE_FETCH_TIMEOUT"
	EnvSourceCacheTTL     = "SOURCE_CACHE_TTL"
	EnvSourceAllowedHosts = "SOURCE_ALLOWED_HOSTS"
)

// SourceConfig locates the shared source document that page-range definitions point into.
type SourceConfig struct {
	URL          string `toml:"url"`
	FetchTimeout string `toml:"fetch_timeout"`
	CacheTTL     string `toml:"cache_ttl"`
	// AllowedHosts lists hosts, beyond the host of URL, that inspection may fetch from.
	AllowedHosts []string `toml:"allowed_hosts"`
}

func (c *SourceConfig) FetchTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.FetchTimeout)
	return d
}

func (c *SourceConfig) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

func (c *SourceConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *SourceConfig) Merge(overlay *SourceConfig) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.FetchTimeout != "" {
		c.FetchTimeout = overlay.FetchTimeout
	}
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}
	if len(overlay.AllowedHosts) > 0 {
		c.AllowedHosts = overlay.AllowedHosts
	}
}

func (c *SourceConfig) loadDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:8080/static/kurye-sozlesme-paketi.pdf"
	}
	if c.FetchTimeout == "" {
		c.FetchTimeout = "15s"
	}
	if c.CacheTTL == "" {
		c.CacheTTL = "5m"
	}
}

func (c *SourceConfig) loadEnv() {
	if v := os.Getenv(EnvSourceURL); v != "" {
		c.URL = v
	}
	if v := os.Getenv(EnvSourceFetchTimeout); v != "" {
		c.FetchTimeout = v
	}
	if v := os.Getenv(EnvSourceCacheTTL); v != "" {
		c.CacheTTL = v
	}
	if v := os.Getenv(EnvSourceAllowedHosts); v != "" {
		c.AllowedHosts = strings.Split(v, ",")
	}
}

func (c *SourceConfig) validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid url %q", c.URL)
	}
	if d, err := time.ParseDuration(c.FetchTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid fetch_timeout %q", c.FetchTimeout)
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl: %w", err)
	}
	return nil
}
