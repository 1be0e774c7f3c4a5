package config

import (
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"
)

const (
	EnvRenderURL     = "RENDER_URL"
	EnvRenderTimeout = "RENDER_TIMEOUT"
)

// RenderConfig points at the remote HTML to PDF service and bounds the bodies sent to it.
type RenderConfig struct {
	URL               string `toml:"url"`
	Timeout           string `toml:"timeout"`
	HTMLBodyLimit     string `toml:"html_body_limit"`
	ContractBodyLimit string `toml:"contract_body_limit"`
	SignatureLimit    string `toml:"signature_limit"`
	DPI               int    `toml:"dpi"`

	htmlBodyLimitVal     int64
	contractBodyLimitVal int64
	signatureLimitVal    int64
}

func (c *RenderConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *RenderConfig) HTMLBodyLimitBytes() int64     { return c.htmlBodyLimitVal }
func (c *RenderConfig) ContractBodyLimitBytes() int64 { return c.contractBodyLimitVal }
func (c *RenderConfig) SignatureLimitBytes() int64    { return c.signatureLimitVal }

func (c *RenderConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *RenderConfig) Merge(overlay *RenderConfig) {
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.HTMLBodyLimit != "" {
		c.HTMLBodyLimit = overlay.HTMLBodyLimit
	}
	if overlay.ContractBodyLimit != "" {
		c.ContractBodyLimit = overlay.ContractBodyLimit
	}
	if overlay.SignatureLimit != "" {
		c.SignatureLimit = overlay.SignatureLimit
	}
	if overlay.DPI != 0 {
		c.DPI = overlay.DPI
	}
}

func (c *RenderConfig) loadDefaults() {
	if c.URL == "" {
		c.URL = "http://localhost:3000/html-to-pdf"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.HTMLBodyLimit == "" {
		c.HTMLBodyLimit = "4MB"
	}
	if c.ContractBodyLimit == "" {
		c.ContractBodyLimit = "1MB"
	}
	if c.SignatureLimit == "" {
		c.SignatureLimit = "500KB"
	}
	if c.DPI == 0 {
		c.DPI = 96
	}
}

func (c *RenderConfig) loadEnv() {
	if v := os.Getenv(EnvRenderURL); v != "" {
		c.URL = v
	}
	if v := os.Getenv(EnvRenderTimeout); v != "" {
		c.Timeout = v
	}
}

func (c *RenderConfig) validate() error {
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	limits := []struct {
		name string
		raw  string
		dst  *int64
	}{
		{"html_body_limit", c.HTMLBodyLimit, &c.htmlBodyLimitVal},
		{"contract_body_limit", c.ContractBodyLimit, &c.contractBodyLimitVal},
		{"signature_limit", c.SignatureLimit, &c.signatureLimitVal},
	}
	for _, l := range limits {
		n, err := units.RAMInBytes(l.raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", l.name, err)
		}
		if n <= 0 {
			return fmt.Errorf("%s must be positive", l.name)
		}
		*l.dst = n
	}

	if c.DPI < 36 || c.DPI > 600 {
		return fmt.Errorf("dpi must be between 36 and 600")
	}
	return nil
}
