package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"
)

const (
	EnvAssemblyTimezone        = "ASSEMBLY_TIMEZONE"
	EnvAssemblyStrictTemplates = "ASSEMBLY_STRICT_TEMPLATES"
)

// RectConfig is a rectangle in PDF points with a bottom-left origin.
type RectConfig struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
	W float64 `toml:"w"`
	H float64 `toml:"h"`
}

// AssemblyConfig holds the settings the artifact generators read.
type AssemblyConfig struct {
	Timezone        string                `toml:"timezone"`
	StrictTemplates bool                  `toml:"strict_templates"`
	FieldMap        map[string]string     `toml:"field_map"`
	SignatureRect   RectConfig            `toml:"signature_rect"`
	SignatureRects  map[string]RectConfig `toml:"signature_rects"`

	location *time.Location
}

// Location returns the loaded timezone used for dates printed on artifacts.
func (c *AssemblyConfig) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

func (c *AssemblyConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *AssemblyConfig) Merge(overlay *AssemblyConfig) {
	if overlay.Timezone != "" {
		c.Timezone = overlay.Timezone
	}
	if overlay.StrictTemplates {
		c.StrictTemplates = true
	}
	if len(overlay.FieldMap) > 0 {
		if c.FieldMap == nil {
			c.FieldMap = make(map[string]string, len(overlay.FieldMap))
		}
		for k, v := range overlay.FieldMap {
			c.FieldMap[k] = v
		}
	}
	if overlay.SignatureRect != (RectConfig{}) {
		c.SignatureRect = overlay.SignatureRect
	}
	if len(overlay.SignatureRects) > 0 {
		if c.SignatureRects == nil {
			c.SignatureRects = make(map[string]RectConfig, len(overlay.SignatureRects))
		}
		for k, v := range overlay.SignatureRects {
			c.SignatureRects[k] = v
		}
	}
}

func (c *AssemblyConfig) loadDefaults() {
	if c.Timezone == "" {
		c.Timezone = "Europe/Istanbul"
	}
	if len(c.FieldMap) == 0 {
		c.FieldMap = map[string]string{
			"adSoyad":     "firma_adi",
			"email":       "email",
			"tcKimlik":    "vergi_vkn",
			"cepNumarasi": "cep",
			"adres":       "adres",
		}
	}
	if c.SignatureRect == (RectConfig{}) {
		c.SignatureRect = RectConfig{X: 80, Y: 50, W: 100, H: 40}
	}
}

func (c *AssemblyConfig) loadEnv() {
	if v := os.Getenv(EnvAssemblyTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvAssemblyStrictTemplates); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.StrictTemplates = b
		}
	}
}

func (c *AssemblyConfig) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	c.location = loc

	check := func(name string, r RectConfig) error {
		if r.W <= 0 || r.H <= 0 {
			return fmt.Errorf("%s: width and height must be positive", name)
		}
		return nil
	}
	if err := check("signature_rect", c.SignatureRect); err != nil {
		return err
	}
	for code, r := range c.SignatureRects {
		if err := check("signature_rects."+code, r); err != nil {
			return err
		}
	}
	return nil
}
