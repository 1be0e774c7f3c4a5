package logging

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultService is the service attribute stamped on every record unless configured.
const DefaultService = "courier-sign"

// Env names the environment variables that override Config.
type Env struct {
	Level     string
	Format    string
	Service   string
	AddSource string
}

// Config selects the level, format and static attributes of service logs.
type Config struct {
	Level     Level  `toml:"level"`
	Format    Format `toml:"format"`
	Service   string `toml:"service"`
	AddSource bool   `toml:"add_source"`
}

// Finalize applies defaults, then env overrides, then validates.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if err := c.loadEnv(env); err != nil {
		return err
	}
	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	if overlay.Service != "" {
		c.Service = overlay.Service
	}
	if overlay.AddSource {
		c.AddSource = true
	}
}

func (c *Config) loadDefaults() {
	if c.Level == "" {
		c.Level = LevelInfo
	}
	if c.Format == "" {
		c.Format = FormatJSON
	}
	if c.Service == "" {
		c.Service = DefaultService
	}
}

func (c *Config) loadEnv(env *Env) error {
	if env == nil {
		return nil
	}
	lookup := func(name string) (string, bool) {
		if name == "" {
			return "", false
		}
		v := os.Getenv(name)
		return v, v != ""
	}

	if v, ok := lookup(env.Level); ok {
		c.Level = Level(v)
	}
	if v, ok := lookup(env.Format); ok {
		c.Format = Format(v)
	}
	if v, ok := lookup(env.Service); ok {
		c.Service = v
	}
	if v, ok := lookup(env.AddSource); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env.AddSource, err)
		}
		c.AddSource = b
	}
	return nil
}

func (c *Config) validate() error {
	if err := c.Level.Validate(); err != nil {
		return err
	}
	return c.Format.Validate()
}
