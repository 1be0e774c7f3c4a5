package config

import (
	"fmt"
	"os"
)

// Signing request store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

const (
	EnvStoreBackend     = "STORE_BACKEND"
	EnvStoreRedisAddr   = "STORE_REDIS_ADDR"
	EnvStoreRedisPass   = "STORE_REDIS_PASSWORD"
	EnvStoreRedisPrefix = "STORE_REDIS_PREFIX"
)

// StoreConfig selects where signing requests are persisted.
type StoreConfig struct {
	Backend string      `toml:"backend"`
	Redis   RedisConfig `toml:"redis"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

func (c *StoreConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *StoreConfig) Merge(overlay *StoreConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Redis.Addr != "" {
		c.Redis.Addr = overlay.Redis.Addr
	}
	if overlay.Redis.Password != "" {
		c.Redis.Password = overlay.Redis.Password
	}
	if overlay.Redis.DB != 0 {
		c.Redis.DB = overlay.Redis.DB
	}
	if overlay.Redis.Prefix != "" {
		c.Redis.Prefix = overlay.Redis.Prefix
	}
}

func (c *StoreConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = StoreMemory
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "courier-sign:request:"
	}
}

func (c *StoreConfig) loadEnv() {
	if v := os.Getenv(EnvStoreBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvStoreRedisAddr); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(EnvStoreRedisPass); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv(EnvStoreRedisPrefix); v != "" {
		c.Redis.Prefix = v
	}
}

func (c *StoreConfig) validate() error {
	switch c.Backend {
	case StoreMemory, StorePostgres, StoreRedis:
		return nil
	default:
		return fmt.Errorf("invalid backend %q (must be memory, postgres or redis)", c.Backend)
	}
}
