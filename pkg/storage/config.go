package storage

import (
	"fmt"
	"os"
	"strconv"

	"github.com/docker/go-units"
)

// Storage backend names.
const (
	BackendFilesystem = "filesystem"
	BackendMinIO      = "minio"
)

// Config contains blob storage configuration.
type Config struct {
	Backend string `toml:"backend"`

	// BasePath is the root directory for filesystem storage.
	// Default: ".data/blobs"
	BasePath string `toml:"base_path"`

	// MaxUploadSize bounds uploaded documents and embedded data URLs, e.g. "10MB".
	MaxUploadSize    string `toml:"max_upload_size"`
	maxUploadSizeVal int64

	MinIO MinIOConfig `toml:"minio"`
}

// MinIOConfig holds object storage connection settings.
type MinIOConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// Env maps environment variable names for storage configuration.
type Env struct {
	Backend        string
	BasePath       string
	MaxUploadSize  string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    string
}

func (c *Config) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the storage configuration.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if size, err := units.FromHumanSize(overlay.MaxUploadSize); err == nil {
		c.MaxUploadSize = overlay.MaxUploadSize
		c.maxUploadSizeVal = size
	}
	if overlay.MinIO.Endpoint != "" {
		c.MinIO.Endpoint = overlay.MinIO.Endpoint
	}
	if overlay.MinIO.AccessKey != "" {
		c.MinIO.AccessKey = overlay.MinIO.AccessKey
	}
	if overlay.MinIO.SecretKey != "" {
		c.MinIO.SecretKey = overlay.MinIO.SecretKey
	}
	if overlay.MinIO.Bucket != "" {
		c.MinIO.Bucket = overlay.MinIO.Bucket
	}
	if overlay.MinIO.UseSSL {
		c.MinIO.UseSSL = true
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFilesystem
	}
	if c.BasePath == "" {
		c.BasePath = ".data/blobs"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
	if c.MinIO.Bucket == "" {
		c.MinIO.Bucket = "courier-sign"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(dst *string, name string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(&c.Backend, env.Backend)
	set(&c.BasePath, env.BasePath)
	set(&c.MaxUploadSize, env.MaxUploadSize)
	set(&c.MinIO.Endpoint, env.MinIOEndpoint)
	set(&c.MinIO.AccessKey, env.MinIOAccessKey)
	set(&c.MinIO.SecretKey, env.MinIOSecretKey)
	set(&c.MinIO.Bucket, env.MinIOBucket)

	if env.MinIOUseSSL != "" {
		if v, err := strconv.ParseBool(os.Getenv(env.MinIOUseSSL)); err == nil {
			c.MinIO.UseSSL = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendFilesystem:
		if c.BasePath == "" {
			return fmt.Errorf("base_path required")
		}
	case BackendMinIO:
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("minio.endpoint required")
		}
	default:
		return fmt.Errorf("invalid backend %q (must be filesystem or minio)", c.Backend)
	}

	size, err := units.FromHumanSize(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}
	c.maxUploadSizeVal = size

	return nil
}
