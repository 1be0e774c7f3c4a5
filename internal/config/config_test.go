package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseTOML = `
shutdown_timeout = "10s"

[server]
port = 9000

[logging]
level = "debug"

[storage]
base_path = "/tmp/courier"

[assembly.signature_rects.KURYE_SOZLESMESI]
x = 60
y = 40
w = 120
h = 50
`

const overlayTOML = `
[server]
port = 9100

[store]
backend = "redis"

[assembly.field_map]
adres = "adres_alani"
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFrom_WithOverlay(t *testing.T) {
	dir := t.TempDir()
	base := writeConfig(t, dir, BaseConfigFile, baseTOML)
	writeConfig(t, dir, "config.staging.toml", overlayTOML)
	t.Setenv(EnvServiceEnv, "staging")

	cfg, err := LoadFrom(base)
	require.NoError(t, err)
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, "/tmp/courier", cfg.Storage.BasePath)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeoutDuration())
	assert.Equal(t, "adres_alani", cfg.Assembly.FieldMap["adres"])
	assert.Equal(t, RectConfig{X: 60, Y: 40, W: 120, H: 50}, cfg.Assembly.SignatureRects["KURYE_SOZLESMESI"])
}

func TestLoadFrom_ShippedConfig(t *testing.T) {
	t.Setenv(EnvServiceEnv, "")

	cfg, err := LoadFrom(filepath.Join("..", "..", BaseConfigFile))
	require.NoError(t, err)
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, RectConfig{X: 80, Y: 50, W: 100, H: 40}, cfg.Assembly.SignatureRect)
	assert.Empty(t, cfg.Assembly.SignatureRects)
	assert.Equal(t, map[string]string{
		"adSoyad":     "firma_adi",
		"email":       "email",
		"tcKimlik":    "vergi_vkn",
		"cepNumarasi": "cep",
		"adres":       "adres",
	}, cfg.Assembly.FieldMap)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestConfig_Finalize_Defaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, "/api", cfg.API.BasePath)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, 15*time.Second, cfg.Source.FetchTimeoutDuration())
	assert.Equal(t, int64(4*1024*1024), cfg.Render.HTMLBodyLimitBytes())
	assert.Equal(t, int64(1024*1024), cfg.Render.ContractBodyLimitBytes())
	assert.Equal(t, int64(500*1024), cfg.Render.SignatureLimitBytes())
	assert.Equal(t, RectConfig{X: 80, Y: 50, W: 100, H: 40}, cfg.Assembly.SignatureRect)
	assert.Equal(t, "firma_adi", cfg.Assembly.FieldMap["adSoyad"])
	assert.Equal(t, "Europe/Istanbul", cfg.Assembly.Location().String())
	assert.False(t, cfg.Assembly.StrictTemplates)
}

func TestConfig_Finalize_Env(t *testing.T) {
	t.Setenv(EnvSourceURL, "http://files.local/paket.pdf")
	t.Setenv(EnvAssemblyStrictTemplates, "true")
	t.Setenv(EnvSourceAllowedHosts, "cdn.local,files.backup")
	t.Setenv("LOGGING_FORMAT", "text")
	t.Setenv("LOGGING_ADD_SOURCE", "true")

	cfg := &Config{}
	require.NoError(t, cfg.Finalize())

	assert.Equal(t, "http://files.local/paket.pdf", cfg.Source.URL)
	assert.Equal(t, []string{"cdn.local", "files.backup"}, cfg.Source.AllowedHosts)
	assert.True(t, cfg.Assembly.StrictTemplates)
	assert.EqualValues(t, "text", cfg.Logging.Format)
	assert.True(t, cfg.Logging.AddSource)
}

func TestConfig_Finalize_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"shutdown timeout", Config{ShutdownTimeout: "soon"}},
		{"port", Config{Server: ServerConfig{Port: 70000}}},
		{"store backend", Config{Store: StoreConfig{Backend: "sqlite"}}},
		{"fetch timeout", Config{Source: SourceConfig{FetchTimeout: "0s"}}},
		{"source url", Config{Source: SourceConfig{URL: "file:///etc/paket.pdf"}}},
		{"render limit", Config{Render: RenderConfig{HTMLBodyLimit: "huge"}}},
		{"timezone", Config{Assembly: AssemblyConfig{Timezone: "Mars/Olympus"}}},
		{"rect", Config{Assembly: AssemblyConfig{SignatureRects: map[string]RectConfig{"X": {W: 0, H: 10}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Finalize())
		})
	}
}

func TestServerConfig_Merge(t *testing.T) {
	base := &ServerConfig{Host: "localhost", Port: 8080, ReadTimeout: "30s", WriteTimeout: "30s"}
	base.Merge(&ServerConfig{Port: 9090, WriteTimeout: "60s"})

	assert.Equal(t, "localhost", base.Host)
	assert.Equal(t, 9090, base.Port)
	assert.Equal(t, "30s", base.ReadTimeout)
	assert.Equal(t, "60s", base.WriteTimeout)
}
