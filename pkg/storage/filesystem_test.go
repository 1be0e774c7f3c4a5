package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/courier-sign/pkg/lifecycle"
	"github.com/JaimeStill/courier-sign/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStarted(t *testing.T) (System, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "blobs")
	store, err := NewFilesystem(dir, logging.Discard())
	require.NoError(t, err)

	lc := lifecycle.New()
	require.NoError(t, store.Start(lc))
	lc.WaitForStartup()

	return store, dir
}

func TestNewFilesystem_EmptyBasePath(t *testing.T) {
	_, err := NewFilesystem("", logging.Discard())
	assert.Error(t, err)
}

func TestFilesystem_Start_CreatesDirectory(t *testing.T) {
	_, dir := newStarted(t)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFilesystem_StoreRetrieveDelete(t *testing.T) {
	store, dir := newStarted(t)
	ctx := context.Background()
	key := "artifacts/REQ_1/Ahmet Yilmaz 123.pdf"

	require.NoError(t, store.Store(ctx, key, []byte("first")))
	require.NoError(t, store.Store(ctx, key, []byte("second")))

	data, err := store.Retrieve(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	ok, err := store.Validate(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Retrieve(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err = store.Validate(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = os.Stat(filepath.Join(dir, "artifacts"))
	assert.True(t, os.IsNotExist(err), "empty parents are pruned")

	assert.NoError(t, store.Delete(ctx, key), "deleting a missing key is not an error")
}

func TestFilesystem_InvalidKeys(t *testing.T) {
	store, _ := newStarted(t)
	ctx := context.Background()

	for _, key := range []string{"", "../escape", "/abs/path", "a/../../b", "."} {
		t.Run(key, func(t *testing.T) {
			assert.ErrorIs(t, store.Store(ctx, key, []byte("x")), ErrInvalidKey)
			_, err := store.Retrieve(ctx, key)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestNew_Backends(t *testing.T) {
	s, err := New(&Config{Backend: BackendFilesystem, BasePath: t.TempDir()}, logging.Discard())
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = New(&Config{Backend: "tape"}, logging.Discard())
	assert.Error(t, err)

	_, err = New(&Config{Backend: BackendMinIO}, logging.Discard())
	assert.Error(t, err, "minio requires an endpoint")

	s, err = New(&Config{Backend: BackendMinIO, MinIO: MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}}, logging.Discard())
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestConfig_Finalize(t *testing.T) {
	t.Setenv("TEST_STORAGE_BACKEND", "minio")
	t.Setenv("TEST_MINIO_ENDPOINT", "minio:9000")
	t.Setenv("TEST_MINIO_SSL", "true")

	cfg := Config{}
	require.NoError(t, cfg.Finalize(&Env{
		Backend:       "TEST_STORAGE_BACKEND",
		MinIOEndpoint: "TEST_MINIO_ENDPOINT",
		MinIOUseSSL:   "TEST_MINIO_SSL",
	}))

	assert.Equal(t, BackendMinIO, cfg.Backend)
	assert.Equal(t, "minio:9000", cfg.MinIO.Endpoint)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "courier-sign", cfg.MinIO.Bucket)
	assert.Equal(t, int64(10_000_000), cfg.MaxUploadSizeBytes())
}

func TestConfig_Finalize_Invalid(t *testing.T) {
	assert.Error(t, (&Config{Backend: "tape"}).Finalize(nil))
	assert.Error(t, (&Config{MaxUploadSize: "lots"}).Finalize(nil))
}
