package requests

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest(token string, created time.Time) *Request {
	return &Request{
		Token:        token,
		Email:        "kurye@example.com",
		SelectedDocs: []string{"KVKK_AYDINLATMA", "KKD_TESLIM_TUTANAGI"},
		Signatures: map[string]Signature{
			"KKD_TESLIM_TUTANAGI": {
				DocCode:  "KKD_TESLIM_TUTANAGI",
				SignedAt: created.Add(time.Hour),
				FormData: &FormData{KkdRows: []int{1, 4}},
			},
		},
		Status:    StatusPartial,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// exerciseStore runs the behaviour every Store implementation shares.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	_, err := store.Get(ctx, "REQ_NONE")
	assert.ErrorIs(t, err, ErrNotFound)

	older := sampleRequest("REQ_A", base)
	newer := sampleRequest("REQ_B", base.Add(time.Minute))
	require.NoError(t, store.Put(ctx, older))
	require.NoError(t, store.Put(ctx, newer))

	got, err := store.Get(ctx, "REQ_A")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, got.Signatures["KKD_TESLIM_TUTANAGI"].FormData.KkdRows)
	assert.True(t, got.CreatedAt.Equal(base))

	got.Status = StatusCompleted
	require.NoError(t, store.Put(ctx, got))

	again, err := store.Get(ctx, "REQ_A")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, again.Status)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "REQ_B", all[0].Token)
	assert.Equal(t, "REQ_A", all[1].Token)

	require.NoError(t, store.Delete(ctx, "REQ_A"))
	assert.ErrorIs(t, store.Delete(ctx, "REQ_A"), ErrNotFound)

	all, err = store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, sampleRequest("REQ_A", time.Now())))

	got, err := store.Get(ctx, "REQ_A")
	require.NoError(t, err)
	got.Signatures["X"] = Signature{}
	got.Signatures["KKD_TESLIM_TUTANAGI"].FormData.KkdRows[0] = 9

	fresh, err := store.Get(ctx, "REQ_A")
	require.NoError(t, err)
	assert.Len(t, fresh.Signatures, 1)
	assert.Equal(t, 1, fresh.Signatures["KKD_TESLIM_TUTANAGI"].FormData.KkdRows[0])
}

func TestRedisStore(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer client.Close()

	exerciseStore(t, NewRedisStore(client, "test:request:"))
	assert.True(t, m.Exists("test:request:REQ_B"))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("COURIER_SIGN_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("COURIER_SIGN_TEST_DATABASE_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	_, err = db.Exec(`TRUNCATE signing_requests`)
	require.NoError(t, err)

	exerciseStore(t, NewPostgresStore(db))
}
