package requests

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/courier-sign/internal/catalog"
	"github.com/JaimeStill/courier-sign/internal/dataurl"
	"github.com/JaimeStill/courier-sign/pkg/logging"
	"github.com/JaimeStill/courier-sign/pkg/pagination"
	"github.com/JaimeStill/courier-sign/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("\x89PNG\r\n\x1a\nfake"))
	pdfURL = dataurl.PDFPrefix + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake"))
)

func newTestSystem(t *testing.T) (*system, Store) {
	t.Helper()

	store := NewMemoryStore()
	sys := New(store, catalog.Default(), logging.Discard(), pagination.Config{DefaultPageSize: 10, MaxPageSize: 50}, 1<<20).(*system)

	clock := time.Date(2026, 2, 17, 9, 0, 0, 0, time.UTC)
	sys.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return sys, store
}

func create(t *testing.T, sys System, docs ...string) *Request {
	t.Helper()
	req, err := sys.Create(context.Background(), CreateCommand{Email: "kurye@example.com", AdSoyad: "Ayşe Kaya", SelectedDocs: docs})
	require.NoError(t, err)
	return req
}

func TestCreate(t *testing.T) {
	sys, store := newTestSystem(t)

	req := create(t, sys, "KVKK_AYDINLATMA", "VERGI_LEVHASI", "KVKK_AYDINLATMA")

	assert.True(t, strings.HasPrefix(req.Token, TokenPrefix))
	assert.Len(t, req.Token, len(TokenPrefix)+26)
	assert.Equal(t, []string{"KVKK_AYDINLATMA", "VERGI_LEVHASI"}, req.SelectedDocs)
	assert.Equal(t, StatusPending, req.Status)
	assert.Empty(t, req.Signatures)

	stored, err := store.Get(context.Background(), req.Token)
	require.NoError(t, err)
	assert.Equal(t, req.Token, stored.Token)
}

func TestCreate_Invalid(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()

	_, err := sys.Create(ctx, CreateCommand{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrNoDocuments)

	_, err = sys.Create(ctx, CreateCommand{Email: "not-an-email", SelectedDocs: []string{"EHLIYET"}})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = sys.Create(ctx, CreateCommand{Email: "a@b.co", SelectedDocs: []string{"EHLIYET", "NOPE"}})
	assert.ErrorIs(t, err, ErrUnknownDocument)
}

func TestSign_StatusProgression(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()
	req := create(t, sys, "KVKK_AYDINLATMA", "GIZLILIK_SOZLESMESI")

	got, err := sys.Sign(ctx, req.Token, "KVKK_AYDINLATMA", SignCommand{SignaturePNG: pngURL, ConsentChecked: true})
	require.NoError(t, err)
	assert.Equal(t, StatusPartial, got.Status)

	got, err = sys.Sign(ctx, req.Token, "GIZLILIK_SOZLESMESI", SignCommand{SignaturePNG: pngURL})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.LessOrEqual(t, len(got.Signatures), len(got.SelectedDocs))
}

func TestSign_OverwritesPreviousSignature(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()
	req := create(t, sys, "KKD_TESLIM_TUTANAGI", "EHLIYET")

	first, err := sys.Sign(ctx, req.Token, "KKD_TESLIM_TUTANAGI", SignCommand{SignaturePNG: pngURL, FormData: &FormData{KkdRows: []int{1}}})
	require.NoError(t, err)

	second, err := sys.Sign(ctx, req.Token, "KKD_TESLIM_TUTANAGI", SignCommand{SignaturePNG: pngURL, FormData: &FormData{KkdRows: []int{2, 3}}})
	require.NoError(t, err)

	require.Len(t, second.Signatures, 1)
	sig := second.Signatures["KKD_TESLIM_TUTANAGI"]
	assert.Equal(t, []int{2, 3}, sig.FormData.KkdRows)
	assert.True(t, sig.SignedAt.After(first.Signatures["KKD_TESLIM_TUTANAGI"].SignedAt))
	assert.Equal(t, StatusPartial, second.Status)
}

func TestSign_Rejections(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()
	req := create(t, sys, "KVKK_AYDINLATMA", "KIMLIK_KARTI", "VERGI_LEVHASI", "IKAMETGAH")

	tests := []struct {
		name string
		code string
		cmd  SignCommand
		want error
	}{
		{"not selected", "SGK_BEYANI", SignCommand{SignaturePNG: pngURL}, ErrNotSelected},
		{"unknown code", "NOPE", SignCommand{SignaturePNG: pngURL}, ErrUnknownDocument},
		{"signature on identity card", "KIMLIK_KARTI", SignCommand{SignaturePNG: pngURL, FrontImage: pngURL}, ErrNotAccepted},
		{"photo on contract", "KVKK_AYDINLATMA", SignCommand{SignaturePNG: pngURL, FrontImage: pngURL}, ErrNotAccepted},
		{"image as tax plate", "VERGI_LEVHASI", SignCommand{TaxPlatePDF: pngURL}, ErrNotAccepted},
		{"nothing supplied", "KVKK_AYDINLATMA", SignCommand{ConsentChecked: true}, ErrMissingEvidence},
		{"malformed upload", "IKAMETGAH", SignCommand{UploadedDocument: "data:image/png;base64,###"}, ErrMalformed},
		{"row out of range", "KVKK_AYDINLATMA", SignCommand{SignaturePNG: pngURL, FormData: &FormData{KkdRows: []int{11}}}, validation.ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sys.Sign(ctx, req.Token, tt.code, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := sys.Find(ctx, req.Token)
	require.NoError(t, err)
	assert.Empty(t, got.Signatures)
	assert.Equal(t, StatusPending, got.Status)
}

func TestSign_UploadKinds(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()
	req := create(t, sys, "KIMLIK_KARTI", "VERGI_LEVHASI", "ADLI_SICIL")

	_, err := sys.Sign(ctx, req.Token, "KIMLIK_KARTI", SignCommand{FrontImage: pngURL, BackImage: pngURL})
	require.NoError(t, err)

	bare := strings.TrimPrefix(pdfURL, dataurl.PDFPrefix)
	_, err = sys.Sign(ctx, req.Token, "VERGI_LEVHASI", SignCommand{TaxPlatePDF: bare})
	require.NoError(t, err)

	got, err := sys.Sign(ctx, req.Token, "ADLI_SICIL", SignCommand{UploadedDocument: pngURL})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestSign_TooLarge(t *testing.T) {
	sys, _ := newTestSystem(t)
	sys.maxUpload = 8
	req := create(t, sys, "KVKK_AYDINLATMA")

	_, err := sys.Sign(context.Background(), req.Token, "KVKK_AYDINLATMA", SignCommand{SignaturePNG: pngURL})
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSaveInfo(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()
	req := create(t, sys, "KVKK_AYDINLATMA")

	name := "  Ayşe Yılmaz "
	adres := "Kadıköy, İstanbul"
	got, err := sys.SaveInfo(ctx, req.Token, SaveInfoCommand{AdSoyad: &name, Adres: &adres, IPAddress: "10.0.0.7"})
	require.NoError(t, err)

	assert.Equal(t, "Ayşe Yılmaz", got.AdSoyad)
	assert.Equal(t, adres, got.Adres)
	assert.Equal(t, "kurye@example.com", got.Email, "nil fields are untouched")
	assert.Equal(t, "10.0.0.7", got.IPAddress)
	require.NotNil(t, got.SavedAt)
	assert.True(t, got.UpdatedAt.After(req.UpdatedAt))

	bad := "bad"
	_, err = sys.SaveInfo(ctx, req.Token, SaveInfoCommand{Email: &bad})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = sys.SaveInfo(ctx, "REQ_MISSING", SaveInfoCommand{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()

	first := create(t, sys, "KVKK_AYDINLATMA")
	second := create(t, sys, "EHLIYET")

	result, err := sys.List(ctx, pagination.PageRequest{})
	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	assert.Equal(t, second.Token, result.Data[0].Token)
	assert.Equal(t, first.Token, result.Data[1].Token)

	term := "yok"
	result, err = sys.List(ctx, pagination.PageRequest{Search: &term})
	require.NoError(t, err)
	assert.Empty(t, result.Data)
}

func TestDelete(t *testing.T) {
	sys, _ := newTestSystem(t)
	ctx := context.Background()
	req := create(t, sys, "KVKK_AYDINLATMA")

	require.NoError(t, sys.Delete(ctx, req.Token))
	_, err := sys.Find(ctx, req.Token)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, sys.Delete(ctx, req.Token), ErrNotFound)
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		selected, signed int
		want             Status
	}{
		{3, 0, StatusPending},
		{3, 1, StatusPartial},
		{3, 3, StatusCompleted},
		{0, 0, StatusPending},
	}

	for _, tt := range tests {
		r := &Request{SelectedDocs: make([]string, tt.selected), Signatures: map[string]Signature{}}
		for i := range tt.signed {
			r.Signatures[string(rune('A'+i))] = Signature{}
		}
		assert.Equal(t, tt.want, r.DeriveStatus())
	}
}
