package requests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/courier-sign/internal/catalog"
	"github.com/JaimeStill/courier-sign/pkg/handlers"
	"github.com/JaimeStill/courier-sign/pkg/logging"
	"github.com/JaimeStill/courier-sign/pkg/pagination"
	"github.com/JaimeStill/courier-sign/pkg/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T, maxBody int64) *http.ServeMux {
	t.Helper()
	cfg := pagination.Config{DefaultPageSize: 10, MaxPageSize: 50}
	sys := New(NewMemoryStore(), catalog.Default(), logging.Discard(), cfg, 1<<20)

	mux := http.NewServeMux()
	routes.Register(mux, NewHandler(sys, logging.Discard(), cfg, maxBody).Routes())
	return mux
}

func do(mux http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:41234"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Lifecycle(t *testing.T) {
	mux := newTestMux(t, 1<<20)

	rec := do(mux, "POST", "/requests", CreateCommand{Email: "kurye@example.com", SelectedDocs: []string{"KVKK_AYDINLATMA"}})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Request
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	base := "/requests/" + created.Token

	rec = do(mux, "PUT", base+"/info", map[string]string{"adSoyad": "Ayşe Kaya"})
	require.Equal(t, http.StatusOK, rec.Code)
	var saved Request
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&saved))
	assert.Equal(t, "192.0.2.10", saved.IPAddress)

	rec = do(mux, "POST", base+"/signatures/KVKK_AYDINLATMA", SignCommand{SignaturePNG: pngURL})
	require.Equal(t, http.StatusOK, rec.Code)
	var signed Request
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&signed))
	assert.Equal(t, StatusCompleted, signed.Status)

	rec = do(mux, "GET", "/requests?search=ay%C5%9Fe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page pagination.PageResult[Request]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 1, page.Total)

	rec = do(mux, "DELETE", base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(mux, "GET", base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Errors(t *testing.T) {
	mux := newTestMux(t, 1<<20)

	rec := do(mux, "POST", "/requests", CreateCommand{Email: "kurye@example.com", SelectedDocs: []string{"EHLIYET"}})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Request
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	tests := []struct {
		name   string
		method string
		target string
		body   any
		status int
	}{
		{"invalid email", "POST", "/requests", CreateCommand{Email: "x", SelectedDocs: []string{"EHLIYET"}}, http.StatusBadRequest},
		{"no documents", "POST", "/requests", CreateCommand{Email: "a@b.co"}, http.StatusBadRequest},
		{"unknown request", "POST", "/requests/REQ_NONE/signatures/EHLIYET", SignCommand{FrontImage: pngURL}, http.StatusNotFound},
		{"not selected", "POST", "/requests/" + created.Token + "/signatures/KVKK_AYDINLATMA", SignCommand{SignaturePNG: pngURL}, http.StatusBadRequest},
		{"wrong evidence", "POST", "/requests/" + created.Token + "/signatures/EHLIYET", SignCommand{SignaturePNG: pngURL}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(mux, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var body handlers.ErrorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHandler_ValidationDetails(t *testing.T) {
	mux := newTestMux(t, 1<<20)

	rec := do(mux, "POST", "/requests", CreateCommand{Email: "x", SelectedDocs: []string{"EHLIYET"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"email"`)
}

func TestHandler_BodyTooLarge(t *testing.T) {
	mux := newTestMux(t, 64)

	rec := do(mux, "POST", "/requests", CreateCommand{Email: "kurye@example.com", AdSoyad: strings.Repeat("a", 200), SelectedDocs: []string{"EHLIYET"}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.4:5000"
	assert.Equal(t, "198.51.100.4", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))
}
