package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/courier-sign/internal/infrastructure"
	"github.com/JaimeStill/courier-sign/pkg/lifecycle"
	"github.com/JaimeStill/courier-sign/pkg/logging"
	"github.com/stretchr/testify/assert"
)

func TestBuildRouter_Probes(t *testing.T) {
	infra := &infrastructure.Infrastructure{Lifecycle: lifecycle.New(), Logger: logging.Discard()}
	mux := buildRouter(infra)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get("/readyz").Code)

	infra.Lifecycle.WaitForStartup()
	assert.Equal(t, http.StatusOK, get("/readyz").Code)

	rec := get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
