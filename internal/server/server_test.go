package server

import (
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/JaimeStill/courier-sign/internal/config"
	"github.com/JaimeStill/courier-sign/pkg/lifecycle"
	"github.com/JaimeStill/courier-sign/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_StartAndShutdown(t *testing.T) {
	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: 0, ReadTimeout: "5s", WriteTimeout: "5s", ShutdownTimeout: "5s"}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})

	lc := lifecycle.New()
	srv := New(cfg, mux, logging.Discard())
	require.NoError(t, srv.Start(lc))

	resp, err := http.Get("http://" + srv.Addr() + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	require.NoError(t, lc.Shutdown(5*time.Second))

	_, err = http.Get("http://" + srv.Addr() + "/ping")
	assert.Error(t, err)
}

func TestServer_BindFailure(t *testing.T) {
	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: "1s"}

	lc := lifecycle.New()
	first := New(cfg, http.NewServeMux(), logging.Discard())
	require.NoError(t, first.Start(lc))
	defer lc.Shutdown(time.Second)

	_, portStr, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	taken := *cfg
	taken.Port = port

	second := New(&taken, http.NewServeMux(), logging.Discard())
	assert.Error(t, second.Start(lifecycle.New()))
}
