// Package api assembles the JSON API module: domain systems, their routes and the
// middleware applied to every API request.
package api

import (
	"net/http"
	"strings"

	"github.com/JaimeStill/courier-sign/internal/config"
	"github.com/JaimeStill/courier-sign/internal/infrastructure"
	"github.com/JaimeStill/courier-sign/pkg/middleware"
)

// Module is the API handler together with the path prefix it is mounted under.
type Module struct {
	Prefix  string
	Handler http.Handler
}

// NewModule builds the API module. Routes are registered without the base path, which is
// stripped after the middleware runs.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) *Module {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime, cfg)

	mux := http.NewServeMux()
	registerRoutes(mux, runtime, domain, cfg)

	chain := middleware.New()
	chain.Use(middleware.TrimSlash())
	chain.Use(middleware.CORS(&cfg.API.CORS))
	chain.Use(middleware.Logger(runtime.Logger))

	prefix := strings.TrimSuffix(cfg.API.BasePath, "/")
	return &Module{
		Prefix:  prefix,
		Handler: chain.Apply(http.StripPrefix(prefix, mux)),
	}
}

// Mount registers the module on mux for every path under its prefix.
func (m *Module) Mount(mux *http.ServeMux) {
	mux.Handle(m.Prefix+"/", m.Handler)
}
