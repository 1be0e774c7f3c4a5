package api

import (
	"net/http"

	"github.com/JaimeStill/courier-sign/internal/assembly"
	"github.com/JaimeStill/courier-sign/internal/catalog"
	"github.com/JaimeStill/courier-sign/internal/config"
	"github.com/JaimeStill/courier-sign/internal/render"
	"github.com/JaimeStill/courier-sign/internal/requests"
	"github.com/JaimeStill/courier-sign/pkg/routes"
)

// requestBodyFactor bounds sign command bodies, which may carry several base64 uploads.
const requestBodyFactor = 4

func registerRoutes(mux *http.ServeMux, runtime *Runtime, domain *Domain, cfg *config.Config) {
	catalogHandler := catalog.NewHandler(domain.Catalog, runtime.Logger)
	requestsHandler := requests.NewHandler(domain.Requests, runtime.Logger, runtime.Pagination, runtime.MaxUploadSize*requestBodyFactor)
	assemblyHandler := assembly.NewHandler(domain.Assembly, runtime.Logger, runtime.MaxUploadSize)
	renderHandler := render.NewHandler(domain.Render, &cfg.Render, runtime.Logger)

	routes.Register(
		mux,
		catalogHandler.Routes(),
		requestsHandler.Routes(assemblyHandler.Routes()),
		assemblyHandler.InspectRoutes(),
		renderHandler.Routes(),
	)
}
