package api

import (
	"github.com/JaimeStill/courier-sign/internal/assembly"
	"github.com/JaimeStill/courier-sign/internal/catalog"
	"github.com/JaimeStill/courier-sign/internal/compose"
	"github.com/JaimeStill/courier-sign/internal/config"
	"github.com/JaimeStill/courier-sign/internal/pdfdoc"
	"github.com/JaimeStill/courier-sign/internal/raster"
	"github.com/JaimeStill/courier-sign/internal/render"
	"github.com/JaimeStill/courier-sign/internal/requests"
	"github.com/JaimeStill/courier-sign/internal/source"
	"github.com/JaimeStill/courier-sign/internal/summary"
	"github.com/JaimeStill/courier-sign/internal/templating"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Catalog  *catalog.Catalog
	Requests requests.System
	Render   *render.Client
	Assembly assembly.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	cat := catalog.Default()
	loc := cfg.Assembly.Location()

	requestsSys := requests.New(
		runtime.RequestStore(),
		cat,
		runtime.Logger,
		runtime.Pagination,
		runtime.MaxUploadSize,
	)

	renderClient := render.NewClient(&cfg.Render, runtime.HTTPClient, runtime.Logger)

	compositor := compose.New(compose.Options{
		FieldMap:       cfg.Assembly.FieldMap,
		SignatureRect:  rect(cfg.Assembly.SignatureRect),
		SignatureRects: rects(cfg.Assembly.SignatureRects),
		Location:       loc,
	}, cat, runtime.Logger)

	pipeline := raster.NewPipeline(
		raster.NewRemote(renderClient, "", cfg.Render.DPI, runtime.Logger),
		templating.Engine{Strict: cfg.Assembly.StrictTemplates},
		cat,
		loc,
		runtime.Logger,
	)

	assemblySys := assembly.New(
		requestsSys,
		source.New(&cfg.Source, runtime.HTTPClient, runtime.MaxUploadSize, runtime.Logger),
		compositor,
		pipeline,
		summary.New(cat, loc, runtime.Logger),
		runtime.Storage,
		runtime.Logger,
	)

	return &Domain{
		Catalog:  cat,
		Requests: requestsSys,
		Render:   renderClient,
		Assembly: assemblySys,
	}
}

func rect(r config.RectConfig) pdfdoc.Rect {
	return pdfdoc.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

func rects(in map[string]config.RectConfig) map[string]pdfdoc.Rect {
	out := make(map[string]pdfdoc.Rect, len(in))
	for code, r := range in {
		out[code] = rect(r)
	}
	return out
}
