package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/JaimeStill/courier-sign/internal/catalog"
	"github.com/JaimeStill/courier-sign/internal/diagnostics"
	"github.com/JaimeStill/courier-sign/internal/requests"
	"github.com/JaimeStill/courier-sign/internal/templating"
	"github.com/JaimeStill/courier-sign/internal/textfmt"
)

var (
	ErrNothingToAssemble = errors.New("no signed HTML documents to assemble")
	ErrNoPages           = errors.New("no HTML document could be rendered")
)

// HTMLRasterizer renders markup at a CSS pixel width into a single image.
type HTMLRasterizer interface {
	Render(ctx context.Context, markup string, width int) (image.Image, error)
}

// Pipeline turns the signed HTML templates of a request into one PDF.
type Pipeline struct {
	rasterizer HTMLRasterizer
	engine     templating.Engine
	catalog    *catalog.Catalog
	location   *time.Location
	logger     *slog.Logger
}

func NewPipeline(rasterizer HTMLRasterizer, engine templating.Engine, cat *catalog.Catalog, loc *time.Location, logger *slog.Logger) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	return &Pipeline{
		rasterizer: rasterizer,
		engine:     engine,
		catalog:    cat,
		location:   loc,
		logger:     logger.With("system", "raster"),
	}
}

// Name returns the HTML package file name for req.
func Name(req *requests.Request) string {
	return "Imzali_Belgeler_" + textfmt.SafeName(req.AdSoyad) + ".pdf"
}

type job struct {
	code   string
	markup string
}

// Qualifying returns the selected codes that have a template and a drawn signature,
// in selection order.
func (p *Pipeline) Qualifying(req *requests.Request) []string {
	var codes []string
	for _, code := range req.SelectedDocs {
		def, err := p.catalog.Find(code)
		if err != nil || !def.HasTemplate() {
			continue
		}
		if sig, ok := req.Signature(code); ok && sig.SignaturePNG != "" {
			codes = append(codes, code)
		}
	}
	return codes
}

// Assemble renders every qualifying document in selection order. A document that fails
// to render is recorded in diags and skipped.
func (p *Pipeline) Assemble(ctx context.Context, req *requests.Request, diags *diagnostics.List) ([]byte, error) {
	codes := p.Qualifying(req)
	if len(codes) == 0 {
		return nil, ErrNothingToAssemble
	}

	jobs := make([]job, 0, len(codes))
	for _, code := range codes {
		def, _ := p.catalog.Find(code)
		sig, _ := req.Signature(code)
		markup, err := p.engine.Render(def.Template, req, &sig, p.location)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", code, err)
		}
		jobs = append(jobs, job{code: code, markup: markup})
	}

	w := NewPageWriter()
	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := p.rasterizer.Render(ctx, j.markup, RenderWidth)
		if diags.Record(diagnostics.ScopeRender, j.code, err) {
			continue
		}

		n, err := w.AddRaster(img)
		if errors.Is(err, ErrPageWriter) {
			return nil, fmt.Errorf("%s: %w", j.code, err)
		}
		if diags.Record(diagnostics.ScopeRender, j.code, err) {
			continue
		}
		p.logger.Debug("document rasterized", "code", j.code, "pages", n)
	}

	if w.Pages() == 0 {
		return nil, ErrNoPages
	}

	out, err := w.Bytes()
	if err != nil {
		return nil, fmt.Errorf("write package: %w", err)
	}

	p.logger.Info("html package assembled", "token", req.Token, "documents", len(jobs), "pages", w.Pages())
	return out, nil
}
