package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/JaimeStill/courier-sign/internal/pdfdoc"
	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	dcimage "github.com/JaimeStill/document-context/pkg/image"
	"github.com/google/uuid"
)

// PDFRenderer converts an HTML document to PDF.
type PDFRenderer interface {
	HTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// Remote rasterizes markup by rendering it to PDF through a PDFRenderer and then
// rendering every PDF page to an image with ImageMagick.
type Remote struct {
	renderer   PDFRenderer
	scratchDir string
	dpi        int
	logger     *slog.Logger
}

// NewRemote creates a Remote rasterizer. Scratch files live under scratchDir, or the
// system temp directory when it is empty. dpi is used when a render asks for no width.
func NewRemote(renderer PDFRenderer, scratchDir string, dpi int, logger *slog.Logger) *Remote {
	return &Remote{
		renderer:   renderer,
		scratchDir: scratchDir,
		dpi:        dpi,
		logger:     logger.With("system", "raster-remote"),
	}
}

const pageShell = `<!DOCTYPE html>
<html lang="tr"><head><meta charset="utf-8"><title>Belge</title>
<style>
@page { size: A4; margin: 0; }
body { margin: 0; }
.page { width: %dpx; padding: 16px; box-sizing: border-box; font-family: Arial, Helvetica, sans-serif; font-size: 12px; }
</style></head>
<body><div class="page">%s</div></body></html>`

// Shell wraps markup in an A4 page of the given CSS pixel width.
func Shell(markup string, width int) string {
	return fmt.Sprintf(pageShell, width, markup)
}

// DPIForWidth returns the resolution at which an A4 page is width*CaptureScale pixels wide.
func DPIForWidth(width int) int {
	return int(float64(width*CaptureScale) * 25.4 / PageWidthMM)
}

func (r *Remote) Render(ctx context.Context, markup string, width int) (image.Image, error) {
	pdf, err := r.renderer.HTMLToPDF(ctx, Shell(markup, width))
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	pages, err := pdfdoc.PageCount(pdf)
	if err != nil {
		return nil, err
	}
	if pages == 0 {
		return nil, fmt.Errorf("render html: empty document")
	}

	dir, err := os.MkdirTemp(r.scratchDir, "raster-")
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, uuid.NewString()+".pdf")
	if err := os.WriteFile(path, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write scratch: %w", err)
	}

	dpi := r.dpi
	if width > 0 {
		dpi = DPIForWidth(width)
	}

	images, err := r.renderPages(ctx, path, pages, dpi)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("markup rasterized", "pages", pages, "dpi", dpi)
	return Stack(images), nil
}

type pageResult struct {
	page int
	img  image.Image
	err  error
}

// renderPages renders pages 1..count with one open document and renderer per worker.
func (r *Remote) renderPages(ctx context.Context, path string, count, dpi int) ([]image.Image, error) {
	tasks := make(chan int, count)
	for p := 1; p <= count; p++ {
		tasks <- p
	}
	close(tasks)

	results := make(chan pageResult, count)
	cfg := config.ImageConfig{Format: "png", DPI: dpi, Options: map[string]any{"background": "white"}}

	var wg sync.WaitGroup
	for range workerCount(count) {
		wg.Go(func() {
			r.renderWorker(ctx, path, cfg, tasks, results)
		})
	}
	wg.Wait()
	close(results)

	images := make([]image.Image, count)
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		images[res.page-1] = res.img
	}
	return images, nil
}

func (r *Remote) renderWorker(ctx context.Context, path string, cfg config.ImageConfig, tasks <-chan int, results chan<- pageResult) {
	doc, err := document.Open(path, "application/pdf")
	if err != nil {
		for p := range tasks {
			results <- pageResult{page: p, err: fmt.Errorf("open scratch: %w", err)}
		}
		return
	}
	defer doc.Close()

	renderer, err := dcimage.NewImageMagickRenderer(cfg)
	if err != nil {
		for p := range tasks {
			results <- pageResult{page: p, err: fmt.Errorf("renderer: %w", err)}
		}
		return
	}

	for p := range tasks {
		if err := ctx.Err(); err != nil {
			results <- pageResult{page: p, err: err}
			continue
		}
		results <- renderPage(doc, renderer, p)
	}
}

func renderPage(doc document.Document, renderer dcimage.Renderer, p int) pageResult {
	page, err := doc.ExtractPage(p)
	if err != nil {
		return pageResult{page: p, err: fmt.Errorf("extract page %d: %w", p, err)}
	}
	data, err := page.ToImage(renderer, nil)
	if err != nil {
		return pageResult{page: p, err: fmt.Errorf("render page %d: %w", p, err)}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return pageResult{page: p, err: fmt.Errorf("decode page %d: %w", p, err)}
	}
	return pageResult{page: p, img: img}
}

func workerCount(pages int) int {
	return max(min(runtime.NumCPU(), pages), 1)
}
