package raster

import (
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/courier-sign/internal/catalog"
	"github.com/JaimeStill/courier-sign/internal/diagnostics"
	"github.com/JaimeStill/courier-sign/internal/pdfdoc"
	"github.com/JaimeStill/courier-sign/internal/pdftest"
	"github.com/JaimeStill/courier-sign/internal/requests"
	"github.com/JaimeStill/courier-sign/internal/templating"
	"github.com/JaimeStill/courier-sign/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRasterizer returns a synthetic raster whose height depends on the markup.
type fakeRasterizer struct {
	heights map[string]int
	fail    map[string]bool
	calls   []string
}

func (f *fakeRasterizer) Render(_ context.Context, markup string, width int) (image.Image, error) {
	for marker, h := range f.heights {
		if strings.Contains(markup, marker) {
			f.calls = append(f.calls, marker)
			if f.fail[marker] {
				return nil, errors.New("render failed")
			}
			img := image.NewRGBA(image.Rect(0, 0, width, h))
			img.Set(0, 0, color.Black)
			return img, nil
		}
	}
	return nil, errors.New("unexpected markup")
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Definition{
		{Code: "SHORT", Title: "Short", Kind: catalog.KindContract, Order: 1, Template: `<p>doc-short {{adSoyad}}</p><div id="signature-placeholder"></div>`},
		{Code: "TALL", Title: "Tall", Kind: catalog.KindContract, Order: 2, Template: `<p>doc-tall</p><div id="signature-placeholder"></div>`},
		{Code: "PAGED", Title: "Paged", Kind: catalog.KindContract, Order: 3},
	})
	require.NoError(t, err)
	return cat
}

func signed(t *testing.T, codes ...string) *requests.Request {
	req := &requests.Request{AdSoyad: "Can Yücel", SelectedDocs: codes, Signatures: map[string]requests.Signature{}, CreatedAt: time.Now()}
	for _, c := range codes {
		req.Signatures[c] = requests.Signature{SignaturePNG: pdftest.PNGDataURL(t, 4, 2)}
	}
	return req
}

func TestAssemble_NothingToAssemble(t *testing.T) {
	p := NewPipeline(&fakeRasterizer{}, templating.Engine{}, testCatalog(t), time.UTC, logging.Discard())

	unsigned := &requests.Request{SelectedDocs: []string{"SHORT", "TALL"}}
	_, err := p.Assemble(context.Background(), unsigned, diagnostics.New(logging.Discard()))
	assert.ErrorIs(t, err, ErrNothingToAssemble)

	pagedOnly := signed(t, "PAGED")
	_, err = p.Assemble(context.Background(), pagedOnly, diagnostics.New(logging.Discard()))
	assert.ErrorIs(t, err, ErrNothingToAssemble)
}

func TestAssemble_PagesInSelectionOrder(t *testing.T) {
	w := RenderWidth
	page := BandHeight(w)
	fake := &fakeRasterizer{heights: map[string]int{"doc-short": 300, "doc-tall": page*2 + 40}}
	p := NewPipeline(fake, templating.Engine{}, testCatalog(t), time.UTC, logging.Discard())

	diags := diagnostics.New(logging.Discard())
	out, err := p.Assemble(context.Background(), signed(t, "TALL", "PAGED", "SHORT"), diags)
	require.NoError(t, err)

	assert.Equal(t, []string{"doc-tall", "doc-short"}, fake.calls)
	n, err := pdfdoc.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 3+1, n)
	assert.Zero(t, diags.Len())
}

func TestAssemble_RenderFailureDegrades(t *testing.T) {
	fake := &fakeRasterizer{
		heights: map[string]int{"doc-short": 300, "doc-tall": 300},
		fail:    map[string]bool{"doc-tall": true},
	}
	p := NewPipeline(fake, templating.Engine{}, testCatalog(t), time.UTC, logging.Discard())

	diags := diagnostics.New(logging.Discard())
	out, err := p.Assemble(context.Background(), signed(t, "SHORT", "TALL"), diags)
	require.NoError(t, err)
	assert.True(t, diags.Has(diagnostics.ScopeRender, "TALL"))

	n, err := pdfdoc.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	fake.fail["doc-short"] = true
	_, err = p.Assemble(context.Background(), signed(t, "SHORT", "TALL"), diagnostics.New(logging.Discard()))
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestAssemble_StrictTemplates(t *testing.T) {
	cat, err := catalog.New([]catalog.Definition{
		{Code: "TYPO", Title: "Typo", Kind: catalog.KindContract, Order: 1, Template: `{{adSoyd}}<div id="signature-placeholder"></div>`},
	})
	require.NoError(t, err)

	p := NewPipeline(&fakeRasterizer{}, templating.Engine{Strict: true}, cat, time.UTC, logging.Discard())
	_, err = p.Assemble(context.Background(), signed(t, "TYPO"), diagnostics.New(logging.Discard()))
	assert.ErrorIs(t, err, templating.ErrUnknownVariable)
}

func TestName(t *testing.T) {
	assert.Equal(t, "Imzali_Belgeler_Can Yücel.pdf", Name(&requests.Request{AdSoyad: "Can Yücel"}))
}
