package raster

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/JaimeStill/courier-sign/internal/pdfdoc"
	"github.com/JaimeStill/courier-sign/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageWriter(t *testing.T) {
	w := NewPageWriter()

	n, err := w.AddRaster(image.NewRGBA(image.Rect(0, 0, 200, 100)))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = w.AddRaster(image.NewRGBA(image.Rect(0, 0, 200, BandHeight(200)*3-1)))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 4, w.Pages())

	out, err := w.Bytes()
	require.NoError(t, err)
	count, err := pdfdoc.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestPageWriter_StopsOnWriteError(t *testing.T) {
	w := NewPageWriter()
	_, err := w.AddRaster(image.NewRGBA(image.Rect(0, 0, 200, 100)))
	require.NoError(t, err)

	w.pdf.SetError(errors.New("disk full"))

	n, err := w.AddRaster(image.NewRGBA(image.Rect(0, 0, 200, BandHeight(200)*2)))
	assert.ErrorIs(t, err, ErrPageWriter)
	assert.ErrorContains(t, err, "disk full")
	assert.Zero(t, n)
	assert.Equal(t, 1, w.Pages())

	_, err = w.Bytes()
	assert.Error(t, err)
}

func TestEncodeBand(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 10))
	img.Set(0, 7, color.RGBA{R: 255, A: 255})

	data, err := encodeBand(img, Band{Y: 5, H: 5})
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 5), decoded.Bounds())
	r, _, _, _ := decoded.At(0, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestStack(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 100, 40))
	b := image.NewRGBA(image.Rect(0, 0, 50, 30))

	out := Stack([]image.Image{a, b})
	assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())
}

type failingRenderer struct{ data []byte }

func (f failingRenderer) HTMLToPDF(context.Context, string) ([]byte, error) {
	if f.data == nil {
		return nil, errors.New("upstream down")
	}
	return f.data, nil
}

func TestRemote_Errors(t *testing.T) {
	r := NewRemote(failingRenderer{}, t.TempDir(), 96, logging.Discard())
	_, err := r.Render(context.Background(), "<p>x</p>", RenderWidth)
	assert.ErrorContains(t, err, "upstream down")

	r = NewRemote(failingRenderer{data: []byte("not a pdf")}, t.TempDir(), 96, logging.Discard())
	_, err = r.Render(context.Background(), "<p>x</p>", RenderWidth)
	assert.ErrorIs(t, err, pdfdoc.ErrLoad)
}

func TestShell(t *testing.T) {
	s := Shell("<p>içerik</p>", 794)
	assert.Contains(t, s, "width: 794px")
	assert.Contains(t, s, "<p>içerik</p>")
}
