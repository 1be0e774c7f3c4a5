package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/draw"
)

// ErrPageWriter marks a failed page write. The writer keeps the error, so it cannot be used afterwards.
var ErrPageWriter = errors.New("page writer failed")

// PageWriter accumulates raster bands as A4 pages.
type PageWriter struct {
	pdf   *fpdf.Fpdf
	count int
}

func NewPageWriter() *PageWriter {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return &PageWriter{pdf: pdf}
}

// Pages returns the number of pages written.
func (w *PageWriter) Pages() int {
	return w.count
}

// AddRaster writes img as one or more pages and returns how many were added. Bands are
// encoded before any page is added, so an encoding failure leaves the writer unchanged.
func (w *PageWriter) AddRaster(img image.Image) (int, error) {
	if err := w.pdf.Error(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPageWriter, err)
	}

	b := img.Bounds()
	bands := Segments(b.Dx(), b.Dy())
	mmPerPixel := PageWidthMM / float64(b.Dx())

	encoded := make([][]byte, len(bands))
	for i, band := range bands {
		data, err := encodeBand(img, band)
		if err != nil {
			return 0, err
		}
		encoded[i] = data
	}

	for i, band := range bands {
		name := fmt.Sprintf("band-%d", w.count)
		w.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(encoded[i]))
		w.pdf.AddPage()
		w.pdf.ImageOptions(name, 0, 0, PageWidthMM, float64(band.H)*mmPerPixel, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		if err := w.pdf.Error(); err != nil {
			return i, fmt.Errorf("%w: band %d: %v", ErrPageWriter, i, err)
		}
		w.count++
	}
	return len(bands), nil
}

// Bytes serializes the pages.
func (w *PageWriter) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeBand(img image.Image, band Band) ([]byte, error) {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), band.H))
	draw.Draw(dst, dst.Bounds(), img, image.Pt(b.Min.X, b.Min.Y+band.Y), draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode band: %w", err)
	}
	return buf.Bytes(), nil
}

// Stack places images top to bottom on a white canvas as wide as the widest image.
// Narrower images are scaled to that width.
func Stack(images []image.Image) image.Image {
	width, height := 0, 0
	for _, img := range images {
		width = max(width, img.Bounds().Dx())
	}
	heights := make([]int, len(images))
	for i, img := range images {
		b := img.Bounds()
		heights[i] = b.Dy() * width / max(b.Dx(), 1)
		height += heights[i]
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	y := 0
	for i, img := range images {
		target := image.Rect(0, y, width, y+heights[i])
		if img.Bounds().Dx() == width {
			draw.Draw(canvas, target, img, img.Bounds().Min, draw.Over)
		} else {
			draw.CatmullRom.Scale(canvas, target, img, img.Bounds(), draw.Over, nil)
		}
		y += heights[i]
	}
	return canvas
}
