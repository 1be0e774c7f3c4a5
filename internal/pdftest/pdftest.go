// Package pdftest builds small PDF and image fixtures for tests.
package pdftest

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Pages returns an A4 portrait PDF with n numbered pages.
func Pages(t testing.TB, n int) []byte {
	t.Helper()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= n; i++ {
		pdf.AddPage()
		pdf.Text(20, 20, fmt.Sprintf("page %d", i))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	return buf.Bytes()
}

// FormField is one field of a Form fixture. Kind is "text" or "checkbox".
type FormField struct {
	Name string
	Kind string
}

// TextFields returns a text FormField for each name.
func TextFields(names ...string) []FormField {
	fields := make([]FormField, len(names))
	for i, n := range names {
		fields[i] = FormField{Name: n, Kind: "text"}
	}
	return fields
}

// Form returns a one-page A4 PDF with an AcroForm holding fields, top to bottom.
func Form(t testing.TB, fields ...FormField) []byte {
	t.Helper()
	return FormPages(t, 1, fields...)
}

// FormPages returns an A4 PDF of n pages with fields on the last page. Earlier pages are blank.
func FormPages(t testing.TB, n int, fields ...FormField) []byte {
	t.Helper()

	content := map[string][]map[string]any{}
	for i, f := range fields {
		pos := []float64{150, 760 - float64(i*30)}
		switch f.Kind {
		case "checkbox":
			content["checkbox"] = append(content["checkbox"], map[string]any{"id": f.Name, "pos": pos, "width": 12})
		default:
			content["textfield"] = append(content["textfield"], map[string]any{"id": f.Name, "pos": pos, "width": 200})
		}
	}

	layout, err := json.Marshal(map[string]any{
		"paper":  "A4P",
		"origin": "LowerLeft",
		"fonts": map[string]any{
			"input": map[string]any{"name": "Helvetica", "size": 10},
		},
		"pages": map[string]any{
			strconv.Itoa(n): map[string]any{"content": content},
		},
	})
	if err != nil {
		t.Fatalf("form layout: %v", err)
	}

	var buf bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(layout), &buf, nil); err != nil {
		t.Fatalf("build form fixture: %v", err)
	}
	return buf.Bytes()
}

// FieldValues returns the current value of every form field in data, keyed by name.
func FieldValues(t testing.TB, data []byte) map[string]string {
	t.Helper()

	fields, err := api.FormFields(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("read form fields: %v", err)
	}
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.Name] = f.V
	}
	return values
}

// PNG returns a solid w×h PNG.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 20, G: 40, B: 160, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// PNGDataURL returns PNG(t, w, h) as a data URL.
func PNGDataURL(t testing.TB, w, h int) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(PNG(t, w, h))
}

// PDFDataURL returns data as a PDF data URL.
func PDFDataURL(data []byte) string {
	return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(data)
}
