// Package summary draws the one-page proof-of-request report, and its paginated
// appendix variant that also carries the uploaded PDF documents.
package summary

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/courier-sign/internal/catalog"
	"github.com/JaimeStill/courier-sign/internal/dataurl"
	"github.com/JaimeStill/courier-sign/internal/diagnostics"
	"github.com/JaimeStill/courier-sign/internal/pdfdoc"
	"github.com/JaimeStill/courier-sign/internal/requests"
	"github.com/JaimeStill/courier-sign/internal/textfmt"
	"github.com/go-pdf/fpdf"
)

// Layout in millimetres on an A4 page.
const (
	pageHeight   = 297.0
	margin       = 14.0
	col2X        = 110.0
	idImgW       = 28.0
	idImgH       = 20.0
	sigImgW      = 36.0
	sigImgH      = 12.0
	addressLimit = 70
	titleLimit   = 52
)

// Generator renders summary reports.
type Generator struct {
	catalog  *catalog.Catalog
	location *time.Location
	logger   *slog.Logger
}

func New(cat *catalog.Catalog, loc *time.Location, logger *slog.Logger) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{
		catalog:  cat,
		location: loc,
		logger:   logger.With("system", "summary"),
	}
}

// Name returns the summary file name for req.
func Name(req *requests.Request) string {
	return textfmt.ArtifactName(req.AdSoyad, req.TcKimlik, "_Ozet") + ".pdf"
}

// StatusLabel returns the report label for a status.
func StatusLabel(s requests.Status) string {
	switch s {
	case requests.StatusPending:
		return "Beklemede"
	case requests.StatusPartial:
		return "Kismi"
	default:
		return "Tamamlandi"
	}
}

type report struct {
	pdf      *fpdf.Fpdf
	y        float64
	paginate bool
	images   int
	diags    *diagnostics.List
}

// Generate draws the report. With appendix set, contract rows continue on new pages
// instead of being dropped, and uploaded PDF documents are appended after the report.
func (g *Generator) Generate(req *requests.Request, appendix bool, diags *diagnostics.List) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	r := &report{pdf: pdf, y: margin, paginate: appendix, diags: diags}
	r.header(req, g.location)
	r.identity(g.identitySignature(req))
	r.contracts(g.contractRows(req))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}

	if !appendix {
		return buf.Bytes(), nil
	}
	return g.appendUploads(buf.Bytes(), req, diags)
}

func (r *report) header(req *requests.Request, loc *time.Location) {
	r.pdf.SetFont("Helvetica", "B", 12)
	r.pdf.Text(margin, r.y, "Imza Istegi Ozeti (Canli imza icin)")
	r.y += 8

	saved := "-"
	if req.SavedAt != nil {
		saved = textfmt.FormatDate(*req.SavedAt, loc)
	}

	lines := []string{
		fmt.Sprintf("Ad Soyad: %s   E-posta: %s   TC: %s   Cep: %s",
			orDash(req.AdSoyad), req.Email, orDash(req.TcKimlik), orDash(req.CepNumarasi)),
		"Adres: " + textfmt.Truncate(orDash(req.Adres), addressLimit),
		fmt.Sprintf("Istek: %s   Bilgi Kayit: %s   Surucu Sicil No: %s   IP: %s   Durum: %s",
			textfmt.FormatDate(req.CreatedAt, loc), saved, orDash(req.SurucuSicilNo), orDash(req.IPAddress), StatusLabel(req.Status)),
	}

	r.pdf.SetFont("Helvetica", "", 8)
	for _, line := range lines {
		r.pdf.Text(margin, r.y, textfmt.AsciiSafe(line))
		r.y += 5
	}
	r.y += 4
}

func (r *report) identity(code string, sig requests.Signature) {
	if sig.FrontImage == "" && sig.BackImage == "" {
		r.y += 4
		return
	}

	r.pdf.SetFont("Helvetica", "B", 8)
	r.pdf.Text(margin, r.y, "Kimlik fotografi")
	r.y += 5
	r.pdf.SetFont("Helvetica", "", 8)

	backX := margin + idImgW + 4
	if sig.FrontImage != "" {
		if r.image(code+"/front", sig.FrontImage, margin, r.y, idImgW, idImgH) {
			r.pdf.Text(margin, r.y+idImgH+3, "On")
		} else {
			r.pdf.Text(margin, r.y+4, "[On yuz]")
		}
	}
	if sig.BackImage != "" {
		if r.image(code+"/back", sig.BackImage, backX, r.y, idImgW, idImgH) {
			r.pdf.Text(backX, r.y+idImgH+3, "Arka")
		} else {
			r.pdf.Text(backX, r.y+4, "[Arka yuz]")
		}
	}
	r.y += idImgH + 10
	r.y += 4
}

type row struct {
	code     string
	title    string
	signedAt string
	png      string
}

func (r *report) contracts(rows []row) {
	r.pdf.SetFont("Helvetica", "B", 10)
	r.pdf.Text(margin, r.y, "Imzalanan Sozlesmeler")
	r.y += 8

	r.pdf.SetFont("Helvetica", "", 8)
	for _, row := range rows {
		if r.y+sigImgH > pageHeight-margin {
			if !r.paginate {
				break
			}
			r.pdf.AddPage()
			r.y = margin
		}

		r.pdf.Text(margin, r.y+4, textfmt.Clip(textfmt.AsciiSafe(row.title), titleLimit))
		r.pdf.Text(margin, r.y+10, "Tarih: "+textfmt.AsciiSafe(row.signedAt))
		if !r.image(row.code, row.png, col2X, r.y, sigImgW, sigImgH) {
			r.pdf.Text(col2X, r.y+4, "[Imza]")
		}
		r.y += sigImgH + 4
	}
}

// image draws a data URL image and reports whether it succeeded. Failures are recorded.
func (r *report) image(key, src string, x, y, w, h float64) bool {
	data, err := normalize(src)
	if r.diags.Record(diagnostics.ScopeImage, key, err) {
		return false
	}

	name := fmt.Sprintf("img-%d", r.images)
	r.images++
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	r.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	if err := r.pdf.Error(); err != nil {
		r.pdf.ClearError()
		r.diags.Record(diagnostics.ScopeImage, key, err)
		return false
	}
	return true
}

// normalize decodes a PNG or JPEG data URL and re-encodes it as an 8-bit PNG.
func normalize(src string) ([]byte, error) {
	_, raw, err := dataurl.Decode(src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	rgba := image.NewNRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) identitySignature(req *requests.Request) (string, requests.Signature) {
	for _, code := range req.SelectedDocs {
		def, err := g.catalog.Find(code)
		if err != nil || def.Kind != catalog.KindIdentityCard {
			continue
		}
		sig, _ := req.Signature(code)
		return code, sig
	}
	return "", requests.Signature{}
}

func (g *Generator) contractRows(req *requests.Request) []row {
	var rows []row
	for _, code := range req.SelectedDocs {
		title := code
		kind := catalog.Kind("")
		if def, err := g.catalog.Find(code); err == nil {
			title, kind = def.Title, def.Kind
		}
		sig, ok := req.Signature(code)
		if !kind.AcceptsSignature() || !ok || sig.SignaturePNG == "" {
			continue
		}
		rows = append(rows, row{
			code:     code,
			title:    title,
			signedAt: textfmt.FormatDate(sig.SignedAt, g.location),
			png:      sig.SignaturePNG,
		})
	}
	return rows
}

func (g *Generator) appendUploads(report []byte, req *requests.Request, diags *diagnostics.List) ([]byte, error) {
	doc, err := pdfdoc.Load(report)
	if err != nil {
		return nil, err
	}

	for _, code := range req.SelectedDocs {
		def, err := g.catalog.Find(code)
		if err != nil || !def.Kind.AcceptsUpload() {
			continue
		}
		sig, ok := req.Signature(code)
		if !ok {
			continue
		}

		payload := sig.UploadedDocument
		if def.Kind == catalog.KindTaxPlate {
			payload = sig.TaxPlatePDF
		} else if !dataurl.IsPDF(payload) {
			continue
		}
		if payload == "" {
			continue
		}

		_, data, err := dataurl.Decode(payload)
		if diags.Record(diagnostics.ScopeAppend, code, err) {
			continue
		}
		_, err = doc.AppendDocument(data)
		diags.Record(diagnostics.ScopeAppend, code, err)
	}

	return doc.Save()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
