// Package compose builds the signed master document: it fills form fields, stamps the
// provenance block and signatures, and appends uploaded PDF documents.
package compose

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/JaimeStill/courier-sign/internal/catalog"
	"github.com/JaimeStill/courier-sign/internal/dataurl"
	"github.com/JaimeStill/courier-sign/internal/diagnostics"
	"github.com/JaimeStill/courier-sign/internal/pdfdoc"
	"github.com/JaimeStill/courier-sign/internal/requests"
	"github.com/JaimeStill/courier-sign/internal/textfmt"
	"github.com/cockroachdb/errors"
)

var (
	ErrBaseDocument = errors.New("base document could not be loaded")
	ErrStructure    = errors.New("source document structure is incompatible")
)

// Provenance block geometry, measured from the top-left of the first page.
const (
	provenanceX          = 50
	provenanceTop        = 40
	provenanceLineHeight = 10
)

// Options configures a Compositor.
type Options struct {
	// FieldMap maps a signer attribute to the form field it fills.
	FieldMap       map[string]string
	SignatureRect  pdfdoc.Rect
	SignatureRects map[string]pdfdoc.Rect
	Location       *time.Location
}

// Opener loads a document with the full set of capabilities.
type Opener func(data []byte) (pdfdoc.Composite, error)

// Compositor applies a signing request to a base document.
type Compositor struct {
	opts    Options
	catalog *catalog.Catalog
	open    Opener
	logger  *slog.Logger
}

// New creates a Compositor backed by pdfdoc.
func New(opts Options, cat *catalog.Catalog, logger *slog.Logger) *Compositor {
	return NewWithOpener(opts, cat, func(data []byte) (pdfdoc.Composite, error) {
		return pdfdoc.Load(data)
	}, logger)
}

// NewWithOpener creates a Compositor that loads documents through open.
func NewWithOpener(opts Options, cat *catalog.Catalog, open Opener, logger *slog.Logger) *Compositor {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Compositor{
		opts:    opts,
		catalog: cat,
		open:    open,
		logger:  logger.With("system", "compose"),
	}
}

// Name returns the master document file name for req.
func Name(req *requests.Request) string {
	return textfmt.ArtifactName(req.AdSoyad, req.TcKimlik, "") + ".pdf"
}

// Compose returns the finished master document. Item-level failures are recorded in
// diags. Only load and save failures are returned.
func (c *Compositor) Compose(base []byte, req *requests.Request, diags *diagnostics.List) ([]byte, error) {
	doc, err := c.open(base)
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(ErrBaseDocument, "%v", err),
			"check that the source document is a valid PDF",
		)
	}

	c.fill(doc, req, diags)
	c.provenance(doc, req, diags)
	c.overlay(doc, req, diags)
	c.appendUploads(doc, req, diags)

	out, err := doc.Save()
	if err != nil {
		if pdfdoc.IsStructuralError(err) {
			return nil, errors.WithHint(
				errors.Wrapf(ErrStructure, "%v", err),
				"the source document's internal form structure is not compatible; re-export it without broken field references",
			)
		}
		return nil, err
	}

	c.logger.Info("master document composed", "token", req.Token, "degraded", diags.Len())
	return out, nil
}

func (c *Compositor) fill(doc pdfdoc.FieldFillable, req *requests.Request, diags *diagnostics.List) {
	fields, err := doc.ListFields()
	if diags.Record(diagnostics.ScopeField, "form", err) {
		return
	}
	if len(fields) == 0 {
		c.logger.Debug("base document has no form, fill skipped", "token", req.Token)
		return
	}

	for _, attr := range slices.Sorted(maps.Keys(c.opts.FieldMap)) {
		value := Attribute(req, attr)
		if value == "" {
			continue
		}
		field := c.opts.FieldMap[attr]
		diags.Record(diagnostics.ScopeField, field, doc.SetField(field, value))
	}
}

func (c *Compositor) provenance(doc pdfdoc.PageComposable, req *requests.Request, diags *diagnostics.List) {
	if doc.PageCount() == 0 {
		return
	}
	_, height, err := doc.PageSize(0)
	if diags.Record(diagnostics.ScopeProvenance, "page", err) {
		return
	}

	for i, line := range ProvenanceLines(req, c.opts.Location) {
		p := pdfdoc.Point{X: provenanceX, Y: height - provenanceTop - float64(i*provenanceLineHeight)}
		err := doc.DrawTextAt(0, p, pdfdoc.DefaultTextStyle, textfmt.AsciiSafe(line))
		diags.Record(diagnostics.ScopeProvenance, fmt.Sprintf("line%d", i+1), err)
	}
}

func (c *Compositor) overlay(doc pdfdoc.PageComposable, req *requests.Request, diags *diagnostics.List) {
	for _, def := range c.catalog.ByCodes(req.SelectedDocs) {
		if !def.Kind.AcceptsSignature() || def.HasTemplate() {
			continue
		}
		sig, ok := req.Signature(def.Code)
		if !ok || sig.SignaturePNG == "" {
			continue
		}

		page := def.TargetPageIndex()
		if page < 0 || page >= doc.PageCount() {
			c.logger.Debug("signature target outside document", "code", def.Code, "page", page, "pages", doc.PageCount())
			continue
		}

		_, img, err := dataurl.Decode(sig.SignaturePNG)
		if diags.Record(diagnostics.ScopeImage, def.Code, err) {
			continue
		}

		diags.Record(diagnostics.ScopeOverlay, def.Code, doc.DrawImageAt(page, c.rect(def.Code), img))
	}
}

// appendUploads appends tax plates first, then residence and criminal record PDFs.
func (c *Compositor) appendUploads(doc pdfdoc.PageMergeable, req *requests.Request, diags *diagnostics.List) {
	defs := c.catalog.ByCodes(req.SelectedDocs)

	for _, def := range defs {
		if def.Kind != catalog.KindTaxPlate {
			continue
		}
		if sig, ok := req.Signature(def.Code); ok && sig.TaxPlatePDF != "" {
			c.appendPayload(doc, def.Code, sig.TaxPlatePDF, diags)
		}
	}

	for _, def := range defs {
		if def.Kind != catalog.KindResidence && def.Kind != catalog.KindCriminalRecord {
			continue
		}
		if sig, ok := req.Signature(def.Code); ok && dataurl.IsPDF(sig.UploadedDocument) {
			c.appendPayload(doc, def.Code, sig.UploadedDocument, diags)
		}
	}
}

func (c *Compositor) appendPayload(doc pdfdoc.PageMergeable, code, payload string, diags *diagnostics.List) {
	_, data, err := dataurl.Decode(payload)
	if diags.Record(diagnostics.ScopeAppend, code, err) {
		return
	}
	_, err = doc.AppendDocument(data)
	diags.Record(diagnostics.ScopeAppend, code, err)
}

func (c *Compositor) rect(code string) pdfdoc.Rect {
	if r, ok := c.opts.SignatureRects[code]; ok {
		return r
	}
	return c.opts.SignatureRect
}

// ProvenanceLines returns the three provenance lines stamped on the first page.
func ProvenanceLines(req *requests.Request, loc *time.Location) []string {
	saved := "-"
	if req.SavedAt != nil {
		saved = textfmt.FormatDate(*req.SavedAt, loc)
	}
	ip := req.IPAddress
	if ip == "" {
		ip = "-"
	}
	return []string{
		"Bilgi Kayit Tarihi: " + saved,
		"Istek Tarihi: " + textfmt.FormatDate(req.CreatedAt, loc),
		"Cihaz IP: " + ip,
	}
}

// Attribute returns the signer attribute named by a field map key.
func Attribute(req *requests.Request, name string) string {
	switch name {
	case "adSoyad":
		return req.AdSoyad
	case "email":
		return req.Email
	case "tcKimlik":
		return req.TcKimlik
	case "cepNumarasi":
		return req.CepNumarasi
	case "adres":
		return req.Adres
	case "surucuBelgesiTarihi":
		return req.SurucuBelgesiTarihi
	case "surucuSicilNo":
		return req.SurucuSicilNo
	case "ek1Plaka":
		return req.Ek1Plaka
	case "ek1MarkaModel":
		return req.Ek1MarkaModel
	default:
		return ""
	}
}
