package pdfdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/form"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Document is an in-memory PDF. Every operation rewrites the buffer, and a failed
// operation leaves the previous content untouched.
type Document struct {
	data   []byte
	conf   *model.Configuration
	dims   []types.Dim
	fields []Field
}

var _ Composite = (*Document)(nil)

// Config returns the pdfcpu configuration used for every operation: relaxed validation
// and no passwords, so encrypted documents with an empty user password open.
func Config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Load parses data and records its page geometry.
func Load(data []byte) (*Document, error) {
	conf := Config()
	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return &Document{
		data: data,
		conf: conf,
		dims: dims,
	}, nil
}

// PageCount returns the number of pages of the loaded document.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), Config())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return n, nil
}

func (d *Document) PageCount() int {
	return len(d.dims)
}

func (d *Document) PageSize(page int) (float64, float64, error) {
	if err := d.checkPage(page); err != nil {
		return 0, 0, err
	}
	return d.dims[page].Width, d.dims[page].Height, nil
}

// ListFields returns the fillable fields. A document without a form has none.
func (d *Document) ListFields() ([]Field, error) {
	if d.fields != nil {
		return d.fields, nil
	}

	d.conf.Cmd = model.LISTFORMFIELDS
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(d.data), d.conf)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	if !hasForm(ctx) {
		d.fields = []Field{}
		return d.fields, nil
	}

	raw, _, err := form.FormFields(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}

	fields := make([]Field, 0, len(raw))
	for _, f := range raw {
		fields = append(fields, Field{
			ID:    f.ID,
			Name:  f.Name,
			Kind:  fieldKind(f.Typ),
			Pages: f.Pages,
		})
	}
	d.fields = fields
	return fields, nil
}

type fillRequest struct {
	Forms []fillForm `json:"forms"`
}

type fillForm struct {
	TextFields []fillText `json:"textfield,omitempty"`
	DateFields []fillText `json:"datefield,omitempty"`
}

type fillText struct {
	Pages  []int  `json:"pages"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

// SetField fills the text or date field called name.
func (d *Document) SetField(name, value string) error {
	fields, err := d.ListFields()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFieldNotFound, name, err)
	}

	var target *Field
	for i := range fields {
		if fields[i].Name == name {
			target = &fields[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}

	entry := fillText{Pages: target.Pages, ID: target.ID, Name: target.Name, Value: value}
	var group fillForm
	switch target.Kind {
	case "text":
		group.TextFields = []fillText{entry}
	case "date":
		group.DateFields = []fillText{entry}
	default:
		return fmt.Errorf("%w: %s is %s", ErrFieldType, name, target.Kind)
	}

	payload, err := json.Marshal(fillRequest{Forms: []fillForm{group}})
	if err != nil {
		return err
	}

	return d.apply(func(rs io.ReadSeeker, w io.Writer) error {
		return api.FillForm(rs, bytes.NewReader(payload), w, d.conf)
	})
}

// DrawImageAt stamps img onto page, scaled to fit inside r and centered in it.
func (d *Document) DrawImageAt(page int, r Rect, img []byte) error {
	if err := d.checkPage(page); err != nil {
		return err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImage, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("%w: empty image", ErrImage)
	}

	scale := math.Min(r.W/float64(cfg.Width), r.H/float64(cfg.Height))
	x := r.X + (r.W-float64(cfg.Width)*scale)/2
	y := r.Y + (r.H-float64(cfg.Height)*scale)/2

	desc := fmt.Sprintf("position:bl, offset:%.2f %.2f, scalefactor:%.4f abs, rotation:0, opacity:1", x, y, scale)
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(img), desc, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImage, err)
	}

	return d.stamp(page, wm)
}

// DrawTextAt stamps one line of text with its lower-left corner at p.
func (d *Document) DrawTextAt(page int, p Point, style TextStyle, text string) error {
	if err := d.checkPage(page); err != nil {
		return err
	}
	if style.Font == "" {
		style.Font = DefaultTextStyle.Font
	}
	if style.Size <= 0 {
		style.Size = DefaultTextStyle.Size
	}

	desc := fmt.Sprintf(
		"fontname:%s, points:%d, position:bl, offset:%.2f %.2f, scalefactor:1 abs, rotation:0, fillcolor:%s",
		style.Font, style.Size, p.X, p.Y, grayHex(style.Gray),
	)
	wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("text stamp: %w", err)
	}

	return d.stamp(page, wm)
}

// AppendDocument copies every page of data onto the end of the document and returns
// the number of pages added.
func (d *Document) AppendDocument(data []byte) (int, error) {
	dims, err := api.PageDims(bytes.NewReader(data), d.conf)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	err = d.apply(func(rs io.ReadSeeker, w io.Writer) error {
		return api.MergeRaw([]io.ReadSeeker{rs, bytes.NewReader(data)}, w, false, d.conf)
	})
	if err != nil {
		return 0, fmt.Errorf("merge: %w", err)
	}

	d.dims = append(d.dims, dims...)
	d.fields = nil
	return len(dims), nil
}

// Save rewrites the document in full and returns the result.
func (d *Document) Save() ([]byte, error) {
	var buf bytes.Buffer
	if err := api.Optimize(bytes.NewReader(d.data), &buf, d.conf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Document) stamp(page int, wm *model.Watermark) error {
	selected := []string{strconv.Itoa(page + 1)}
	return d.apply(func(rs io.ReadSeeker, w io.Writer) error {
		return api.AddWatermarks(rs, w, selected, wm, d.conf)
	})
}

func (d *Document) apply(op func(rs io.ReadSeeker, w io.Writer) error) error {
	var buf bytes.Buffer
	if err := op(bytes.NewReader(d.data), &buf); err != nil {
		return err
	}
	d.data = buf.Bytes()
	return nil
}

func (d *Document) checkPage(page int) error {
	if page < 0 || page >= len(d.dims) {
		return fmt.Errorf("%w: %d of %d", ErrPageRange, page, len(d.dims))
	}
	return nil
}

func hasForm(ctx *model.Context) bool {
	if ctx.XRefTable.Form == nil {
		return false
	}
	_, ok := ctx.XRefTable.Form.Find("Fields")
	return ok
}

func fieldKind(t form.FieldType) string {
	switch t {
	case form.FTText:
		return "text"
	case form.FTDate:
		return "date"
	case form.FTCheckBox:
		return "checkbox"
	case form.FTComboBox:
		return "combobox"
	case form.FTListBox:
		return "listbox"
	case form.FTRadioButtonGroup:
		return "radio"
	default:
		return "unknown"
	}
}

func grayHex(g float64) string {
	v := int(math.Round(math.Max(0, math.Min(1, g)) * 255))
	return fmt.Sprintf("#%02x%02x%02x", v, v, v)
}
