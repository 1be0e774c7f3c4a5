// Package pdfdoc exposes the narrow document capabilities the artifact generators need
// and implements them with pdfcpu.
package pdfdoc

// Rect is a rectangle in page units with a bottom-left origin.
type Rect struct {
	X, Y, W, H float64
}

// Point is a position in page units with a bottom-left origin.
type Point struct {
	X, Y float64
}

// TextStyle describes how DrawTextAt renders a line.
type TextStyle struct {
	Font string
	Size int
	// Gray is the fill intensity from 0 (black) to 1 (white).
	Gray float64
}

// DefaultTextStyle is an 8pt Helvetica line in dark gray.
var DefaultTextStyle = TextStyle{Font: "Helvetica", Size: 8, Gray: 0.3}

// Field describes one fillable form field.
type Field struct {
	ID    string `json:"-"`
	Name  string `json:"name"`
	Kind  string `json:"type"`
	Pages []int  `json:"-"`
}

// FieldFillable lists and sets form fields.
type FieldFillable interface {
	ListFields() ([]Field, error)
	SetField(name, value string) error
}

// PageComposable draws onto existing pages. Page indexes are zero-based.
type PageComposable interface {
	PageCount() int
	PageSize(page int) (width, height float64, err error)
	DrawImageAt(page int, r Rect, img []byte) error
	DrawTextAt(page int, p Point, style TextStyle, text string) error
}

// PageMergeable appends every page of another document, in order.
type PageMergeable interface {
	AppendDocument(data []byte) (int, error)
}

// Composite is the full capability set used when assembling a master document.
type Composite interface {
	FieldFillable
	PageComposable
	PageMergeable
	Save() ([]byte, error)
}
