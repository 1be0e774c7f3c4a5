// Package catalog holds the immutable set of documents a signing request can select.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// ErrNotFound is returned when a document code is not in the catalog.
var ErrNotFound = errors.New("document not found")

//go:embed templates/*.html
var templates embed.FS

// Definition describes one signable or uploadable document. Page-range documents point into
// the shared source PDF. Template documents carry HTML with {{name}} placeholders.
type Definition struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        Kind   `json:"kind"`
	StartPage   *int   `json:"startPage,omitempty"`
	EndPage     *int   `json:"endPage,omitempty"`
	Order       int    `json:"order"`
	Template    string `json:"-"`
}

// HasTemplate reports whether the document is rendered from HTML.
func (d *Definition) HasTemplate() bool {
	return d.Template != ""
}

// TargetPageIndex returns the zero-based index of the last page of the document's range.
// Documents without a range resolve to page 0.
func (d *Definition) TargetPageIndex() int {
	switch {
	case d.EndPage != nil:
		return *d.EndPage - 1
	case d.StartPage != nil:
		return *d.StartPage - 1
	default:
		return 0
	}
}

// Catalog is a read-only lookup over definitions.
type Catalog struct {
	defs   []Definition
	byCode map[string]*Definition
}

// New builds a catalog from defs. Codes must be unique and kinds valid.
func New(defs []Definition) (*Catalog, error) {
	sorted := slices.Clone(defs)
	slices.SortStableFunc(sorted, func(a, b Definition) int { return a.Order - b.Order })

	c := &Catalog{
		defs:   sorted,
		byCode: make(map[string]*Definition, len(sorted)),
	}
	for i := range c.defs {
		d := &c.defs[i]
		if d.Code == "" {
			return nil, fmt.Errorf("definition %d: code required", i)
		}
		if !d.Kind.Valid() {
			return nil, fmt.Errorf("definition %s: invalid kind %q", d.Code, d.Kind)
		}
		if _, dup := c.byCode[d.Code]; dup {
			return nil, fmt.Errorf("definition %s: duplicate code", d.Code)
		}
		c.byCode[d.Code] = d
	}
	return c, nil
}

// Default returns the built-in document pack.
func Default() *Catalog {
	c, err := New(builtin())
	if err != nil {
		panic(err)
	}
	return c
}

// Find returns the definition for code.
func (c *Catalog) Find(code string) (*Definition, error) {
	d, ok := c.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	return d, nil
}

// All returns every definition sorted by order.
func (c *Catalog) All() []Definition {
	return slices.Clone(c.defs)
}

// ByCodes returns the known definitions among codes sorted by order. Unknown codes are dropped.
func (c *Catalog) ByCodes(codes []string) []Definition {
	want := lo.SliceToMap(codes, func(code string) (string, struct{}) { return code, struct{}{} })
	return lo.Filter(c.defs, func(d Definition, _ int) bool {
		_, ok := want[d.Code]
		return ok
	})
}

// Codes returns every code in order.
func (c *Catalog) Codes() []string {
	return lo.Map(c.defs, func(d Definition, _ int) string { return d.Code })
}

// Known reports whether code exists.
func (c *Catalog) Known(code string) bool {
	_, ok := c.byCode[code]
	return ok
}
