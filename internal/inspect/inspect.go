// Package inspect reports the fillable fields of a document. It never fails: every
// problem is reported inside the Result.
package inspect

import (
	"context"
	"fmt"

	"github.com/JaimeStill/courier-sign/internal/pdfdoc"
)

// Result is the outcome of an inspection.
type Result struct {
	HasForm    bool           `json:"hasForm"`
	FieldCount int            `json:"fieldCount"`
	Fields     []pdfdoc.Field `json:"fields"`
	Error      string         `json:"error,omitempty"`
}

// Fetcher retrieves a document by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

func failed(format string, args ...any) Result {
	return Result{Fields: []pdfdoc.Field{}, Error: fmt.Sprintf(format, args...)}
}

// Bytes inspects an in-memory document.
func Bytes(data []byte) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = failed("inspection failed: %v", r)
		}
	}()

	doc, err := pdfdoc.Load(data)
	if err != nil {
		return failed("document could not be loaded: %v", err)
	}

	fields, err := doc.ListFields()
	if err != nil {
		return failed("inspection failed: %v", err)
	}
	if len(fields) == 0 {
		return Result{Fields: []pdfdoc.Field{}}
	}

	return Result{
		HasForm:    true,
		FieldCount: len(fields),
		Fields:     fields,
	}
}

// URL fetches the document at url and inspects it.
func URL(ctx context.Context, f Fetcher, url string) Result {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return failed("document could not be loaded: %v", err)
	}
	return Bytes(data)
}
