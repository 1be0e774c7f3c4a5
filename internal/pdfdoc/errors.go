package pdfdoc

import (
	"errors"
	"strings"
)

var (
	ErrLoad          = errors.New("document could not be loaded")
	ErrPageRange     = errors.New("page index out of range")
	ErrFieldNotFound = errors.New("form field not found")
	ErrFieldType     = errors.New("form field is not a text field")
	ErrImage         = errors.New("image could not be decoded")
)

// structuralPatterns are fragments of pdfcpu errors raised when a document's internal
// references are broken.
var structuralPatterns = []string{
	"invalid reference",
	"missing object",
	"dangling",
	"xref",
	"corrupt",
	"indirect object",
	"expected dict",
	"pdfdict",
	"fields",
	"kids",
}

// IsStructuralError reports whether err indicates the document's internal structure
// cannot be rewritten.
func IsStructuralError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range structuralPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
