package requests

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/courier-sign/pkg/validation"
)

// Domain errors for signing request operations.
var (
	ErrNotFound        = errors.New("signing request not found")
	ErrDuplicate       = errors.New("signing request token already exists")
	ErrUnknownDocument = errors.New("unknown document code")
	ErrNotSelected     = errors.New("document is not selected for this request")
	ErrNotAccepted     = errors.New("document kind does not accept this data")
	ErrNoDocuments     = errors.New("at least one document must be selected")
	ErrTooLarge        = errors.New("upload exceeds the maximum size")
	ErrMissingEvidence = errors.New("no evidence supplied for document")
	ErrMalformed       = errors.New("upload is not a valid base64 data url")
)

// MapHTTPStatus maps domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnknownDocument),
		errors.Is(err, ErrNotSelected),
		errors.Is(err, ErrNotAccepted),
		errors.Is(err, ErrNoDocuments),
		errors.Is(err, ErrMissingEvidence),
		errors.Is(err, ErrMalformed),
		errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
