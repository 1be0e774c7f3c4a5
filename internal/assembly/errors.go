package assembly

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/courier-sign/internal/compose"
	"github.com/JaimeStill/courier-sign/internal/raster"
	"github.com/JaimeStill/courier-sign/internal/requests"
	"github.com/JaimeStill/courier-sign/internal/source"
)

var (
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")
	ErrInvalidFile  = errors.New("invalid or missing file")
)

// MapHTTPStatus maps assembly errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, requests.ErrNotFound), errors.Is(err, source.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, source.ErrSourceUnavailable),
		errors.Is(err, source.ErrSourceTooLarge),
		errors.Is(err, raster.ErrNoPages):
		return http.StatusBadGateway
	case errors.Is(err, raster.ErrNothingToAssemble),
		errors.Is(err, compose.ErrBaseDocument),
		errors.Is(err, compose.ErrStructure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile), errors.Is(err, source.ErrURLNotAllowed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
