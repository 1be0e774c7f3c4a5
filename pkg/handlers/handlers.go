// Package handlers provides HTTP response utilities for JSON APIs.
// These stateless functions standardize response formatting across handlers.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Hint    string `json:"hint,omitempty"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON writes a JSON response with the given status code and data.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs the error and writes {"error": ...} along with any hints
// attached to err.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("handler error", "error", err, "status", status)
	RespondJSON(w, status, ErrorBody{
		Error: err.Error(),
		Hint:  strings.Join(errors.GetAllHints(err), "\n"),
	})
}

// RespondDetails writes an error body carrying structured details, used for
// validation failures.
func RespondDetails(w http.ResponseWriter, logger *slog.Logger, status int, msg string, details any) {
	logger.Warn("handler rejected request", "error", msg, "status", status)
	RespondJSON(w, status, ErrorBody{Error: msg, Details: details})
}

// RespondFile writes data as a downloadable attachment.
func RespondFile(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
