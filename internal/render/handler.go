package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/JaimeStill/courier-sign/internal/config"
	"github.com/JaimeStill/courier-sign/pkg/handlers"
	"github.com/JaimeStill/courier-sign/pkg/routes"
	"github.com/JaimeStill/courier-sign/pkg/validation"
)

// Error messages match the render service contract.
var (
	ErrInvalidJSON = errors.New("invalid JSON body")
	ErrContentType = errors.New("content type must be application/json")
	ErrTooLarge    = errors.New("request body too large")
	ErrMissingHTML = errors.New(`missing or invalid "html" in body`)
)

// Converter turns HTML into PDF.
type Converter interface {
	HTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

type Handler struct {
	converter Converter
	cfg       *config.RenderConfig
	logger    *slog.Logger
}

func NewHandler(converter Converter, cfg *config.RenderConfig, logger *slog.Logger) *Handler {
	return &Handler{
		converter: converter,
		cfg:       cfg,
		logger:    logger.With("handler", "render"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/render",
		Description: "HTML to PDF rendering",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/html-to-pdf", Handler: h.HTMLToPDF},
			{Method: "POST", Pattern: "/contract", Handler: h.Contract},
		},
	}
}

// MapHTTPStatus maps render errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var serr *ServiceError
	switch {
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrContentType), errors.Is(err, ErrMissingHTML), errors.Is(err, ErrInvalidJSON), errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	case errors.As(err, &serr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type htmlBody struct {
	HTML any `json:"html"`
}

func (h *Handler) HTMLToPDF(w http.ResponseWriter, r *http.Request) {
	var body htmlBody
	if err := h.decode(w, r, h.cfg.HTMLBodyLimitBytes(), &body); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	html, ok := body.HTML.(string)
	if !ok || html == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingHTML)
		return
	}

	h.convert(w, r, html, "sozlesme.pdf")
}

func (h *Handler) Contract(w http.ResponseWriter, r *http.Request) {
	var cmd ContractCommand
	if err := h.decode(w, r, h.cfg.ContractBodyLimitBytes(), &cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.validateContract(cmd); err != nil {
		if details := validation.Details(err); details != nil {
			handlers.RespondDetails(w, h.logger, http.StatusBadRequest, "invalid request body", details)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	html, err := ContractHTML(cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	h.convert(w, r, html, "contract.pdf")
}

func (h *Handler) validateContract(cmd ContractCommand) error {
	err := validation.Struct(cmd)

	limit := h.cfg.SignatureLimitBytes()
	if limit > 0 && int64(len(cmd.SignaturePNG)) > limit {
		over := validation.FieldError{
			Field:   "signaturePng",
			Rule:    "max",
			Message: fmt.Sprintf("signaturePng must be at most %d bytes", limit),
		}
		var verr *validation.Error
		if errors.As(err, &verr) {
			verr.Fields = append(verr.Fields, over)
			return verr
		}
		if err != nil {
			return err
		}
		return &validation.Error{Fields: []validation.FieldError{over}}
	}
	return err
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request, html, filename string) {
	pdf, err := h.converter.HTMLToPDF(r.Context(), html)
	if err != nil {
		var serr *ServiceError
		if errors.As(err, &serr) {
			h.logger.Error("render service failed", "status", serr.Status, "error", serr.Message)
			handlers.RespondJSON(w, http.StatusBadGateway, serr)
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, limit int64, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return ErrContentType
	}
	if limit > 0 && r.ContentLength > limit {
		return ErrTooLarge
	}
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrTooLarge
		}
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}
