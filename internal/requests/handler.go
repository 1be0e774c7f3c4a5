package requests

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/JaimeStill/courier-sign/pkg/handlers"
	"github.com/JaimeStill/courier-sign/pkg/pagination"
	"github.com/JaimeStill/courier-sign/pkg/routes"
	"github.com/JaimeStill/courier-sign/pkg/validation"
)

type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
	maxBody    int64
}

// NewHandler creates the request handler. maxBody bounds JSON request bodies.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config, maxBody int64) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "requests"),
		pagination: pagination,
		maxBody:    maxBody,
	}
}

// Routes returns the request routes. Children are mounted under /{token} by callers
// that add artifact routes.
func (h *Handler) Routes(children ...routes.Group) routes.Group {
	return routes.Group{
		Prefix:      "/requests",
		Description: "Signing request lifecycle",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{token}", Handler: h.Find},
			{Method: "PUT", Pattern: "/{token}/info", Handler: h.SaveInfo},
			{Method: "POST", Pattern: "/{token}/signatures/{code}", Handler: h.Sign},
			{Method: "DELETE", Pattern: "/{token}", Handler: h.Delete},
		},
		Children: children,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.Find(r.Context(), r.PathValue("token"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	result, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) SaveInfo(w http.ResponseWriter, r *http.Request) {
	var cmd SaveInfoCommand
	if !h.decode(w, r, &cmd) {
		return
	}
	if cmd.IPAddress == "" {
		cmd.IPAddress = clientIP(r)
	}

	result, err := h.sys.SaveInfo(r.Context(), r.PathValue("token"), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Sign(w http.ResponseWriter, r *http.Request) {
	var cmd SignCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	result, err := h.sys.Sign(r.Context(), r.PathValue("token"), r.PathValue("code"), cmd)
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Delete(r.Context(), r.PathValue("token")); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrTooLarge)
			return false
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if details := validation.Details(err); details != nil {
		handlers.RespondDetails(w, h.logger, http.StatusBadRequest, "invalid request body", details)
		return
	}
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

// clientIP prefers the first X-Forwarded-For hop and falls back to the remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return ""
}
