package assembly

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/courier-sign/pkg/handlers"
	"github.com/JaimeStill/courier-sign/pkg/routes"
)

// DiagnosticsHeader carries the number of degraded items of a downloaded artifact.
const DiagnosticsHeader = "X-Artifact-Diagnostics"

type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "assembly"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the artifact routes, mounted as a child of the request group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/{token}/artifacts",
		Description: "Signed artifact downloads",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/master", Handler: h.Master},
			{Method: "GET", Pattern: "/html", Handler: h.HTMLPackage},
			{Method: "GET", Pattern: "/summary", Handler: h.Summary},
		},
	}
}

// InspectRoutes returns the field inspection routes.
func (h *Handler) InspectRoutes() routes.Group {
	return routes.Group{
		Prefix:      "/inspect",
		Description: "Form field inspection",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Inspect},
			{Method: "POST", Pattern: "", Handler: h.InspectUpload},
		},
	}
}

func (h *Handler) Master(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.sys.Master(r.Context(), r.PathValue("token"))
	h.respond(w, artifact, err)
}

func (h *Handler) HTMLPackage(w http.ResponseWriter, r *http.Request) {
	artifact, err := h.sys.HTMLPackage(r.Context(), r.PathValue("token"))
	h.respond(w, artifact, err)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	appendix, _ := strconv.ParseBool(r.URL.Query().Get("appendix"))
	artifact, err := h.sys.Summary(r.Context(), r.PathValue("token"), appendix)
	h.respond(w, artifact, err)
}

func (h *Handler) Inspect(w http.ResponseWriter, r *http.Request) {
	result, err := h.sys.Inspect(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) InspectUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	result, err := h.sys.InspectUpload(r.Context(), data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) respond(w http.ResponseWriter, artifact *Artifact, err error) {
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set(DiagnosticsHeader, strconv.Itoa(len(artifact.Diagnostics)))
	handlers.RespondFile(w, artifact.Name, artifact.ContentType, artifact.Data)
}
