package importer

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
	"github.com/portafolio-docente/portafolio-docente/internal/platform/httpx"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// Gate is the slice of the authorization middleware this handler mounts
// routes behind.
type Gate interface {
	RequireAny(permissions ...string) func(http.Handler) http.Handler
}

// Handler wires the import HTTP endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    Gate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers import routes under /imports.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(catalog.PermImportsRun))
		r.Post("/roster", h.enqueueRoster)
		r.Get("/{jobID}", h.status)
	})
}

type rosterRequest struct {
	CSV string `json:"csv"`
}

func (h *Handler) enqueueRoster(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, h.logger, shared.ErrUnauthenticated)
		return
	}
	var req rosterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation("malformed JSON body"))
		return
	}
	status, err := h.service.Enqueue(r.Context(), principal.UserID, req.CSV)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, status)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, status)
}
