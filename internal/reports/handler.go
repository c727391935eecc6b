package reports

import (
	"log/slog"
	"net/http"
	"strconv"

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

// Handler wires the reporting HTTP endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    Gate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers report routes under /reports.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(catalog.PermReportsView))
		r.Get("/compliance/{cycleID}", h.compliance)
	})
}

func (h *Handler) compliance(w http.ResponseWriter, r *http.Request) {
	cycleID, err := strconv.ParseInt(chi.URLParam(r, "cycleID"), 10, 64)
	if err != nil || cycleID <= 0 {
		httpx.RespondError(w, h.logger, shared.Validation("invalid cycle id"))
		return
	}
	report, err := h.service.Compliance(r.Context(), cycleID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
