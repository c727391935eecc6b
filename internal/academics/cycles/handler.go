package cycles

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/portafolio-docente/portafolio-docente/internal/platform/httpx"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// Handler manages academic-cycle endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers cycle routes. The router applies view/edit gates.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{cycleID}", h.get)
}

// MountAdminRoutes registers the mutating routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/{cycleID}", h.update)
	r.Put("/{cycleID}/open", h.setOpen)
}

type cyclePayload struct {
	Code     string    `json:"code" validate:"required,max=20"`
	Name     string    `json:"name" validate:"required,max=120"`
	StartsOn time.Time `json:"starts_on" validate:"required"`
	EndsOn   time.Time `json:"ends_on" validate:"required"`
	IsOpen   bool      `json:"is_open"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"cycles": list})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "cycleID")
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	payload, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	created, err := h.service.Create(r.Context(), payload)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	payload, err := h.decode(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.Update(r.Context(), pathID(r, "cycleID"), payload); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) setOpen(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Open bool `json:"open"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation("malformed JSON body"))
		return
	}
	if err := h.service.SetOpen(r.Context(), pathID(r, "cycleID"), body.Open); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) decode(r *http.Request) (Cycle, error) {
	var payload cyclePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		return Cycle{}, shared.Validation("malformed JSON body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return Cycle{}, shared.Validation(err.Error())
	}
	return Cycle{
		Code:     payload.Code,
		Name:     payload.Name,
		StartsOn: payload.StartsOn,
		EndsOn:   payload.EndsOn,
		IsOpen:   payload.IsOpen,
	}, nil
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id
}
