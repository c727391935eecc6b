package subjects

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/portafolio-docente/portafolio-docente/internal/platform/httpx"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// Handler manages subject endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers the read-only subject routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{subjectID}", h.get)
}

// MountAdminRoutes registers the mutating routes.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Put("/{subjectID}", h.update)
	r.Put("/{subjectID}/teacher", h.assignTeacher)
}

type subjectPayload struct {
	CycleID int64  `json:"cycle_id" validate:"required,gt=0"`
	Code    string `json:"code" validate:"required,max=20"`
	Name    string `json:"name" validate:"required,max=160"`
	Credits int    `json:"credits" validate:"required,gt=0"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var filters ListFilters
	filters.CycleID, _ = strconv.ParseInt(r.URL.Query().Get("cycle_id"), 10, 64)
	filters.TeacherID, _ = strconv.ParseInt(r.URL.Query().Get("teacher_id"), 10, 64)
	list, err := h.service.List(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"subjects": list})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "subjectID"), 10, 64)
	subject, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, subject)
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
	id, _ := strconv.ParseInt(chi.URLParam(r, "subjectID"), 10, 64)
	if err := h.service.Update(r.Context(), id, payload); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) assignTeacher(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TeacherID *int64 `json:"teacher_id"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation("malformed JSON body"))
		return
	}
	id, _ := strconv.ParseInt(chi.URLParam(r, "subjectID"), 10, 64)
	if err := h.service.AssignTeacher(r.Context(), id, body.TeacherID); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) decode(r *http.Request) (Subject, error) {
	var payload subjectPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		return Subject{}, shared.Validation("malformed JSON body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return Subject{}, shared.Validation(err.Error())
	}
	return Subject{
		CycleID: payload.CycleID,
		Code:    payload.Code,
		Name:    payload.Name,
		Credits: payload.Credits,
	}, nil
}
