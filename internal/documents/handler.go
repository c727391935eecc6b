package documents

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
	"github.com/portafolio-docente/portafolio-docente/internal/platform/httpx"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// Gate is the slice of the authorization middleware this handler mounts
// routes behind.
type Gate interface {
	RequireAny(permissions ...string) func(http.Handler) http.Handler
	RequireOwnerOrRole(ownerOf func(*http.Request) (int64, error), overrideRoles ...string) func(http.Handler) http.Handler
}

// Handler wires the document HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      Gate
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate Gate) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers document routes under /documents.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(catalog.PermDocumentsUpload))
		r.Post("/", h.upload)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(catalog.PermDocumentsView, catalog.PermDocumentsVerify))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireOwnerOrRole(h.ownerOf, catalog.RoleVerifier, catalog.RoleAdministrator))
		r.Get("/{documentID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAny(catalog.PermDocumentsVerify))
		r.Put("/{documentID}/verify", h.verify)
	})
}

func (h *Handler) ownerOf(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "documentID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.Validation("invalid document id")
	}
	return h.service.OwnerOf(r.Context(), id)
}

type uploadRequest struct {
	SubjectID int64  `json:"subjectId" validate:"required,gt=0"`
	Title     string `json:"title" validate:"required,max=200"`
	FileName  string `json:"fileName" validate:"required,max=255"`
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, h.logger, shared.ErrUnauthenticated)
		return
	}
	var req uploadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation("malformed JSON body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation(err.Error()))
		return
	}
	created, err := h.service.Upload(r.Context(), principal.UserID, req.SubjectID, req.Title, req.FileName)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, h.logger, shared.ErrUnauthenticated)
		return
	}
	var filters ListFilters
	filters.SubjectID, _ = strconv.ParseInt(r.URL.Query().Get("subject_id"), 10, 64)
	filters.Status = r.URL.Query().Get("status")
	// Teachers only ever see their own uploads; verifiers and admins may
	// browse everything.
	if principal.HasRole(catalog.RoleVerifier) || principal.HasRole(catalog.RoleAdministrator) {
		filters.OwnerID, _ = strconv.ParseInt(r.URL.Query().Get("owner_id"), 10, 64)
	} else {
		filters.OwnerID = principal.UserID
	}
	list, err := h.service.List(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": list, "total": len(list)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "documentID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, h.logger, shared.Validation("invalid document id"))
		return
	}
	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

type verifyRequest struct {
	Approve     bool   `json:"approve"`
	Observation string `json:"observation" validate:"max=1000"`
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, h.logger, shared.ErrUnauthenticated)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "documentID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.RespondError(w, h.logger, shared.Validation("invalid document id"))
		return
	}
	var req verifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation("malformed JSON body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation(err.Error()))
		return
	}
	doc, err := h.service.Verify(r.Context(), principal.UserID, id, req.Approve, req.Observation)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}
