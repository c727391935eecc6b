package assignment

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
	"github.com/portafolio-docente/portafolio-docente/internal/platform/httpx"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// Gate is the slice of the authorization middleware this handler mounts
// routes behind.
type Gate interface {
	RequireAuthenticated() func(http.Handler) http.Handler
	RequireRoles(roles ...string) func(http.Handler) http.Handler
}

// Handler wires the role-management HTTP endpoints.
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

// MountRoutes registers role routes under /roles.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireAuthenticated())
		r.Get("/", h.listCatalog)
		r.Get("/mine", h.myRoles)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(catalog.RoleAdministrator))
		r.Post("/assign", h.assign)
		r.Delete("/revoke", h.revoke)
		r.Get("/{roleName}/users", h.usersWithRole)
		r.Get("/history/{userID}", h.history)
	})
}

func (h *Handler) listCatalog(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": catalog.List()})
}

type myRoleEntry struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	AssignedAt  time.Time `json:"assigned_at"`
}

func (h *Handler) myRoles(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, h.logger, shared.ErrUnauthenticated)
		return
	}
	active, err := h.service.ActiveRolesFor(r.Context(), principal.UserID)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	entries := make([]myRoleEntry, 0, len(active))
	for _, a := range active {
		role, ok := catalog.Get(a.RoleName)
		if !ok {
			// Assignments referencing retired catalog entries grant nothing.
			continue
		}
		entries = append(entries, myRoleEntry{
			Name:        role.Name,
			Description: role.Description,
			Permissions: role.Permissions,
			AssignedAt:  a.AssignedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"roles":       entries,
		"isMultiRole": len(entries) > 1,
	})
}

type assignRequest struct {
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	RoleName string `json:"roleName" validate:"required"`
	Notes    string `json:"notes" validate:"max=500"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, h.logger, shared.ErrUnauthenticated)
		return
	}
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation("malformed JSON body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation(err.Error()))
		return
	}
	created, err := h.service.Assign(r.Context(), req.UserID, req.RoleName, principal.UserID, req.Notes)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"assignmentId": created.ID,
		"userId":       created.UserID,
		"roleName":     created.RoleName,
	})
}

type revokeRequest struct {
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	RoleName string `json:"roleName" validate:"required"`
	Reason   string `json:"reason" validate:"max=500"`
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, h.logger, shared.ErrUnauthenticated)
		return
	}
	var req revokeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation("malformed JSON body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation(err.Error()))
		return
	}
	if err := h.service.Revoke(r.Context(), req.UserID, req.RoleName, principal.UserID, req.Reason); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) usersWithRole(w http.ResponseWriter, r *http.Request) {
	roleName := chi.URLParam(r, "roleName")
	activeOnly := r.URL.Query().Get("all") != "true"
	members, err := h.service.UsersWithRole(r.Context(), roleName, activeOnly)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"users": members,
		"total": len(members),
	})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		httpx.RespondError(w, h.logger, shared.Validation("invalid user id"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := h.service.HistoryFor(r.Context(), userID, limit)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"history": history})
}
