package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/portafolio-docente/portafolio-docente/internal/platform/httpx"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation("malformed JSON body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		// Payload-shape failures respond exactly like bad credentials so the
		// endpoint leaks nothing about which accounts exist.
		httpx.RespondError(w, h.logger, shared.ErrInvalidCredentials)
		return
	}
	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"user":      result.User,
	})
}

type switchRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// HandleSwitchActiveRole issues a token pinned to one of the caller's active
// roles. Mounted under /roles/switch-active behind the authentication gate.
func (h *Handler) HandleSwitchActiveRole(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, h.logger, shared.ErrUnauthenticated)
		return
	}
	var req switchRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation("malformed JSON body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, h.logger, shared.Validation("role is required"))
		return
	}
	result, err := h.service.SwitchActiveRole(r.Context(), principal.UserID, principal.Email, req.Role)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token":       result.Token,
		"activeRole":  result.ActiveRole,
		"permissions": result.Permissions,
	})
}
