package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/portafolio-docente/portafolio-docente/internal/auth"
	"github.com/portafolio-docente/portafolio-docente/internal/platform/httpx"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
	"github.com/portafolio-docente/portafolio-docente/internal/users"
)

// UserSource loads the live user record backing a token subject.
type UserSource interface {
	GetActive(ctx context.Context, id int64) (users.User, error)
}

// Middleware wires authorization gates for HTTP handlers. Every gate decodes
// the bearer token, re-loads the user and the active assignment rows, and
// only then evaluates the predicate. Middleware failures short-circuit
// before the route handler runs.
type Middleware struct {
	Logger   *slog.Logger
	Tokens   *auth.TokenCodec
	Users    UserSource
	Store    AssignmentSource
	Resolver *Resolver
}

// RequireAuthenticated admits any request with a valid token and a live,
// active user. The resolved principal is attached to the request context.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := m.authenticate(r)
			if err != nil {
				httpx.RespondError(w, m.Logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRoles admits users holding at least one of the allowed roles.
func (m Middleware) RequireRoles(rolesAllowed ...string) func(http.Handler) http.Handler {
	normalized := normalize(rolesAllowed)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := m.authenticate(r)
			if err != nil {
				httpx.RespondError(w, m.Logger, err)
				return
			}
			if !hasAny(principal.Roles, normalized) {
				httpx.RespondError(w, m.Logger, shared.Forbidden(normalized...))
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAny admits users whose effective permission set contains at least
// one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.requirePermissions(false, perms)
}

// RequireAll admits users whose effective permission set contains every
// required permission.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.requirePermissions(true, perms)
}

func (m Middleware) requirePermissions(requireAll bool, perms []string) func(http.Handler) http.Handler {
	normalized := normalize(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := m.authenticate(r)
			if err != nil {
				httpx.RespondError(w, m.Logger, err)
				return
			}
			if len(normalized) > 0 {
				effective, err := m.Resolver.ResolvePermissions(r.Context(), principal.UserID)
				if err != nil {
					httpx.RespondError(w, m.Logger, err)
					return
				}
				granted := make([]string, 0, len(effective))
				for p := range effective {
					granted = append(granted, p)
				}
				ok := hasAny(granted, normalized)
				if requireAll {
					ok = hasAll(granted, normalized)
				}
				if !ok {
					httpx.RespondError(w, m.Logger, shared.Forbidden(normalized...))
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireOwnerOrRole admits the resource owner, or anyone holding one of the
// override roles. ownerOf resolves the owning user id from the request;
// resolution failures map to NOT_FOUND rather than FORBIDDEN so probing a
// missing resource reveals nothing about its ownership.
func (m Middleware) RequireOwnerOrRole(ownerOf func(r *http.Request) (int64, error), overrideRoles ...string) func(http.Handler) http.Handler {
	normalized := normalize(overrideRoles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := m.authenticate(r)
			if err != nil {
				httpx.RespondError(w, m.Logger, err)
				return
			}
			ctx := shared.ContextWithPrincipal(r.Context(), principal)
			r = r.WithContext(ctx)
			if hasAny(principal.Roles, normalized) {
				next.ServeHTTP(w, r)
				return
			}
			ownerID, err := ownerOf(r)
			if err != nil {
				httpx.RespondError(w, m.Logger, err)
				return
			}
			if ownerID != principal.UserID {
				httpx.RespondError(w, m.Logger, shared.Forbidden(normalized...))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate re-validates the request against live data: token signature
// and expiry, then the user row, then the assignment store. The token's
// embedded role list is only consulted to preserve an active-role context
// that is still held.
func (m Middleware) authenticate(r *http.Request) (*shared.Principal, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, shared.ErrUnauthenticated
	}
	claims, err := m.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := m.Users.GetActive(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrUserNotFound) {
			return nil, shared.ErrUnauthenticated
		}
		return nil, err
	}

	active, err := m.Store.ActiveRolesFor(r.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	roles := make([]string, 0, len(active))
	for _, a := range active {
		roles = append(roles, a.RoleName)
	}

	principal := &shared.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  roles,
	}
	if claims.ActiveRole != "" && principal.HasRole(claims.ActiveRole) {
		principal.ActiveRole = claims.ActiveRole
	}
	if pr := principalFrom(active); pr != nil {
		principal.PrincipalRole = pr.Name
	}
	return principal, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func normalize(values []string) []string {
	unique := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "" {
			continue
		}
		if _, ok := unique[v]; ok {
			continue
		}
		unique[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func hasAny(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		set[strings.ToLower(g)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

func hasAll(granted []string, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		set[strings.ToLower(g)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
