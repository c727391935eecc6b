package assignment

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// passGate injects a fixed principal instead of decoding tokens, so handler
// tests exercise routing and payload handling in isolation.
type passGate struct {
	principal *shared.Principal
}

func (g passGate) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), g.principal)))
	})
}

func (g passGate) RequireAuthenticated() func(http.Handler) http.Handler {
	return g.inject
}

func (g passGate) RequireRoles(_ ...string) func(http.Handler) http.Handler {
	return g.inject
}

func newHandlerFixture(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()
	svc, _, _ := newAssignmentFixture()
	admin := &shared.Principal{UserID: 99, Email: "admin@unsaac.edu.pe", Roles: []string{catalog.RoleAdministrator}}
	handler := NewHandler(slog.New(slog.DiscardHandler), svc, passGate{principal: admin})
	router := chi.NewRouter()
	router.Route("/roles", handler.MountRoutes)
	return router, svc
}

func TestListCatalogEndpoint(t *testing.T) {
	router, _ := newHandlerFixture(t)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Roles []catalog.Role `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Roles, 3)
	require.Equal(t, catalog.RoleAdministrator, body.Roles[0].Name)
}

func TestAssignEndpoint(t *testing.T) {
	router, _ := newHandlerFixture(t)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/roles/assign",
		strings.NewReader(`{"userId":1,"roleName":"teacher","notes":"new hire"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		AssignmentID int64  `json:"assignmentId"`
		UserID       int64  `json:"userId"`
		RoleName     string `json:"roleName"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(1), body.UserID)
	require.Equal(t, "teacher", body.RoleName)
	require.NotZero(t, body.AssignmentID)
}

func TestAssignEndpointRejectsUnknownRole(t *testing.T) {
	router, _ := newHandlerFixture(t)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/roles/assign",
		strings.NewReader(`{"userId":1,"roleName":"superuser"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "INVALID_ROLE", body.Code)
}

func TestAssignEndpointRejectsMalformedBody(t *testing.T) {
	router, _ := newHandlerFixture(t)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/roles/assign", strings.NewReader(`{`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMutatingEndpointsWithoutPrincipal(t *testing.T) {
	svc, _, _ := newAssignmentFixture()
	// A gate that passes requests through without attaching a principal.
	handler := NewHandler(slog.New(slog.DiscardHandler), svc, passGate{})
	router := chi.NewRouter()
	router.Route("/roles", handler.MountRoutes)

	assign := httptest.NewRecorder()
	router.ServeHTTP(assign, httptest.NewRequest(http.MethodPost, "/roles/assign",
		strings.NewReader(`{"userId":1,"roleName":"teacher"}`)))
	require.Equal(t, http.StatusUnauthorized, assign.Code)

	revoke := httptest.NewRecorder()
	router.ServeHTTP(revoke, httptest.NewRequest(http.MethodDelete, "/roles/revoke",
		strings.NewReader(`{"userId":1,"roleName":"teacher"}`)))
	require.Equal(t, http.StatusUnauthorized, revoke.Code)
}

func TestRevokeEndpoint(t *testing.T) {
	router, svc := newHandlerFixture(t)
	_, err := svc.Assign(httptest.NewRequest(http.MethodGet, "/", nil).Context(), 1, catalog.RoleTeacher, 99, "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/roles/revoke",
		strings.NewReader(`{"userId":1,"roleName":"teacher","reason":"rotation"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestRevokeEndpointWithoutActiveAssignment(t *testing.T) {
	router, _ := newHandlerFixture(t)
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodDelete, "/roles/revoke",
		strings.NewReader(`{"userId":1,"roleName":"teacher"}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ROLE_NOT_ACTIVE", body.Code)
}

func TestMyRolesEndpoint(t *testing.T) {
	router, svc := newHandlerFixture(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	// The fixture principal is user 99; grant them two roles.
	_, err := svc.repo.Insert(ctx, 99, catalog.RoleTeacher, 1, "")
	require.NoError(t, err)
	_, err = svc.repo.Insert(ctx, 99, catalog.RoleAdministrator, 1, "")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/roles/mine", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Roles []struct {
			Name        string   `json:"name"`
			Permissions []string `json:"permissions"`
		} `json:"roles"`
		IsMultiRole bool `json:"isMultiRole"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.IsMultiRole)
	require.Len(t, body.Roles, 2)
	require.NotEmpty(t, body.Roles[0].Permissions)
}
