package rbac

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/portafolio-docente/portafolio-docente/internal/assignment"
	"github.com/portafolio-docente/portafolio-docente/internal/auth"
	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
	"github.com/portafolio-docente/portafolio-docente/internal/shared"
	"github.com/portafolio-docente/portafolio-docente/internal/users"
)

type fakeUsers struct {
	byID map[int64]users.User
}

func (f *fakeUsers) GetActive(_ context.Context, id int64) (users.User, error) {
	u, ok := f.byID[id]
	if !ok || !u.IsActive {
		return users.User{}, shared.ErrUserNotFound
	}
	return u, nil
}

type gateFixture struct {
	mw     Middleware
	tokens *auth.TokenCodec
	users  *fakeUsers
	store  *fakeStore
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	tokens := auth.NewTokenCodec("0123456789abcdef0123456789abcdef", "portafolio-test", time.Hour)
	us := &fakeUsers{byID: map[int64]users.User{
		1: {ID: 1, Email: "docente@unsaac.edu.pe", Name: "Docente", IsActive: true},
		2: {ID: 2, Email: "admin@unsaac.edu.pe", Name: "Admin", IsActive: true},
		3: {ID: 3, Email: "baja@unsaac.edu.pe", Name: "Baja", IsActive: false},
	}}
	store := &fakeStore{byUser: map[int64][]assignment.RoleAssignment{
		1: {{UserID: 1, RoleName: catalog.RoleTeacher, AssignedAt: at(1)}},
		2: {{UserID: 2, RoleName: catalog.RoleAdministrator, AssignedAt: at(1)}},
	}}
	mw := Middleware{
		Logger:   slog.New(slog.DiscardHandler),
		Tokens:   tokens,
		Users:    us,
		Store:    store,
		Resolver: NewResolver(store),
	}
	return &gateFixture{mw: mw, tokens: tokens, users: us, store: store}
}

func (f *gateFixture) request(t *testing.T, userID int64, roles []string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if userID > 0 {
		u := f.users.byID[userID]
		token, _, err := f.tokens.Issue(userID, u.Email, roles, "")
		require.NoError(t, err)
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := shared.PrincipalFromContext(r.Context())
		w.Header().Set("X-User", strconv.FormatInt(principal.UserID, 10))
		w.WriteHeader(http.StatusOK)
	})
}

func problemCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestRequireAuthenticatedRejectsMissingToken(t *testing.T) {
	f := newGateFixture(t)
	rec := httptest.NewRecorder()

	f.mw.RequireAuthenticated()(okHandler()).ServeHTTP(rec, f.request(t, 0, nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthenticatedAttachesPrincipal(t *testing.T) {
	f := newGateFixture(t)
	rec := httptest.NewRecorder()

	f.mw.RequireAuthenticated()(okHandler()).ServeHTTP(rec, f.request(t, 1, []string{catalog.RoleTeacher}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1", rec.Header().Get("X-User"))
}

func TestRequireAuthenticatedRejectsInactiveUser(t *testing.T) {
	f := newGateFixture(t)
	rec := httptest.NewRecorder()

	// Token was minted while the account existed; the live lookup fails now.
	f.mw.RequireAuthenticated()(okHandler()).ServeHTTP(rec, f.request(t, 3, []string{catalog.RoleTeacher}))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRevokedRoleDeniedOnNextRequest(t *testing.T) {
	f := newGateFixture(t)
	gate := f.mw.RequireRoles(catalog.RoleTeacher)(okHandler())

	req := f.request(t, 1, []string{catalog.RoleTeacher})
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Revoke the role. The token is unchanged and still within its TTL,
	// but the very next request must be denied.
	f.store.byUser[1] = nil
	req = f.request(t, 1, []string{catalog.RoleTeacher})
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN", problemCode(t, rec))
}

func TestRequireRolesIgnoresTokenRoleList(t *testing.T) {
	f := newGateFixture(t)
	rec := httptest.NewRecorder()

	// Token falsely claims administrator; the store says teacher only.
	req := f.request(t, 1, []string{catalog.RoleAdministrator})
	f.mw.RequireRoles(catalog.RoleAdministrator)(okHandler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAnyPermission(t *testing.T) {
	f := newGateFixture(t)

	rec := httptest.NewRecorder()
	req := f.request(t, 1, []string{catalog.RoleTeacher})
	f.mw.RequireAny(catalog.PermDocumentsUpload)(okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = f.request(t, 1, []string{catalog.RoleTeacher})
	f.mw.RequireAny(catalog.PermRolesAssign)(okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAllPermissions(t *testing.T) {
	f := newGateFixture(t)

	rec := httptest.NewRecorder()
	req := f.request(t, 2, []string{catalog.RoleAdministrator})
	f.mw.RequireAll(catalog.PermRolesAssign, catalog.PermRolesRevoke)(okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = f.request(t, 2, []string{catalog.RoleAdministrator})
	f.mw.RequireAll(catalog.PermRolesAssign, catalog.PermDocumentsUpload)(okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestForbiddenResponseNamesRequiredRoles(t *testing.T) {
	f := newGateFixture(t)
	rec := httptest.NewRecorder()

	req := f.request(t, 1, []string{catalog.RoleTeacher})
	f.mw.RequireRoles(catalog.RoleAdministrator)(okHandler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var body struct {
		Required []string `json:"required"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, []string{catalog.RoleAdministrator}, body.Required)
}

func TestRequireOwnerOrRole(t *testing.T) {
	f := newGateFixture(t)
	ownerOf := func(r *http.Request) (int64, error) { return 1, nil }
	gate := f.mw.RequireOwnerOrRole(ownerOf, catalog.RoleAdministrator)(okHandler())

	// Owner passes.
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, f.request(t, 1, []string{catalog.RoleTeacher}))
	require.Equal(t, http.StatusOK, rec.Code)

	// Administrator override passes without owning the resource.
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, f.request(t, 2, []string{catalog.RoleAdministrator}))
	require.Equal(t, http.StatusOK, rec.Code)

	// A different non-admin user is denied.
	f.store.byUser[3] = []assignment.RoleAssignment{{UserID: 3, RoleName: catalog.RoleTeacher, AssignedAt: at(1)}}
	f.users.byID[3] = users.User{ID: 3, Email: "otro@unsaac.edu.pe", Name: "Otro", IsActive: true}
	rec = httptest.NewRecorder()
	gate.ServeHTTP(rec, f.request(t, 3, []string{catalog.RoleTeacher}))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireOwnerOrRoleMissingResource(t *testing.T) {
	f := newGateFixture(t)
	ownerOf := func(r *http.Request) (int64, error) { return 0, shared.ErrNotFound }
	gate := f.mw.RequireOwnerOrRole(ownerOf, catalog.RoleAdministrator)(okHandler())

	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, f.request(t, 1, []string{catalog.RoleTeacher}))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
