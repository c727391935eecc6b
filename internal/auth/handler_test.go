package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	_ "github.com/portafolio-docente/portafolio-docente/testing"
)

func newLoginRouter(t *testing.T) *chi.Mux {
	t.Helper()
	svc, _, _ := newAuthFixture(t)
	handler := NewHandler(slog.New(slog.DiscardHandler), svc)
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)
	return router
}

func postLogin(router http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginEndpoint(t *testing.T) {
	router := newLoginRouter(t)

	rec := postLogin(router, `{"email":"docente@unsaac.edu.pe","password":"correct-horse-battery"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"token"`)
	require.Contains(t, rec.Body.String(), `"roles"`)
}

func TestLoginEndpointFailurePayloadsAreIdentical(t *testing.T) {
	router := newLoginRouter(t)

	unknown := postLogin(router, `{"email":"nadie@unsaac.edu.pe","password":"correct-horse-battery"}`)
	wrongPass := postLogin(router, `{"email":"docente@unsaac.edu.pe","password":"wrong-password!!"}`)
	inactive := postLogin(router, `{"email":"baja@unsaac.edu.pe","password":"correct-horse-battery"}`)
	// Even a payload that fails shape validation responds like bad
	// credentials, so probing reveals nothing.
	badShape := postLogin(router, `{"email":"not-an-email","password":"x"}`)

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, unknown.Code, wrongPass.Code)
	require.Equal(t, unknown.Code, inactive.Code)
	require.Equal(t, unknown.Code, badShape.Code)

	require.Equal(t, unknown.Body.String(), wrongPass.Body.String())
	require.Equal(t, unknown.Body.String(), inactive.Body.String())
	require.Equal(t, unknown.Body.String(), badShape.Body.String())
}
