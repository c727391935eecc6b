package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/portafolio-docente/portafolio-docente/internal/academics/cycles"
	"github.com/portafolio-docente/portafolio-docente/internal/academics/subjects"
	"github.com/portafolio-docente/portafolio-docente/internal/assignment"
	"github.com/portafolio-docente/portafolio-docente/internal/auth"
	"github.com/portafolio-docente/portafolio-docente/internal/catalog"
	"github.com/portafolio-docente/portafolio-docente/internal/documents"
	"github.com/portafolio-docente/portafolio-docente/internal/importer"
	"github.com/portafolio-docente/portafolio-docente/internal/rbac"
	"github.com/portafolio-docente/portafolio-docente/internal/reports"
	"github.com/portafolio-docente/portafolio-docente/internal/users"
	"github.com/portafolio-docente/portafolio-docente/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	RolesHandler     *assignment.Handler
	CyclesHandler    *cycles.Handler
	SubjectsHandler  *subjects.Handler
	DocumentsHandler *documents.Handler
	ReportsHandler   *reports.Handler
	ImporterHandler  *importer.Handler
	JobHandler       *jobs.Handler
	RBAC             rbac.Middleware
}

// NewRouter constructs the chi.Router for the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Credential endpoints carry their own, much tighter limiter so a
		// password-guessing loop hits the wall before the general budget.
		r.Group(func(r chi.Router) {
			authLimit := 10
			if params.Config != nil && params.Config.AuthRateLimit > 0 {
				authLimit = params.Config.AuthRateLimit
			}
			r.Use(RateLimiter(params.Config, authLimit))
			r.Route("/auth", params.AuthHandler.MountRoutes)
		})

		r.Route("/roles", func(r chi.Router) {
			params.RolesHandler.MountRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(params.RBAC.RequireAuthenticated())
				r.Put("/switch-active", params.AuthHandler.HandleSwitchActiveRole)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(params.RBAC.RequireAny(catalog.PermUsersView))
			params.UsersHandler.MountRoutes(r)
		})

		r.Route("/cycles", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(params.RBAC.RequireAny(catalog.PermCyclesView))
				params.CyclesHandler.MountRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(params.RBAC.RequireAny(catalog.PermCyclesEdit))
				params.CyclesHandler.MountAdminRoutes(r)
			})
		})

		r.Route("/subjects", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(params.RBAC.RequireAny(catalog.PermSubjectsView))
				params.SubjectsHandler.MountRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(params.RBAC.RequireAny(catalog.PermSubjectsEdit))
				params.SubjectsHandler.MountAdminRoutes(r)
			})
		})

		r.Route("/documents", params.DocumentsHandler.MountRoutes)
		r.Route("/reports", params.ReportsHandler.MountRoutes)
		r.Route("/imports", params.ImporterHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
