package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/attendance"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/auth"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/calendar"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/leave"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/observability"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/rbac"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/roles"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/shared"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/users"
	"github.com/mahesh42646/SkylithAdmin-sub001/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware

	AuthHandler        *auth.Handler
	RolesHandler       *roles.Handler
	UsersHandler       *users.Handler
	LeaveHandler       *leave.Handler
	AttendanceHandler  *attendance.Handler
	CalendarHandler    *calendar.Handler
	PermissionsHandler *rbac.PermissionsHandler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Skylith defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.RBACMiddleware.LoadPrincipal)

		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.LeaveHandler != nil {
			r.Route("/leaves", params.LeaveHandler.MountRoutes)
		}
		if params.AttendanceHandler != nil {
			r.Route("/attendance", params.AttendanceHandler.MountRoutes)
		}
		if params.CalendarHandler != nil {
			r.Route("/calendar", params.CalendarHandler.MountRoutes)
		}
		if params.PermissionsHandler != nil {
			r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
