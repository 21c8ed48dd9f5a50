package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/benirage/console/internal/access"
	"github.com/benirage/console/internal/announcements"
	"github.com/benirage/console/internal/auth"
	"github.com/benirage/console/internal/locale"
	"github.com/benirage/console/internal/notifications"
	"github.com/benirage/console/internal/observability"
	"github.com/benirage/console/internal/roles"
	"github.com/benirage/console/internal/shared"
	"github.com/benirage/console/internal/submissions"
	"github.com/benirage/console/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Access         access.Middleware

	AuthHandler          *auth.Handler
	AccessHandler        *access.Handler
	RolesHandler         *roles.Handler
	SubmissionsHandler   *submissions.Handler
	NotificationsHandler *notifications.Handler
	AnnouncementsHandler *announcements.Handler
	LocaleHandler        *locale.Handler
	JobHandler           *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Access:         params.Access,
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
	if params.AccessHandler != nil {
		r.Route("/me", params.AccessHandler.MountRoutes)
	}
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.SubmissionsHandler != nil {
		r.Route("/submissions", params.SubmissionsHandler.MountRoutes)
	}
	if params.NotificationsHandler != nil {
		r.Route("/notifications", params.NotificationsHandler.MountRoutes)
	}
	if params.AnnouncementsHandler != nil {
		r.Route("/announcements", params.AnnouncementsHandler.MountRoutes)
	}
	if params.LocaleHandler != nil {
		r.Route("/language", params.LocaleHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
