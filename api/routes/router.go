package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clinmeta/cmdr-backend/api/controllers"
	"github.com/clinmeta/cmdr-backend/api/middleware"
	"github.com/clinmeta/cmdr-backend/internal/activities"
	"github.com/clinmeta/cmdr-backend/internal/codelists"
	"github.com/clinmeta/cmdr-backend/internal/forms"
	"github.com/clinmeta/cmdr-backend/internal/libraries"
	"github.com/clinmeta/cmdr-backend/internal/terms"
	"github.com/clinmeta/cmdr-backend/pkg/config"
	"github.com/clinmeta/cmdr-backend/pkg/db"
	"github.com/clinmeta/cmdr-backend/pkg/logger"
	"github.com/clinmeta/cmdr-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Libraries  libraries.Service
	Codelists  codelists.Service
	Terms      terms.Service
	Activities activities.Service
	Forms      forms.Service
}

// NewRouter wires middleware, health checks, metrics and the versioned API.
// Everything under /api/v1 requires a bearer token.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	// Assign through locals so a nil client stays a nil interface.
	var dbP, redisP controllers.Pinger
	if dbClient != nil {
		dbP = dbClient
	}
	if redisClient != nil {
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/libraries", func(r chi.Router) {
			r.Get("/", controllers.LibraryList(svcs.Libraries, logg))
			r.Post("/", controllers.LibraryCreate(svcs.Libraries, logg))
		})

		r.Route("/codelists", func(r chi.Router) {
			r.Get("/", controllers.CodelistList(svcs.Codelists, logg))
			r.Post("/", controllers.CodelistCreate(svcs.Codelists, logg))
			r.Route("/{uid}", func(r chi.Router) {
				r.Get("/", controllers.CodelistGet(svcs.Codelists, logg))
				r.Patch("/", controllers.CodelistEdit(svcs.Codelists, logg))
				r.Delete("/", controllers.CodelistDelete(svcs.Codelists, logg))
				r.Get("/versions", controllers.CodelistVersions(svcs.Codelists, logg))
				r.Post("/versions", controllers.CodelistNewVersion(svcs.Codelists, logg))
				r.Get("/actions", controllers.CodelistActions(svcs.Codelists, logg))
				r.Post("/approvals", controllers.CodelistApprove(svcs.Codelists, logg))
				r.Post("/activations", controllers.CodelistReactivate(svcs.Codelists, logg))
				r.Delete("/activations", controllers.CodelistInactivate(svcs.Codelists, logg))
			})
		})

		r.Route("/terms", func(r chi.Router) {
			r.Get("/", controllers.TermList(svcs.Terms, logg))
			r.Post("/", controllers.TermCreate(svcs.Terms, logg))
			r.Route("/{uid}", func(r chi.Router) {
				r.Get("/", controllers.TermGet(svcs.Terms, logg))
				r.Patch("/", controllers.TermEdit(svcs.Terms, logg))
				r.Delete("/", controllers.TermDelete(svcs.Terms, logg))
				r.Get("/versions", controllers.TermVersions(svcs.Terms, logg))
				r.Post("/versions", controllers.TermNewVersion(svcs.Terms, logg))
				r.Get("/actions", controllers.TermActions(svcs.Terms, logg))
				r.Post("/approvals", controllers.TermApprove(svcs.Terms, logg))
				r.Post("/activations", controllers.TermReactivate(svcs.Terms, logg))
				r.Delete("/activations", controllers.TermInactivate(svcs.Terms, logg))
			})
		})

		r.Route("/activities", func(r chi.Router) {
			r.Get("/", controllers.ActivityList(svcs.Activities, logg))
			r.Post("/", controllers.ActivityCreate(svcs.Activities, logg))
			r.Route("/{uid}", func(r chi.Router) {
				r.Get("/", controllers.ActivityGet(svcs.Activities, logg))
				r.Patch("/", controllers.ActivityEdit(svcs.Activities, logg))
				r.Delete("/", controllers.ActivityDelete(svcs.Activities, logg))
				r.Get("/versions", controllers.ActivityVersions(svcs.Activities, logg))
				r.Post("/versions", controllers.ActivityNewVersion(svcs.Activities, logg))
				r.Get("/actions", controllers.ActivityActions(svcs.Activities, logg))
				r.Post("/approvals", controllers.ActivityApprove(svcs.Activities, logg))
				r.Post("/activations", controllers.ActivityReactivate(svcs.Activities, logg))
				r.Delete("/activations", controllers.ActivityInactivate(svcs.Activities, logg))
			})
		})

		r.Route("/forms", func(r chi.Router) {
			r.Get("/", controllers.FormList(svcs.Forms, logg))
			r.Post("/", controllers.FormCreate(svcs.Forms, logg))
			r.Route("/{uid}", func(r chi.Router) {
				r.Get("/", controllers.FormGet(svcs.Forms, logg))
				r.Patch("/", controllers.FormEdit(svcs.Forms, logg))
				r.Get("/versions", controllers.FormVersions(svcs.Forms, logg))
				r.Post("/versions", controllers.FormNewVersion(svcs.Forms, logg))
				r.Get("/actions", controllers.FormActions(svcs.Forms, logg))
				r.Post("/approvals", controllers.FormApprove(svcs.Forms, logg))
				r.Post("/activations", controllers.FormReactivate(svcs.Forms, logg))
				r.Delete("/activations", controllers.FormInactivate(svcs.Forms, logg))
			})
		})
	})

	return r
}
