package controllers

import (
	"context"
	"net/http"

	"github.com/clinmeta/cmdr-backend/api/responses"
	"github.com/clinmeta/cmdr-backend/pkg/config"
	pkgerrors "github.com/clinmeta/cmdr-backend/pkg/errors"
	"github.com/clinmeta/cmdr-backend/pkg/logger"
)

// Pinger is the health check surface a backing dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CMDR-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when every backing dependency answers a
// ping. Nil pingers are skipped so the check degrades with partial wiring.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-CMDR-Env", cfg.App.Env)

		checks := map[string]Pinger{
			"database": dbP,
			"redis":    redisP,
		}
		status := map[string]string{}
		for name, p := range checks {
			if p == nil {
				status[name] = "skipped"
				continue
			}
			if err := p.Ping(ctx); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unreachable"))
				return
			}
			status[name] = "ok"
		}

		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
