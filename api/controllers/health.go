package controllers

import (
	"context"
	"net/http"

	"github.com/nearbuyhq/nearbuy-backend/api/responses"
	"github.com/nearbuyhq/nearbuy-backend/pkg/config"
	"github.com/nearbuyhq/nearbuy-backend/pkg/errors"
	"github.com/nearbuyhq/nearbuy-backend/pkg/logger"
)

// Pinger is any dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-NearBuy-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the primary store and the cache. The search index is
// deliberately excluded: writes to it are best-effort, so its downtime does
// not make the API unready.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-NearBuy-Env", cfg.App.Env)

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, errors.Wrap(errors.CodeDependency, err, name+" unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
