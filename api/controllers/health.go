package controllers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/packfinderz-offers/api/responses"
	"github.com/angelmondragon/packfinderz-offers/pkg/config"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency the readiness check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names a Pinger in readiness output.
type Dependency struct {
	Name   string
	Pinger Pinger
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Offers-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency concurrently and reports 503 with the
// failing names when any is down.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Offers-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		failures := make([]error, len(deps))
		var g errgroup.Group
		for i, dep := range deps {
			if dep.Pinger == nil {
				continue
			}
			i, dep := i, dep
			g.Go(func() error {
				failures[i] = dep.Pinger.Ping(ctx)
				return nil
			})
		}
		_ = g.Wait()

		checks := make(map[string]string, len(deps))
		var down []string
		for i, dep := range deps {
			switch {
			case dep.Pinger == nil:
				checks[dep.Name] = "disabled"
			case failures[i] != nil:
				checks[dep.Name] = "down"
				down = append(down, dep.Name)
				if logg != nil {
					logg.Error(logg.WithField(r.Context(), "dependency", dep.Name), "health.dependency_down", failures[i])
				}
			default:
				checks[dep.Name] = "up"
			}
		}

		if len(down) > 0 {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").
				WithDetails(map[string]any{"down": down}))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
