package presentation

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RaikyD/studio-booking-service/internal/presentation/helpers"
)

type RouterDeps struct {
	Payments *PaymentsHandler
	Studio   *StudioHandler
	Gatherer prometheus.Gatherer
	// Health reports whether the backing store is reachable. Nil means healthy.
	Health func(ctx context.Context) error
}

func NewRouter(d RouterDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	d.Payments.Register(r)
	d.Studio.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r.Context()); err != nil {
				helpers.WriteText(w, http.StatusServiceUnavailable, "unavailable")
				return
			}
		}
		helpers.WriteText(w, http.StatusOK, "ok")
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	MountStatic(r)
	return r
}
