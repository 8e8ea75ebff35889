package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hotel-audit/hotelaudit/internal/dashboard"
	"github.com/hotel-audit/hotelaudit/internal/hotels"
	"github.com/hotel-audit/hotelaudit/internal/observability"
	"github.com/hotel-audit/hotelaudit/internal/platform/httpx"
	"github.com/hotel-audit/hotelaudit/internal/reporttargets"
	"github.com/hotel-audit/hotelaudit/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	ReportTargetsHandler *reporttargets.Handler
	DashboardHandler     *dashboard.Handler
	HotelsHandler        *hotels.Handler
	JobHandler           *jobs.Handler

	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if params.Ready != nil {
			if err := params.Ready(r.Context()); err != nil {
				params.Logger.Warn("readiness check", slog.Any("error", err))
				httpx.Problem(w, http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), "")
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/report-types", reporttargets.ListReportTypes)
		if params.ReportTargetsHandler != nil {
			api.Route("/report-targets", params.ReportTargetsHandler.MountRoutes)
		}
		if params.HotelsHandler != nil {
			api.Route("/hotels", params.HotelsHandler.MountRoutes)
		}
		if params.DashboardHandler != nil {
			api.Route("/dashboard", params.DashboardHandler.MountRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
