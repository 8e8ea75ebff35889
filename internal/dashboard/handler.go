package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
	"github.com/hotel-audit/hotelaudit/internal/platform/httpx"
)

// StatusService is the behaviour the handler needs from Service.
type StatusService interface {
	Status(ctx context.Context, filters compliance.Filters) ([]compliance.StatusRecord, error)
}

// QueryObserver records which filters dashboard clients use.
type QueryObserver interface {
	ObserveStatusQuery(filter string, records int)
}

// Handler serves the dashboard status endpoint.
type Handler struct {
	logger    *slog.Logger
	service   StatusService
	rateLimit int
	observer  QueryObserver
}

// NewHandler builds a Handler. rateLimit caps status requests per client per
// minute; zero disables limiting.
func NewHandler(logger *slog.Logger, service StatusService, rateLimit int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rateLimit: rateLimit}
}

// WithObserver attaches a query observer.
func (h *Handler) WithObserver(o QueryObserver) *Handler {
	if h != nil {
		h.observer = o
	}
	return h
}

// MountRoutes registers dashboard routes relative to /api/dashboard.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Group(func(gr chi.Router) {
		if h.rateLimit > 0 {
			gr.Use(httprate.Limit(h.rateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "")
				}),
			))
		}
		gr.Get("/status", h.status)
	})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	records, err := h.service.Status(r.Context(), filters)
	if err != nil {
		h.logger.Error("dashboard status", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "status laporan tidak dapat dimuat")
		return
	}
	if records == nil {
		records = []compliance.StatusRecord{}
	}
	if h.observer != nil {
		h.observer.ObserveStatusQuery(filterLabel(filters), len(records))
	}
	httpx.JSON(w, http.StatusOK, records)
}

// filterLabel names the filter combination with a bounded label set.
func filterLabel(f compliance.Filters) string {
	var parts []string
	if f.HotelID != nil {
		parts = append(parts, "hotel_id")
	}
	if f.ReportType != "" {
		parts = append(parts, "report_type")
	}
	if f.Status != compliance.StatusUnknown {
		parts = append(parts, "status")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

func parseFilters(r *http.Request) (compliance.Filters, error) {
	q := r.URL.Query()
	var f compliance.Filters
	if raw := strings.TrimSpace(q.Get("hotel_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return f, fmt.Errorf("%w: hotel_id must be a positive integer", httpx.ErrBadRequest)
		}
		f.HotelID = &id
	}
	f.ReportType = compliance.ReportType(strings.TrimSpace(q.Get("report_type")))
	if raw := q.Get("status"); raw != "" {
		status, err := compliance.ParseStatus(raw)
		if err != nil {
			return f, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err)
		}
		f.Status = status
	}
	return f, nil
}
