package reporttargets

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
	"github.com/hotel-audit/hotelaudit/internal/platform/httpx"
)

// TargetService is the behaviour the HTTP layer needs from Service.
type TargetService interface {
	TargetsByType(ctx context.Context) (map[compliance.ReportType]compliance.ReportTarget, error)
	Upsert(ctx context.Context, in UpsertInput) (compliance.ReportTarget, error)
}

// Handler exposes report target endpoints.
type Handler struct {
	logger  *slog.Logger
	service TargetService
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service TargetService) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report target routes relative to /api/report-targets.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.upsert)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	targets, err := h.service.TargetsByType(r.Context())
	if err != nil {
		h.logger.Error("list report targets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, targets)
}

type validationResponse struct {
	Errors []FieldError `json:"errors"`
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var in UpsertInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	target, err := h.service.Upsert(r.Context(), in)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			httpx.JSON(w, http.StatusBadRequest, validationResponse{Errors: verr.Fields})
			return
		}
		h.logger.Error("upsert report target", slog.String("report_type", in.ReportType), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("report target saved",
		slog.String("report_type", string(target.ReportType)),
		slog.String("target_type", string(target.Kind)),
		slog.String("target_time", target.TargetTime),
	)
	httpx.JSON(w, http.StatusOK, target)
}

type reportTypeView struct {
	ReportType compliance.ReportType `json:"report_type"`
	ReportName string                `json:"report_name"`
}

// ListReportTypes serves the registry for admin screens.
func ListReportTypes(w http.ResponseWriter, r *http.Request) {
	types := compliance.ReportTypes()
	out := make([]reportTypeView, 0, len(types))
	for _, info := range types {
		out = append(out, reportTypeView{ReportType: info.Type, ReportName: info.DisplayName})
	}
	httpx.JSON(w, http.StatusOK, out)
}
