package hotels

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
	"github.com/hotel-audit/hotelaudit/internal/platform/httpx"
)

// Lister is implemented by Repository.
type Lister interface {
	ListHotels(ctx context.Context) ([]compliance.Hotel, error)
}

// Handler serves GET /api/hotels.
type Handler struct {
	logger *slog.Logger
	hotels Lister
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, hotels Lister) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, hotels: hotels}
}

// MountRoutes registers hotel routes relative to /api/hotels.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	hotels, err := h.hotels.ListHotels(r.Context())
	if err != nil {
		h.logger.Error("list hotels", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if hotels == nil {
		hotels = []compliance.Hotel{}
	}
	httpx.JSON(w, http.StatusOK, hotels)
}
