package hotels

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
)

type stubLister struct {
	hotels []compliance.Hotel
	err    error
}

func (s stubLister) ListHotels(ctx context.Context) ([]compliance.Hotel, error) {
	return s.hotels, s.err
}

func serve(t *testing.T, lister Lister) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api/hotels", NewHandler(nil, lister).MountRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hotels", nil))
	return rec
}

func TestListHotels(t *testing.T) {
	rec := serve(t, stubLister{hotels: []compliance.Hotel{{ID: 2, Name: "Grand Bali"}, {ID: 1, Name: "Hotel Jakarta"}}})
	require.Equal(t, http.StatusOK, rec.Code)

	var got []compliance.Hotel
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, []compliance.Hotel{{ID: 2, Name: "Grand Bali"}, {ID: 1, Name: "Hotel Jakarta"}}, got)
}

func TestListHotelsEmpty(t *testing.T) {
	rec := serve(t, stubLister{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListHotelsFailure(t *testing.T) {
	rec := serve(t, stubLister{err: errors.New("db down")})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}
