package reporttargets

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
)

func newTestRouter(repo *stubRepo, cache *stubInvalidator) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo, cache, logger))
	r := chi.NewRouter()
	r.Route("/api/report-targets", h.MountRoutes)
	r.Get("/api/report-types", ListReportTypes)
	return r
}

func TestListTargetsKeyedByReportType(t *testing.T) {
	repo := &stubRepo{targets: []compliance.ReportTarget{
		{ID: 7, ReportType: compliance.ReportARAging, Kind: compliance.ScheduleWeekly, TargetTime: "15:00:00", DayOfWeek: intPtr(3)},
	}}
	rec := httptest.NewRecorder()
	newTestRouter(repo, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report-targets", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Contains(t, body, "ar_aging")
	assert.Equal(t, "weekly", body["ar_aging"]["target_type"])
	assert.EqualValues(t, 3, body["ar_aging"]["day_of_week"])
	assert.Nil(t, body["ar_aging"]["day_of_month"])
}

func TestListTargetsEmptyIsObject(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubRepo{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report-targets", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestListTargetsFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubRepo{listErr: errors.New("db down")}, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report-targets", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPostTargetUpserts(t *testing.T) {
	repo := &stubRepo{}
	cache := &stubInvalidator{}
	body := `{"report_type":"gl_closing","target_type":"monthly","target_time":"17:00","day_of_month":31}`
	rec := httptest.NewRecorder()
	newTestRouter(repo, cache).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/report-targets", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var got compliance.ReportTarget
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, compliance.ReportGLClosing, got.ReportType)
	require.NotNil(t, got.DayOfMonth)
	assert.Equal(t, 31, *got.DayOfMonth)
	assert.Equal(t, 1, cache.bumps)
}

func TestPostTargetValidationErrors(t *testing.T) {
	repo := &stubRepo{}
	body := `{"report_type":"ar_aging","target_type":"weekly","target_time":"25:00"}`
	rec := httptest.NewRecorder()
	newTestRouter(repo, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/report-targets", strings.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var got struct {
		Errors []FieldError `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	fields := map[string]bool{}
	for _, fe := range got.Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["target_time"])
	assert.True(t, fields["day_of_week"])
	assert.Empty(t, repo.upserted)
}

func TestPostTargetMalformedBody(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubRepo{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/report-targets", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListReportTypes(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubRepo{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/report-types", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []reportTypeView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Len(t, got, len(compliance.ReportTypes()))
	for _, v := range got {
		assert.Equal(t, compliance.Label(v.ReportType), v.ReportName)
	}
}
