package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupKey struct {
	reportType ReportType
	hotelID    int64
}

type stubLookup struct {
	mu       sync.Mutex
	latest   map[lookupKey]time.Time
	failures map[lookupKey]error
	block    map[lookupKey]bool
	panics   map[lookupKey]bool
	calls    []lookupKey
	windows  map[lookupKey][2]time.Time
}

func newStubLookup() *stubLookup {
	return &stubLookup{
		latest:   map[lookupKey]time.Time{},
		failures: map[lookupKey]error{},
		block:    map[lookupKey]bool{},
		panics:   map[lookupKey]bool{},
		windows:  map[lookupKey][2]time.Time{},
	}
}

func (s *stubLookup) LatestSubmission(ctx context.Context, info ReportTypeInfo, hotelID int64, start, end time.Time) (*time.Time, error) {
	key := lookupKey{reportType: info.Type, hotelID: hotelID}
	s.mu.Lock()
	s.calls = append(s.calls, key)
	s.windows[key] = [2]time.Time{start, end}
	blocked := s.block[key]
	panics := s.panics[key]
	err := s.failures[key]
	last, ok := s.latest[key]
	s.mu.Unlock()

	if panics {
		panic("lookup exploded")
	}
	if blocked {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &last, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAggregator(lookup SubmissionLookup) *Aggregator {
	return NewAggregator(lookup, AggregatorConfig{Concurrency: 4, Timeout: time.Second, Location: time.UTC, Logger: discardLogger()})
}

func fixtureTargets() []ReportTarget {
	return []ReportTarget{
		{ReportType: ReportIncomeAudit, Kind: ScheduleDaily, TargetTime: "09:00"},
		{ReportType: ReportARAging, Kind: ScheduleWeekly, TargetTime: "15:00", DayOfWeek: intPtr(3)},
		{ReportType: ReportGLClosing, Kind: ScheduleMonthly, TargetTime: "17:00", DayOfMonth: intPtr(31)},
	}
}

func fixtureHotels() []Hotel {
	return []Hotel{{ID: 1, Name: "Hotel A"}, {ID: 2, Name: "Hotel B"}}
}

func TestAggregateScenarioDailyLateWithoutSubmission(t *testing.T) {
	agg := newTestAggregator(newStubLookup())
	targets := []ReportTarget{{ReportType: ReportIncomeAudit, Kind: ScheduleDaily, TargetTime: "09:00"}}
	hotels := []Hotel{{ID: 1, Name: "Hotel A"}}

	records := agg.Aggregate(context.Background(), hotels, targets, date(2024, time.March, 1, 10, 0, 0), Filters{})
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "Hotel A", rec.HotelName)
	assert.Equal(t, "Income Audit Daily", rec.ReportName)
	assert.Equal(t, StatusLate, rec.Status)
	assert.Nil(t, rec.LastSubmission)
	require.NotNil(t, rec.NextDeadline)
	assert.Equal(t, date(2024, time.March, 2, 9, 0, 0), *rec.NextDeadline)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"hotel_id": 1,
		"hotel_name": "Hotel A",
		"report_type": "income_audit",
		"report_name": "Income Audit Daily",
		"status": "Terlambat",
		"last_submission": null,
		"next_deadline": "2024-03-02T09:00:00.000Z"
	}`, string(raw))
}

func TestAggregateClassifiesWithinPeriod(t *testing.T) {
	lookup := newStubLookup()
	lookup.latest[lookupKey{ReportIncomeAudit, 1}] = date(2024, time.March, 13, 8, 59, 59)
	lookup.latest[lookupKey{ReportIncomeAudit, 2}] = date(2024, time.March, 13, 9, 0, 1)
	lookup.latest[lookupKey{ReportARAging, 1}] = date(2024, time.March, 12, 10, 0, 0)
	agg := newTestAggregator(lookup)

	now := date(2024, time.March, 13, 12, 0, 0)
	records := agg.Aggregate(context.Background(), fixtureHotels(), fixtureTargets(), now, Filters{})
	require.Len(t, records, 6)

	byKey := map[lookupKey]StatusRecord{}
	for _, r := range records {
		byKey[lookupKey{r.ReportType, r.HotelID}] = r
	}
	assert.Equal(t, StatusOnTime, byKey[lookupKey{ReportIncomeAudit, 1}].Status)
	assert.Equal(t, StatusLate, byKey[lookupKey{ReportIncomeAudit, 2}].Status)
	assert.Equal(t, StatusOnTime, byKey[lookupKey{ReportARAging, 1}].Status)
	assert.Equal(t, StatusWaiting, byKey[lookupKey{ReportARAging, 2}].Status)
	assert.Equal(t, StatusWaiting, byKey[lookupKey{ReportGLClosing, 1}].Status)

	window := lookup.windows[lookupKey{ReportARAging, 1}]
	assert.Equal(t, date(2024, time.March, 10, 0, 0, 0), window[0])
	assert.Equal(t, time.Saturday, window[1].Weekday())

	window = lookup.windows[lookupKey{ReportGLClosing, 2}]
	assert.Equal(t, date(2024, time.March, 1, 0, 0, 0), window[0])
	assert.Equal(t, 31, window[1].Day())
}

func TestAggregateEmptyInputsSkipFanOut(t *testing.T) {
	lookup := newStubLookup()
	agg := newTestAggregator(lookup)
	now := date(2024, time.March, 1, 10, 0, 0)

	assert.Empty(t, agg.Aggregate(context.Background(), nil, fixtureTargets(), now, Filters{}))
	assert.Empty(t, agg.Aggregate(context.Background(), fixtureHotels(), nil, now, Filters{}))
	assert.NotNil(t, agg.Aggregate(context.Background(), nil, nil, now, Filters{}))
	assert.Empty(t, lookup.calls)
}

func TestAggregateIsIdempotent(t *testing.T) {
	lookup := newStubLookup()
	lookup.latest[lookupKey{ReportIncomeAudit, 2}] = date(2024, time.March, 13, 7, 0, 0)
	agg := newTestAggregator(lookup)
	now := date(2024, time.March, 13, 12, 0, 0)

	first, err := json.Marshal(agg.Aggregate(context.Background(), fixtureHotels(), fixtureTargets(), now, Filters{}))
	require.NoError(t, err)
	second, err := json.Marshal(agg.Aggregate(context.Background(), fixtureHotels(), fixtureTargets(), now, Filters{}))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second))
}

func TestAggregateIsolatesLookupFailure(t *testing.T) {
	lookup := newStubLookup()
	lookup.failures[lookupKey{ReportARAging, 2}] = errors.New("connection reset")
	agg := newTestAggregator(lookup)

	records := agg.Aggregate(context.Background(), fixtureHotels(), fixtureTargets(), date(2024, time.March, 13, 12, 0, 0), Filters{})
	require.Len(t, records, 6)

	failed := 0
	for _, r := range records {
		if r.Status == StatusProcessingError {
			failed++
			assert.Equal(t, ReportARAging, r.ReportType)
			assert.Equal(t, int64(2), r.HotelID)
			assert.Equal(t, "AR Aging Weekly", r.ReportName)
			assert.Nil(t, r.LastSubmission)
			assert.Nil(t, r.NextDeadline)
			continue
		}
		assert.NotNil(t, r.NextDeadline)
	}
	assert.Equal(t, 1, failed)
}

func TestAggregateIsolatesConfigurationErrorsAndPanics(t *testing.T) {
	lookup := newStubLookup()
	lookup.panics[lookupKey{ReportIncomeAudit, 1}] = true
	agg := newTestAggregator(lookup)
	targets := append(fixtureTargets(),
		ReportTarget{ReportType: "night_audit", Kind: ScheduleDaily, TargetTime: "09:00"},
		ReportTarget{ReportType: ReportAPAging, Kind: ScheduleWeekly, TargetTime: ""},
	)

	records := agg.Aggregate(context.Background(), fixtureHotels(), targets, date(2024, time.March, 13, 12, 0, 0), Filters{})
	require.Len(t, records, 10)

	errorsByType := map[ReportType]int{}
	for _, r := range records {
		if r.Status == StatusProcessingError {
			errorsByType[r.ReportType]++
			if r.ReportType == "night_audit" {
				assert.Equal(t, "night_audit", r.ReportName)
			}
		}
	}
	assert.Equal(t, map[ReportType]int{"night_audit": 2, ReportAPAging: 2, ReportIncomeAudit: 1}, errorsByType)
}

func TestAggregateTimeoutMarksUnfinishedPairs(t *testing.T) {
	lookup := newStubLookup()
	lookup.block[lookupKey{ReportGLClosing, 1}] = true
	agg := NewAggregator(lookup, AggregatorConfig{Concurrency: 2, Timeout: 50 * time.Millisecond, Location: time.UTC, Logger: discardLogger()})

	start := time.Now()
	records := agg.Aggregate(context.Background(), fixtureHotels(), fixtureTargets(), date(2024, time.March, 13, 12, 0, 0), Filters{})
	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, records, 6)

	for _, r := range records {
		if r.ReportType == ReportGLClosing && r.HotelID == 1 {
			assert.Equal(t, StatusProcessingError, r.Status)
			continue
		}
		assert.NotEqual(t, StatusProcessingError, r.Status, "%s hotel %d", r.ReportType, r.HotelID)
	}
}

func TestAggregateFilters(t *testing.T) {
	lookup := newStubLookup()
	lookup.latest[lookupKey{ReportIncomeAudit, 1}] = date(2024, time.March, 13, 8, 0, 0)
	agg := newTestAggregator(lookup)
	now := date(2024, time.March, 13, 12, 0, 0)
	ctx := context.Background()

	all := agg.Aggregate(ctx, fixtureHotels(), fixtureTargets(), now, Filters{})

	late := agg.Aggregate(ctx, fixtureHotels(), fixtureTargets(), now, Filters{Status: StatusLate})
	assert.LessOrEqual(t, len(late), len(all))
	assert.NotEmpty(t, late)
	for _, r := range late {
		assert.Equal(t, StatusLate, r.Status)
		assert.Contains(t, all, r)
	}

	hotelID := int64(2)
	byHotel := agg.Aggregate(ctx, fixtureHotels(), fixtureTargets(), now, Filters{HotelID: &hotelID})
	require.Len(t, byHotel, 3)
	for _, r := range byHotel {
		assert.Equal(t, hotelID, r.HotelID)
	}

	byType := agg.Aggregate(ctx, fixtureHotels(), fixtureTargets(), now, Filters{ReportType: ReportGLClosing})
	require.Len(t, byType, 2)

	combined := agg.Aggregate(ctx, fixtureHotels(), fixtureTargets(), now, Filters{HotelID: &hotelID, ReportType: ReportIncomeAudit, Status: StatusLate})
	require.Len(t, combined, 1)
	assert.Equal(t, ApplyFilters(all, Filters{HotelID: &hotelID, ReportType: ReportIncomeAudit, Status: StatusLate}), combined)
}

func TestAggregateOrdersByReportTypeThenHotelName(t *testing.T) {
	agg := newTestAggregator(newStubLookup())
	hotels := []Hotel{{ID: 3, Name: "hotel zamrud"}, {ID: 1, Name: "Hotel Anggrek"}, {ID: 2, Name: "Hotel Bougenvil"}}
	targets := []ReportTarget{fixtureTargets()[2], fixtureTargets()[0]}

	records := agg.Aggregate(context.Background(), hotels, targets, date(2024, time.March, 13, 12, 0, 0), Filters{})
	require.Len(t, records, 6)

	var got []string
	for _, r := range records {
		got = append(got, string(r.ReportType)+"/"+r.HotelName)
	}
	assert.Equal(t, []string{
		"gl_closing/Hotel Anggrek",
		"gl_closing/Hotel Bougenvil",
		"gl_closing/hotel zamrud",
		"income_audit/Hotel Anggrek",
		"income_audit/Hotel Bougenvil",
		"income_audit/hotel zamrud",
	}, got)
}
