package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SubmissionLookup returns the latest submission instant for a hotel inside
// [start, end], or nil when nothing was submitted. Implementations must honour
// ctx cancellation.
type SubmissionLookup interface {
	LatestSubmission(ctx context.Context, info ReportTypeInfo, hotelID int64, start, end time.Time) (*time.Time, error)
}

// AggregatorConfig tunes the fan-out.
type AggregatorConfig struct {
	// Concurrency bounds the number of pairs evaluated at once.
	Concurrency int
	// Timeout covers the whole fan-out. Pairs unfinished when it expires are
	// reported as ProcessingError.
	Timeout time.Duration
	// Location is the calendar used for period arithmetic. Defaults to now's location.
	Location *time.Location
	Logger   *slog.Logger
}

// Aggregator fans the engine out over hotels x targets.
type Aggregator struct {
	lookup SubmissionLookup
	cfg    AggregatorConfig
}

const defaultConcurrency = 8

// NewAggregator wires a submission lookup with fan-out settings.
func NewAggregator(lookup SubmissionLookup, cfg AggregatorConfig) *Aggregator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Aggregator{lookup: lookup, cfg: cfg}
}

// Aggregate evaluates every (hotel, target) pair at now and returns one record
// per pair that passes filters. Individual failures never abort the batch.
func (a *Aggregator) Aggregate(ctx context.Context, hotels []Hotel, targets []ReportTarget, now time.Time, filters Filters) []StatusRecord {
	selectedHotels := make([]Hotel, 0, len(hotels))
	for _, h := range hotels {
		if filters.MatchHotel(h) {
			selectedHotels = append(selectedHotels, h)
		}
	}
	selectedTargets := make([]ReportTarget, 0, len(targets))
	for _, t := range targets {
		if filters.MatchTarget(t) {
			selectedTargets = append(selectedTargets, t)
		}
	}
	if len(selectedHotels) == 0 || len(selectedTargets) == 0 {
		return []StatusRecord{}
	}

	if a.cfg.Location != nil {
		now = now.In(a.cfg.Location)
	}
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	records := make([]StatusRecord, len(selectedHotels)*len(selectedTargets))
	g := new(errgroup.Group)
	g.SetLimit(a.cfg.Concurrency)
	i := 0
	for _, hotel := range selectedHotels {
		for _, target := range selectedTargets {
			idx := i
			i++
			g.Go(func() error {
				records[idx] = a.evaluateSafely(ctx, hotel, target, now)
				return nil
			})
		}
	}
	_ = g.Wait()

	sortRecords(records)
	return ApplyFilters(records, Filters{Status: filters.Status})
}

func (a *Aggregator) evaluateSafely(ctx context.Context, hotel Hotel, target ReportTarget, now time.Time) (rec StatusRecord) {
	defer func() {
		if r := recover(); r != nil {
			rec = a.failed(hotel, target, fmt.Errorf("panic: %v", r))
		}
	}()
	rec, err := a.evaluate(ctx, hotel, target, now)
	if err != nil {
		return a.failed(hotel, target, err)
	}
	return rec
}

func (a *Aggregator) evaluate(ctx context.Context, hotel Hotel, target ReportTarget, now time.Time) (StatusRecord, error) {
	if err := ctx.Err(); err != nil {
		return StatusRecord{}, err
	}
	info, err := Lookup(target.ReportType)
	if err != nil {
		return StatusRecord{}, err
	}
	period, err := ResolvePeriod(target, now)
	if err != nil {
		return StatusRecord{}, err
	}
	if a.lookup == nil {
		return StatusRecord{}, &LookupFailure{ReportType: target.ReportType, HotelID: hotel.ID, Err: errors.New("lookup not configured")}
	}
	last, err := a.lookup.LatestSubmission(ctx, info, hotel.ID, period.Start, period.End)
	if err != nil {
		return StatusRecord{}, &LookupFailure{ReportType: target.ReportType, HotelID: hotel.ID, Err: err}
	}
	next, err := NextDeadline(target, period.Deadline)
	if err != nil {
		return StatusRecord{}, err
	}
	return StatusRecord{
		HotelID:        hotel.ID,
		HotelName:      hotel.Name,
		ReportType:     target.ReportType,
		ReportName:     info.DisplayName,
		Status:         Classify(now, period.Deadline, last),
		LastSubmission: last,
		NextDeadline:   &next,
	}, nil
}

func (a *Aggregator) failed(hotel Hotel, target ReportTarget, err error) StatusRecord {
	a.logger().Error("evaluate report target",
		slog.Int64("hotel_id", hotel.ID),
		slog.String("hotel_name", hotel.Name),
		slog.String("report_type", string(target.ReportType)),
		slog.Any("error", err),
	)
	return StatusRecord{
		HotelID:    hotel.ID,
		HotelName:  hotel.Name,
		ReportType: target.ReportType,
		ReportName: Label(target.ReportType),
		Status:     StatusProcessingError,
	}
}

func (a *Aggregator) logger() *slog.Logger {
	if a.cfg.Logger != nil {
		return a.cfg.Logger
	}
	return slog.Default()
}

// sortRecords orders by report type, then hotel name (Indonesian collation), then hotel id.
func sortRecords(records []StatusRecord) {
	col := collate.New(language.Indonesian, collate.IgnoreCase)
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.ReportType != b.ReportType {
			return a.ReportType < b.ReportType
		}
		if c := col.CompareString(a.HotelName, b.HotelName); c != 0 {
			return c < 0
		}
		return a.HotelID < b.HotelID
	})
}
