package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
	jobmetrics "github.com/hotel-audit/hotelaudit/internal/jobs"
)

// StatusEvaluator computes the full status grid at the current instant.
type StatusEvaluator interface {
	Evaluate(ctx context.Context) ([]compliance.StatusRecord, error)
}

// ComplianceScanJob evaluates every hotel and target, then publishes the
// counts as gauges and logs units needing attention. It stores nothing.
type ComplianceScanJob struct {
	Statuses StatusEvaluator
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewComplianceScanJob wires dependencies for the scan handler.
func NewComplianceScanJob(statuses StatusEvaluator, logger *slog.Logger, metrics *jobmetrics.Metrics) *ComplianceScanJob {
	return &ComplianceScanJob{
		Statuses: statuses,
		Logger:   logger,
		Metrics:  metrics,
		clock:    time.Now,
	}
}

// Handle executes one scan.
func (j *ComplianceScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Statuses == nil {
		return errors.New("compliance scan: handler not configured")
	}
	var payload ComplianceScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskComplianceScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("run_id", runID(ctx, payload)))
	if payload.Reason != "" {
		logger = logger.With(slog.String("reason", payload.Reason))
	}
	start := j.now()
	logger.Info("starting compliance scan")

	records, err := j.Statuses.Evaluate(ctx)
	if err != nil {
		resultErr = err
		logger.Error("compliance scan failed", slog.Any("error", err))
		return resultErr
	}

	counts := jobmetrics.ComplianceCounts{}
	late, failed := 0, 0
	for _, r := range records {
		byStatus, ok := counts[string(r.ReportType)]
		if !ok {
			byStatus = map[string]int{}
			counts[string(r.ReportType)] = byStatus
		}
		byStatus[r.Status.String()]++

		switch r.Status {
		case compliance.StatusLate:
			late++
			logger.Warn("report late",
				slog.Int64("hotel_id", r.HotelID),
				slog.String("hotel_name", r.HotelName),
				slog.String("report_type", string(r.ReportType)),
			)
		case compliance.StatusProcessingError:
			failed++
			logger.Warn("report not evaluated",
				slog.Int64("hotel_id", r.HotelID),
				slog.String("hotel_name", r.HotelName),
				slog.String("report_type", string(r.ReportType)),
			)
		}
	}
	j.Metrics.SetCompliance(counts, start)

	logger.Info("completed compliance scan",
		slog.Int("units", len(records)),
		slog.Int("late", late),
		slog.Int("processing_errors", failed),
		slog.Duration("duration", j.now().Sub(start)),
	)
	return resultErr
}

func (j *ComplianceScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskComplianceScan))
	}
	return slog.Default().With(slog.String("job", TaskComplianceScan))
}

func (j *ComplianceScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now()
}
