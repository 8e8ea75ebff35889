// Package submissions answers "when was the latest report submitted" against
// the per-report-type tables populated by the bulk upload flows.
package submissions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Options controls retry behaviour for transient failures.
type Options struct {
	Retries int
	Backoff time.Duration
	Logger  *slog.Logger
}

// Repository reads MAX(submission timestamp) per hotel and business-date window.
type Repository struct {
	db      querier
	retries int
	backoff time.Duration
	logger  *slog.Logger
}

// NewRepository constructs a PostgreSQL backed lookup.
func NewRepository(pool *pgxpool.Pool, opts Options) *Repository {
	return newRepository(pool, opts)
}

func newRepository(db querier, opts Options) *Repository {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 100 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, retries: opts.Retries, backoff: opts.Backoff, logger: logger}
}

// LatestSubmission returns nil when the hotel has no rows dated inside [start, end].
func (r *Repository) LatestSubmission(ctx context.Context, info compliance.ReportTypeInfo, hotelID int64, start, end time.Time) (*time.Time, error) {
	query := latestSubmissionSQL(info)
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, time.Duration(attempt)*r.backoff); err != nil {
				return nil, err
			}
			r.logger.Warn("retry submission lookup",
				slog.String("report_type", string(info.Type)),
				slog.Int64("hotel_id", hotelID),
				slog.Int("attempt", attempt),
				slog.Any("error", lastErr),
			)
		}
		var last *time.Time
		err := r.db.QueryRow(ctx, query, dateParam(start), dateParam(end), hotelID).Scan(&last)
		if err == nil {
			return last, nil
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		lastErr = err
		if !retryable(ctx, err) {
			break
		}
	}
	return nil, fmt.Errorf("submissions: latest %s: %w", info.Type, lastErr)
}

func latestSubmissionSQL(info compliance.ReportTypeInfo) string {
	submitted := pgx.Identifier{info.SubmittedColumn}.Sanitize()
	dateCol := pgx.Identifier{info.DateColumn}.Sanitize()
	return fmt.Sprintf(
		"SELECT MAX(%s) FROM %s WHERE %s >= $1 AND %s <= $2 AND hotel_id = $3",
		submitted, pgx.Identifier{info.Table}.Sanitize(), dateCol, dateCol,
	)
}

// dateParam binds the calendar date of t, ignoring its clock and zone.
func dateParam(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var connErr *pgconn.ConnectError
	return pgconn.SafeToRetry(err) || errors.As(err, &connErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
