package reporttargets

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
)

// Repository persists report targets.
type Repository interface {
	ListTargets(ctx context.Context) ([]compliance.ReportTarget, error)
	Upsert(ctx context.Context, in UpsertInput) (compliance.ReportTarget, error)
}

type dbtx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository returns a PostgreSQL backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const targetColumns = `id, report_type, target_type, COALESCE(target_time::text, ''), day_of_week, day_of_month, created_at, updated_at`

func (r *repository) ListTargets(ctx context.Context) ([]compliance.ReportTarget, error) {
	rows, err := r.db.Query(ctx, `SELECT `+targetColumns+` FROM report_targets ORDER BY report_type`)
	if err != nil {
		return nil, fmt.Errorf("reporttargets: list: %w", err)
	}
	defer rows.Close()

	targets := make([]compliance.ReportTarget, 0)
	for rows.Next() {
		target, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("reporttargets: scan: %w", err)
		}
		targets = append(targets, target)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reporttargets: list: %w", err)
	}
	return targets, nil
}

func (r *repository) Upsert(ctx context.Context, in UpsertInput) (compliance.ReportTarget, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO report_targets (report_type, target_type, target_time, day_of_week, day_of_month)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (report_type)
		DO UPDATE SET
			target_type = EXCLUDED.target_type, target_time = EXCLUDED.target_time,
			day_of_week = EXCLUDED.day_of_week, day_of_month = EXCLUDED.day_of_month, updated_at = NOW()
		RETURNING `+targetColumns,
		in.ReportType, in.TargetType, in.TargetTime, optionalInt(in.DayOfWeek), optionalInt(in.DayOfMonth),
	)
	target, err := scanTarget(row)
	if err != nil {
		return compliance.ReportTarget{}, fmt.Errorf("reporttargets: upsert %s: %w", in.ReportType, err)
	}
	return target, nil
}

func scanTarget(row pgx.Row) (compliance.ReportTarget, error) {
	var (
		t          compliance.ReportTarget
		reportType string
		kind       string
		dayOfWeek  pgtype.Int4
		dayOfMonth pgtype.Int4
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)
	if err := row.Scan(&t.ID, &reportType, &kind, &t.TargetTime, &dayOfWeek, &dayOfMonth, &createdAt, &updatedAt); err != nil {
		return compliance.ReportTarget{}, err
	}
	t.ReportType = compliance.ReportType(reportType)
	t.Kind = compliance.ScheduleKind(kind)
	t.DayOfWeek = intValue(dayOfWeek)
	t.DayOfMonth = intValue(dayOfMonth)
	if createdAt.Valid {
		t.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		t.UpdatedAt = updatedAt.Time
	}
	return t, nil
}

func optionalInt(v *int) pgtype.Int4 {
	if v == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*v), Valid: true}
}

func intValue(v pgtype.Int4) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int32)
	return &out
}
