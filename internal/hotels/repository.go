// Package hotels exposes the read-only hotel listing used by the dashboard.
package hotels

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository reads hotels from PostgreSQL.
type Repository struct {
	db querier
}

// NewRepository constructs a Repository on the shared pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// ListHotels returns every hotel ordered by name.
func (r *Repository) ListHotels(ctx context.Context) ([]compliance.Hotel, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM hotels ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("hotels: list: %w", err)
	}
	hotels, err := pgx.CollectRows(rows, pgx.RowToStructByPos[compliance.Hotel])
	if err != nil {
		return nil, fmt.Errorf("hotels: list: %w", err)
	}
	return hotels, nil
}
