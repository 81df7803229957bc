package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linkboard/linkboard/internal/infrastructure/db"
	"github.com/linkboard/linkboard/internal/processing/links"
)

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(p *db.Postgres) (*StatsRepository, error) {
	if p == nil || p.Pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	return &StatsRepository{pool: p.Pool}, nil
}

// Dashboard aggregates the caller's link count and total clicks. COALESCE
// keeps the sum at zero when the owner has no links.
func (r *StatsRepository) Dashboard(ctx context.Context, ownerID string) (*links.DashboardStats, error) {
	var stats links.DashboardStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_clicks), 0)
		FROM short_links
		WHERE owner_id = $1`,
		ownerID,
	).Scan(&stats.TotalURLs, &stats.TotalClicks)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
