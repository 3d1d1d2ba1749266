package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/carbon/internal/domain"
)

const activityColumns = `activity_id, user_id, category, activity_type, value, carbon_emission, created_at`

// Repository provides Postgres-backed persistence for activities. Every
// statement runs in a transaction scoped to the owning user so row level
// security applies on top of the explicit user_id filters.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a single activity row.
func (r *Repository) Create(ctx context.Context, activity domain.Activity) error {
	const stmt = `INSERT INTO activities (` + activityColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	return r.withUser(ctx, activity.UserID, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, stmt,
			activity.ID,
			activity.UserID,
			activity.Category,
			activity.Type,
			activity.Value,
			activity.CarbonEmission,
			activity.CreatedAt,
		)
		return err
	})
}

// ListByUser returns activities for a user ordered newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, page domain.Page) ([]domain.Activity, *domain.Cursor, error) {
	args := []interface{}{userID}
	query := `SELECT ` + activityColumns + `
        FROM activities WHERE user_id=$1`

	if page.Cursor != nil {
		query += ` AND (created_at, activity_id) < ($2, $3)`
		args = append(args, page.Cursor.CreatedAt, page.Cursor.ID)
	}

	query += ` ORDER BY created_at DESC, activity_id DESC`

	if page.Limit > 0 {
		args = append(args, page.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	results := make([]domain.Activity, 0)
	err := r.withUser(ctx, userID, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var activity domain.Activity
			if err := rows.Scan(&activity.ID, &activity.UserID, &activity.Category, &activity.Type, &activity.Value, &activity.CarbonEmission, &activity.CreatedAt); err != nil {
				return err
			}
			results = append(results, activity)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if page.Limit > 0 && len(results) == page.Limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	return results, nextCursor, nil
}

// SummaryByUser computes the overall and per-category emission sums in one
// statement; the grand total row is the one where GROUPING(category) is 1.
func (r *Repository) SummaryByUser(ctx context.Context, userID string) (domain.Stats, error) {
	const query = `SELECT category, GROUPING(category) = 1 AS is_total, COALESCE(SUM(carbon_emission), 0)
        FROM activities WHERE user_id=$1
        GROUP BY GROUPING SETS ((category), ())`

	stats := domain.Stats{ByCategory: make(map[string]float64)}
	err := r.withUser(ctx, userID, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				category *string
				isTotal  bool
				sum      float64
			)
			if err := rows.Scan(&category, &isTotal, &sum); err != nil {
				return err
			}
			if isTotal {
				stats.Total = sum
				continue
			}
			if category != nil {
				stats.ByCategory[*category] = sum
			}
		}
		return rows.Err()
	})
	if err != nil {
		return domain.Stats{}, err
	}
	return stats, nil
}

func (r *Repository) withUser(ctx context.Context, userID string, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", userID); err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
