package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vagalivre/internal/db"
	apperrors "vagalivre/internal/errors"
)

type SpotRepository struct {
	DB *sql.DB
}

func NewSpotRepository(database *sql.DB) *SpotRepository {
	return &SpotRepository{DB: database}
}

func (r *SpotRepository) Create(ctx context.Context, spot *db.Spot) error {
	query := `
		INSERT INTO spots (owner_id, title, address, hourly_rate_cents, capacity, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query,
		spot.OwnerID, spot.Title, spot.Address, spot.HourlyRateCents, spot.Capacity,
	).Scan(&spot.ID, &spot.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert spot: %w", err)
	}
	return nil
}

func (r *SpotRepository) GetByID(ctx context.Context, id int64) (*db.Spot, error) {
	var spot db.Spot
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, owner_id, title, address, hourly_rate_cents, capacity, created_at
		FROM spots WHERE id = $1`, id,
	).Scan(&spot.ID, &spot.OwnerID, &spot.Title, &spot.Address, &spot.HourlyRateCents, &spot.Capacity, &spot.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("spot", id)
		}
		return nil, fmt.Errorf("query spot %d: %w", id, err)
	}
	return &spot, nil
}

func (r *SpotRepository) List(ctx context.Context) ([]db.Spot, error) {
	return r.list(ctx, `
		SELECT id, owner_id, title, address, hourly_rate_cents, capacity, created_at
		FROM spots ORDER BY created_at DESC`)
}

func (r *SpotRepository) ListByOwner(ctx context.Context, ownerID int64) ([]db.Spot, error) {
	return r.list(ctx, `
		SELECT id, owner_id, title, address, hourly_rate_cents, capacity, created_at
		FROM spots WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

func (r *SpotRepository) list(ctx context.Context, query string, args ...interface{}) ([]db.Spot, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query spots: %w", err)
	}
	defer rows.Close()

	var spots []db.Spot
	for rows.Next() {
		var spot db.Spot
		if err := rows.Scan(&spot.ID, &spot.OwnerID, &spot.Title, &spot.Address, &spot.HourlyRateCents, &spot.Capacity, &spot.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan spot: %w", err)
		}
		spots = append(spots, spot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spots: %w", err)
	}
	return spots, nil
}
