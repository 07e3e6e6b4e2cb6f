package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vagalivre/internal/db"
)

type AvailabilityRepository struct {
	DB *sql.DB
}

func NewAvailabilityRepository(database *sql.DB) *AvailabilityRepository {
	return &AvailabilityRepository{DB: database}
}

// ReplaceForSpot deletes the spot's previous windows and inserts the
// new set in one transaction. Owners always resubmit the full picture;
// there is no incremental merge.
func (r *AvailabilityRepository) ReplaceForSpot(ctx context.Context, spotID int64, windows []db.AvailabilityWindow) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace availability tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM availability_windows WHERE spot_id = $1`, spotID); err != nil {
		return fmt.Errorf("delete availability windows for spot %d: %w", spotID, err)
	}

	query := `
		INSERT INTO availability_windows (spot_id, date, start_time, end_time, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	for i := range windows {
		w := &windows[i]
		if err := tx.QueryRowContext(ctx, query, spotID, w.Date, w.StartTime, w.EndTime, w.Quantity).Scan(&w.ID); err != nil {
			return fmt.Errorf("insert availability window: %w", err)
		}
		w.SpotID = spotID
	}

	return tx.Commit()
}

func (r *AvailabilityRepository) ListForSpotOnDate(ctx context.Context, spotID int64, date time.Time) ([]db.AvailabilityWindow, error) {
	return r.list(ctx, `
		SELECT id, spot_id, date, start_time, end_time, quantity
		FROM availability_windows
		WHERE spot_id = $1 AND date = $2
		ORDER BY start_time`, spotID, date)
}

func (r *AvailabilityRepository) ListForSpot(ctx context.Context, spotID int64) ([]db.AvailabilityWindow, error) {
	return r.list(ctx, `
		SELECT id, spot_id, date, start_time, end_time, quantity
		FROM availability_windows
		WHERE spot_id = $1
		ORDER BY date, start_time`, spotID)
}

func (r *AvailabilityRepository) list(ctx context.Context, query string, args ...interface{}) ([]db.AvailabilityWindow, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query availability windows: %w", err)
	}
	defer rows.Close()

	var windows []db.AvailabilityWindow
	for rows.Next() {
		var w db.AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.SpotID, &w.Date, &w.StartTime, &w.EndTime, &w.Quantity); err != nil {
			return nil, fmt.Errorf("scan availability window: %w", err)
		}
		windows = append(windows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability windows: %w", err)
	}
	return windows, nil
}
