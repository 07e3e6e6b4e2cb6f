package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"vagalivre/internal/db"
	apperrors "vagalivre/internal/errors"
)

const reservationColumns = `id, code, spot_id, slot_number, renter_id, start_time, end_time, status, total_price_cents, created_at, updated_at`

type ReservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(database *sql.DB) *ReservationRepository {
	return &ReservationRepository{DB: database}
}

// Create runs the overlap check and the insert inside one transaction
// holding an advisory lock on the (spot, slot) key, so two concurrent
// creates for overlapping windows serialize and only one succeeds.
func (r *ReservationRepository) Create(ctx context.Context, res *db.Reservation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create reservation tx: %w", err)
	}
	defer tx.Rollback()

	if err := lockSpotSlot(ctx, tx, res.SpotID, res.SlotNumber); err != nil {
		return err
	}

	blocked, err := countOverlapping(ctx, tx, res.SpotID, res.SlotNumber, res.StartTime, res.EndTime, db.BlockingStatuses, 0)
	if err != nil {
		return err
	}
	if blocked > 0 {
		return apperrors.Conflictf("slot %d of spot %d is already reserved for part or all of the requested period", res.SlotNumber, res.SpotID)
	}

	query := `
		INSERT INTO reservations
		(code, spot_id, slot_number, renter_id, start_time, end_time, status, total_price_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query,
		res.Code,
		res.SpotID,
		res.SlotNumber,
		res.RenterID,
		res.StartTime,
		res.EndTime,
		res.Status,
		res.TotalPriceCents,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	return tx.Commit()
}

// Confirm re-checks overlaps under the same advisory lock before
// flipping a pending reservation to confirmed. Only confirmed
// reservations block at this stage: competing pending requests may
// coexist until the owner refuses them.
func (r *ReservationRepository) Confirm(ctx context.Context, id int64) (*db.Reservation, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin confirm tx: %w", err)
	}
	defer tx.Rollback()

	res, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("reservation", id)
		}
		return nil, fmt.Errorf("query reservation %d: %w", id, err)
	}
	if res.Status != db.StatusPending {
		return nil, apperrors.Validationf("cannot confirm reservation in status %q", res.Status)
	}

	if err := lockSpotSlot(ctx, tx, res.SpotID, res.SlotNumber); err != nil {
		return nil, err
	}

	blocked, err := countOverlapping(ctx, tx, res.SpotID, res.SlotNumber, res.StartTime, res.EndTime, []string{db.StatusConfirmed}, id)
	if err != nil {
		return nil, err
	}
	if blocked > 0 {
		return nil, apperrors.Conflictf("a confirmed reservation already occupies slot %d of spot %d in that period", res.SlotNumber, res.SpotID)
	}

	updated, err := scanReservation(tx.QueryRowContext(ctx, `
		UPDATE reservations SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING `+reservationColumns, id, db.StatusConfirmed, db.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("confirm reservation %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, newStatus string, expect []string) (*db.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRowContext(ctx, `
		UPDATE reservations SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
		RETURNING `+reservationColumns, id, newStatus, pq.Array(expect)))
	if err == nil {
		return res, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update reservation %d status: %w", id, err)
	}

	// Distinguish a missing row from a disallowed transition.
	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.Validationf("cannot transition reservation from status %q to %q", current.Status, newStatus)
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*db.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("reservation", id)
		}
		return nil, fmt.Errorf("query reservation %d: %w", id, err)
	}
	return res, nil
}

func (r *ReservationRepository) GetByCode(ctx context.Context, code string) (*db.Reservation, error) {
	res, err := scanReservation(r.DB.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("reservation", code)
		}
		return nil, fmt.Errorf("query reservation %s: %w", code, err)
	}
	return res, nil
}

func (r *ReservationRepository) ListBlocking(ctx context.Context, spotID int64, slot int, statuses []string, excludeID int64) ([]db.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE spot_id = $1 AND slot_number = $2 AND status = ANY($3) AND id <> $4
		ORDER BY start_time`
	rows, err := r.DB.QueryContext(ctx, query, spotID, slot, pq.Array(statuses), excludeID)
	if err != nil {
		return nil, fmt.Errorf("query blocking reservations: %w", err)
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) ListForSpotBetween(ctx context.Context, spotID int64, from, to time.Time, statuses []string) ([]db.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE spot_id = $1 AND status = ANY($2) AND start_time < $4 AND end_time > $3
		ORDER BY start_time`
	rows, err := r.DB.QueryContext(ctx, query, spotID, pq.Array(statuses), from, to)
	if err != nil {
		return nil, fmt.Errorf("query reservations for spot %d: %w", spotID, err)
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) ListByRenter(ctx context.Context, renterID int64) ([]db.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE renter_id = $1
		ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, renterID)
	if err != nil {
		return nil, fmt.Errorf("query reservations for renter %d: %w", renterID, err)
	}
	return collectReservations(rows)
}

func (r *ReservationRepository) ListPendingStartedBefore(ctx context.Context, cutoff time.Time) ([]db.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE status = $1 AND start_time < $2
		ORDER BY start_time`
	rows, err := r.DB.QueryContext(ctx, query, db.StatusPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query expired pending reservations: %w", err)
	}
	return collectReservations(rows)
}

// lockSpotSlot serializes writers on one (spot, slot) key for the
// lifetime of the transaction.
func lockSpotSlot(ctx context.Context, tx *sql.Tx, spotID int64, slot int) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, slotLockKey(spotID, slot)); err != nil {
		return fmt.Errorf("acquire slot lock: %w", err)
	}
	return nil
}

// slotLockKey packs (spot, slot) into the single bigint key the
// advisory lock takes. Slot numbers are bounded by spot capacity and
// fit in 16 bits; the spot id keeps the remaining 48.
func slotLockKey(spotID int64, slot int) int64 {
	return spotID<<16 | int64(slot)&0xffff
}

// countOverlapping applies the half-open overlap predicate in SQL:
// an existing reservation blocks iff start_time < end AND end_time > start.
func countOverlapping(ctx context.Context, tx *sql.Tx, spotID int64, slot int, start, end time.Time, statuses []string, excludeID int64) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM reservations
		WHERE spot_id = $1 AND slot_number = $2
		  AND status = ANY($3)
		  AND id <> $4
		  AND start_time < $6 AND end_time > $5`,
		spotID, slot, pq.Array(statuses), excludeID, start, end,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count overlapping reservations: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*db.Reservation, error) {
	var res db.Reservation
	err := row.Scan(
		&res.ID, &res.Code, &res.SpotID, &res.SlotNumber, &res.RenterID,
		&res.StartTime, &res.EndTime, &res.Status, &res.TotalPriceCents,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func collectReservations(rows *sql.Rows) ([]db.Reservation, error) {
	defer rows.Close()
	var reservations []db.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}
	return reservations, nil
}
