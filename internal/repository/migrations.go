package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// RunMigrations creates the schema when it does not exist yet. Kept as
// idempotent statements executed at startup.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS spots (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES users(id),
			title TEXT NOT NULL,
			address TEXT NOT NULL,
			hourly_rate_cents BIGINT NOT NULL,
			capacity INT NOT NULL CHECK (capacity >= 1),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS availability_windows (
			id BIGSERIAL PRIMARY KEY,
			spot_id BIGINT NOT NULL REFERENCES spots(id) ON DELETE CASCADE,
			date DATE NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			quantity INT NOT NULL CHECK (quantity >= 1),
			UNIQUE (spot_id, date, start_time, end_time)
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL UNIQUE,
			spot_id BIGINT NOT NULL REFERENCES spots(id),
			slot_number INT NOT NULL CHECK (slot_number >= 1),
			renter_id BIGINT NOT NULL REFERENCES users(id),
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			total_price_cents BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (end_time > start_time)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_spot_slot
			ON reservations (spot_id, slot_number, status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_renter
			ON reservations (renter_id)`,
	}

	for _, stmt := range statements {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	return nil
}
