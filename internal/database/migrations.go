package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createCinemasTable,
		createMoviesTable,
		createShowsTable,
		addShowsMovieColumn,
		createSeatsTable,
		createSeatsAvailabilityIndex,
		createBookingsTable,
		createBookingsUserIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    role VARCHAR(20) NOT NULL DEFAULT 'user',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (role IN ('user', 'admin'))
);`

const createCinemasTable = `
CREATE TABLE IF NOT EXISTS cinemas (
    id UUID PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    location VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createMoviesTable = `
CREATE TABLE IF NOT EXISTS movies (
    id UUID PRIMARY KEY,
    title VARCHAR(500) NOT NULL,
    genre VARCHAR(100) NOT NULL,
    language VARCHAR(100) NOT NULL,
    duration_min INTEGER NOT NULL,
    rating NUMERIC(3,1) NOT NULL DEFAULT 0,
    release_date VARCHAR(10) NOT NULL,
    description TEXT NOT NULL,
    trailer_url TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (duration_min > 0),
    CHECK (rating >= 0 AND rating <= 10)
);`

const createShowsTable = `
CREATE TABLE IF NOT EXISTS shows (
    id UUID PRIMARY KEY,
    cinema_id UUID NOT NULL REFERENCES cinemas(id) ON DELETE CASCADE,
    movie_title VARCHAR(500) NOT NULL,
    show_date VARCHAR(10) NOT NULL,
    show_time VARCHAR(20) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

// Shows created before the movie catalog keep a NULL movie_id.
const addShowsMovieColumn = `
ALTER TABLE shows ADD COLUMN IF NOT EXISTS movie_id UUID REFERENCES movies(id) ON DELETE SET NULL;`

const createSeatsTable = `
CREATE TABLE IF NOT EXISTS seats (
    id UUID PRIMARY KEY,
    cinema_id UUID NOT NULL REFERENCES cinemas(id) ON DELETE CASCADE,
    show_id UUID NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
    hall_name VARCHAR(255) NOT NULL,
    row_label VARCHAR(2) NOT NULL,
    column_number INTEGER NOT NULL,
    seat_number VARCHAR(16) NOT NULL,
    is_best_row BOOLEAN NOT NULL DEFAULT FALSE,
    is_center_seat BOOLEAN NOT NULL DEFAULT FALSE,
    status VARCHAR(20) NOT NULL DEFAULT 'AVAILABLE',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(cinema_id, show_id, hall_name, row_label, column_number),
    CHECK (column_number > 0),
    CHECK (status IN ('AVAILABLE', 'BOOKED'))
);`

const createSeatsAvailabilityIndex = `
CREATE INDEX IF NOT EXISTS idx_seats_hall_status ON seats(cinema_id, show_id, hall_name, status);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    show_id UUID NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
    seat_ids UUID[] NOT NULL,
    total_amount BIGINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'CONFIRMED',
    booking_date TIMESTAMP NOT NULL DEFAULT NOW(),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (cardinality(seat_ids) > 0),
    CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED'))
);`

const createBookingsUserIndex = `
CREATE INDEX IF NOT EXISTS idx_bookings_user_created ON bookings(user_id, created_at DESC);`
