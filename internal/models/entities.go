package models

import (
	"time"
)

const (
	SeatAvailable = "AVAILABLE"
	SeatBooked    = "BOOKED"
)

const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user in the system
type User struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Cinema struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Location  string    `json:"location" db:"location"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Movie struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Genre       string    `json:"genre" db:"genre"`
	Language    string    `json:"language" db:"language"`
	DurationMin int       `json:"duration" db:"duration_min"`
	Rating      float64   `json:"rating" db:"rating"`
	ReleaseDate string    `json:"release_date" db:"release_date"`
	Description string    `json:"description" db:"description"`
	TrailerURL  string    `json:"trailer_url" db:"trailer_url"`
	ImageURL    string    `json:"image" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Show is a screening of a movie at a cinema. MovieTitle is copied from the
// movie when the show is created so events and tickets do not need a join.
// CinemaName and CinemaLocation are filled by joins.
type Show struct {
	ID             string    `json:"id" db:"id"`
	CinemaID       string    `json:"cinema_id" db:"cinema_id"`
	MovieID        string    `json:"movie_id,omitempty" db:"movie_id"`
	MovieTitle     string    `json:"movie_title" db:"movie_title"`
	ShowDate       string    `json:"show_date" db:"show_date"`
	ShowTime       string    `json:"show_time" db:"show_time"`
	CinemaName     string    `json:"cinema_name,omitempty"`
	CinemaLocation string    `json:"cinema_location,omitempty"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Seat is one position of a hall layout for a show
type Seat struct {
	ID           string    `json:"id" db:"id"`
	CinemaID     string    `json:"cinema_id" db:"cinema_id"`
	ShowID       string    `json:"show_id" db:"show_id"`
	HallName     string    `json:"hall_name" db:"hall_name"`
	Row          string    `json:"row" db:"row_label"`
	Column       int       `json:"column" db:"column_number"`
	SeatNumber   string    `json:"seat_number" db:"seat_number"`
	IsBestRow    bool      `json:"is_best_row" db:"is_best_row"`
	IsCenterSeat bool      `json:"is_center_seat" db:"is_center_seat"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

func (s Seat) Available() bool {
	return s.Status == SeatAvailable
}

// Booking represents a booking in the system
type Booking struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	ShowID      string    `json:"show_id" db:"show_id"`
	SeatIDs     []string  `json:"seat_ids" db:"seat_ids"`
	TotalAmount int64     `json:"total_amount" db:"total_amount"`
	Status      string    `json:"booking_status" db:"status"`
	BookingDate time.Time `json:"booking_date" db:"booking_date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	Seats       []Seat    `json:"seats,omitempty"` // Not from DB, filled separately
}

// HallScope identifies one independent seat map.
type HallScope struct {
	CinemaID string
	ShowID   string
	HallName string
}

// SeatFilter narrows listSeats; empty fields are not constrained.
type SeatFilter struct {
	CinemaID string
	ShowID   string
}

// SeatUpdate is a partial seat update; nil fields are left untouched.
type SeatUpdate struct {
	Row    *string
	Column *int
	Status *string
}
