package models

import "time"

// NATS Event Types
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingConfirmedEvent carries everything the ticket email and the search
// index need, so consumers do not have to read the database.
type BookingConfirmedEvent struct {
	BookingID      string    `json:"booking_id"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	UserEmail      string    `json:"user_email"`
	ShowID         string    `json:"show_id"`
	MovieTitle     string    `json:"movie_title"`
	CinemaName     string    `json:"cinema_name"`
	CinemaLocation string    `json:"cinema_location"`
	HallName       string    `json:"hall_name"`
	ShowDate       string    `json:"show_date"`
	ShowTime       string    `json:"show_time"`
	SeatLabels     []string  `json:"seat_labels"`
	TotalAmount    int64     `json:"total_amount"`
	BookingDate    time.Time `json:"booking_date"`
	Timestamp      time.Time `json:"timestamp"`
}

// BookingCancelledEvent represents a booking cancellation event
type BookingCancelledEvent struct {
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	ShowID    string    `json:"show_id"`
	SeatIDs   []string  `json:"seat_ids"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
