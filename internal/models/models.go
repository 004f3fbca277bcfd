package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexibleBool accepts JSON booleans, numbers and strings such as "true" or "0"
type FlexibleBool bool

func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	switch strings.ToLower(str) {
	case "true", "1", "yes", "on":
		*fb = true
	case "false", "0", "no", "off":
		*fb = false
	default:
		return fmt.Errorf("invalid boolean value: %s", str)
	}
	return nil
}

func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// FlexibleString accepts a JSON string or number and keeps its textual form.
// Row identifiers arrive both ways from layout editors.
type FlexibleString string

func (fs *FlexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("value is required")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*fs = FlexibleString(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid string or number value: %s", data)
	}
	*fs = FlexibleString(n.String())
	return nil
}

func (fs FlexibleString) String() string {
	return string(fs)
}

// FlexibleInt accepts a JSON integer or a string holding one
type FlexibleInt int

func (fi *FlexibleInt) UnmarshalJSON(data []byte) error {
	str := strings.TrimSpace(strings.Trim(string(data), `"`))
	v, err := strconv.Atoi(str)
	if err != nil {
		return fmt.Errorf("invalid integer value: %s", str)
	}
	*fi = FlexibleInt(v)
	return nil
}

func (fi FlexibleInt) Int() int {
	return int(fi)
}

// Auth

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

// Catalog

type CreateCinemaRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
}

type CreateMovieRequest struct {
	Title       string  `json:"title" binding:"required"`
	Genre       string  `json:"genre" binding:"required"`
	Language    string  `json:"language" binding:"required"`
	Duration    int     `json:"duration" binding:"required"`
	Rating      float64 `json:"rating"`
	ReleaseDate string  `json:"releaseDate" binding:"required"`
	Description string  `json:"description" binding:"required"`
	TrailerURL  string  `json:"trailerUrl"`
	// Trailer is the older name of TrailerURL.
	Trailer string `json:"trailer"`
	Image   string `json:"image" binding:"required"`
}

// CreateShowRequest names the movie by MovieID. MovieTitle alone is accepted
// for screenings without a catalog entry.
type CreateShowRequest struct {
	CinemaID   string `json:"cinemaId" binding:"required"`
	MovieID    string `json:"movieId"`
	MovieTitle string `json:"movieTitle"`
	ShowDate   string `json:"showDate" binding:"required"`
	ShowTime   string `json:"time" binding:"required"`
}

// Seats

// SeatPositionInput is one requested seat of a layout.
type SeatPositionInput struct {
	Row    FlexibleString `json:"row"`
	Column FlexibleInt    `json:"column"`
}

// GenerateSeatsRequest either lists seats explicitly or asks for a full
// rows x columns grid.
type GenerateSeatsRequest struct {
	CinemaID string              `json:"cinemaId"`
	ShowID   string              `json:"showId"`
	HallName string              `json:"hallName"`
	Seats    []SeatPositionInput `json:"seats,omitempty"`
	Rows     FlexibleInt         `json:"rows,omitempty"`
	Columns  FlexibleInt         `json:"columns,omitempty"`
}

type GenerateSeatsResponse struct {
	Success           bool `json:"success"`
	TotalSeatsCreated int  `json:"totalSeatsCreated"`
	TotalRequested    int  `json:"totalRequested"`
}

type UpdateSeatRequest struct {
	SeatID string          `json:"seatId" binding:"required"`
	Row    *FlexibleString `json:"row,omitempty"`
	Column *FlexibleInt    `json:"column,omitempty"`
	Status *string         `json:"status,omitempty"`
}

type DeleteSeatsRequest struct {
	CinemaID string `json:"cinemaId" form:"cinemaId"`
	ShowID   string `json:"showId" form:"showId"`
	HallName string `json:"hallName" form:"hallName"`
}

type DeleteSeatsResponse struct {
	Success      bool   `json:"success"`
	DeletedCount int64  `json:"deletedCount"`
	Message      string `json:"message"`
}

type ListSeatsResponse struct {
	Success    bool   `json:"success"`
	TotalSeats int    `json:"totalSeats"`
	Seats      []Seat `json:"seats"`
}

// RecommendedSeat is the reduced seat view returned by recommendations.
type RecommendedSeat struct {
	SeatID string `json:"seatId"`
	Label  string `json:"label"`
	Row    string `json:"row"`
	Column int    `json:"column"`
}

type RecommendedGroup struct {
	Row   string            `json:"row"`
	Score int               `json:"score"`
	Seats []RecommendedSeat `json:"seats"`
}

type RecommendResponse struct {
	Success           bool               `json:"success"`
	RecommendedGroups []RecommendedGroup `json:"recommendedGroups"`
}

// Bookings

type CreateBookingRequest struct {
	ShowID  string   `json:"showId" binding:"required"`
	SeatIDs []string `json:"seatIds" binding:"required"`
}

type BookedSeat struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Row    string `json:"row"`
	Column int    `json:"column"`
}

type CreateBookingResponse struct {
	BookingID        string       `json:"bookingId"`
	TotalAmount      int64        `json:"totalAmount"`
	BookingStatus    string       `json:"bookingStatus"`
	BookingDate      time.Time    `json:"bookingDate"`
	Seats            []BookedSeat `json:"seats"`
	NotificationSent bool         `json:"notificationSent"`
	Warning          string       `json:"warning,omitempty"`
}

type BookingSearchFilter struct {
	Query  string `form:"q"`
	UserID string `form:"userId"`
	ShowID string `form:"showId"`
	Status string `form:"status"`
	Size   int    `form:"size"`
}
