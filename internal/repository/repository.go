package repository

import (
	"grabyourtickets/internal/database"
)

type Repositories struct {
	Seats    *SeatRepository
	Bookings *BookingRepository
	Shows    *ShowRepository
	Cinemas  *CinemaRepository
	Movies   *MovieRepository
	Users    *UserRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Seats:    NewSeatRepository(db),
		Bookings: NewBookingRepository(db),
		Shows:    NewShowRepository(db),
		Cinemas:  NewCinemaRepository(db),
		Movies:   NewMovieRepository(db),
		Users:    NewUserRepository(db),
	}
}
