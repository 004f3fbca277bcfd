package service

import (
	"context"

	"grabyourtickets/internal/auth"
	"grabyourtickets/internal/metrics"
	"grabyourtickets/internal/models"
	"grabyourtickets/internal/repository"
	"grabyourtickets/internal/seating"

	"github.com/google/uuid"

	apperrors "grabyourtickets/internal/errors"
)

// Stores. Lookups return nil, nil when the row does not exist.

type SeatStore interface {
	CreateBulk(ctx context.Context, seats []models.Seat) (int, error)
	List(ctx context.Context, filter models.SeatFilter) ([]models.Seat, error)
	ListByHall(ctx context.Context, scope models.HallScope) ([]models.Seat, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Seat, error)
	GetByID(ctx context.Context, id string) (*models.Seat, error)
	Update(ctx context.Context, id string, upd models.SeatUpdate) (*models.Seat, error)
	DeleteByHall(ctx context.Context, scope models.HallScope) (int64, error)
	SetStatusIfAvailable(ctx context.Context, id, showID, status string) (*models.Seat, error)
	// ReleaseSeats frees seats that no CONFIRMED booking references.
	ReleaseSeats(ctx context.Context, ids []string) (int64, error)
}

type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	CancelIfConfirmed(ctx context.Context, id string) (bool, error)
	DeleteAndRelease(ctx context.Context, id string, seatIDs []string) (bool, error)
}

type ShowStore interface {
	Create(ctx context.Context, show *models.Show) error
	GetByID(ctx context.Context, id string) (*models.Show, error)
	List(ctx context.Context, cinemaID string) ([]models.Show, error)
}

type CinemaStore interface {
	Create(ctx context.Context, cinema *models.Cinema) error
	GetByID(ctx context.Context, id string) (*models.Cinema, error)
	List(ctx context.Context) ([]models.Cinema, error)
}

type MovieStore interface {
	Create(ctx context.Context, movie *models.Movie) error
	GetByID(ctx context.Context, id string) (*models.Movie, error)
	List(ctx context.Context) ([]models.Movie, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpsertAdmin(ctx context.Context, user *models.User) error
}

// Collaborators. All of them are optional.

// Notifier dispatches booking notifications. Failures never undo a booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error
	BookingCancelled(ctx context.Context, event models.BookingCancelledEvent) error
}

// SeatCache drops cached seat snapshots of a show.
type SeatCache interface {
	InvalidateShow(ctx context.Context, showID string) error
}

// BookingSearcher queries the booking search index.
type BookingSearcher interface {
	SearchBookings(ctx context.Context, filter models.BookingSearchFilter) ([]models.Booking, error)
}

type AdminAccount struct {
	Name     string
	Email    string
	Password string
}

type Dependencies struct {
	Notifier  Notifier
	Cache     SeatCache
	Searcher  BookingSearcher
	Metrics   *metrics.Metrics
	Tokens    *auth.TokenManager
	Scoring   seating.Scoring
	SeatPrice int64
	Admin     AdminAccount
}

type Services struct {
	Seats    *SeatService
	Bookings *BookingService
	Catalog  *CatalogService
	Auth     *AuthService
}

func NewServices(repos *repository.Repositories, deps Dependencies) *Services {
	seatService := NewSeatService(repos.Seats, repos.Shows, deps.Cache, deps.Scoring)
	bookingService := NewBookingService(BookingServiceConfig{
		Bookings:  repos.Bookings,
		Seats:     repos.Seats,
		Shows:     repos.Shows,
		Users:     repos.Users,
		Notifier:  deps.Notifier,
		Cache:     deps.Cache,
		Searcher:  deps.Searcher,
		Metrics:   deps.Metrics,
		SeatPrice: deps.SeatPrice,
	})
	catalogService := NewCatalogService(repos.Cinemas, repos.Movies, repos.Shows)
	authService := NewAuthService(repos.Users, deps.Tokens, deps.Admin)

	return &Services{
		Seats:    seatService,
		Bookings: bookingService,
		Catalog:  catalogService,
		Auth:     authService,
	}
}

func requireUUID(field, value string) error {
	if value == "" {
		return apperrors.Validation(field, "is required")
	}
	if _, err := uuid.Parse(value); err != nil {
		return apperrors.Validation(field, "must be a valid id")
	}
	return nil
}

func optionalUUID(field, value string) error {
	if value == "" {
		return nil
	}
	return requireUUID(field, value)
}
