package handlers

import (
	"context"
	"errors"
	"net/http"

	"grabyourtickets/internal/auth"
	"grabyourtickets/internal/logger"
	"grabyourtickets/internal/middleware"
	"grabyourtickets/internal/models"
	"grabyourtickets/internal/service"

	"github.com/gin-gonic/gin"

	apperrors "grabyourtickets/internal/errors"
)

type SeatService interface {
	GenerateLayout(ctx context.Context, req *models.GenerateSeatsRequest) (*models.GenerateSeatsResponse, error)
	List(ctx context.Context, filter models.SeatFilter) ([]models.Seat, error)
	ListByHall(ctx context.Context, scope models.HallScope) ([]models.Seat, error)
	Get(ctx context.Context, id string) (*models.Seat, error)
	Update(ctx context.Context, req *models.UpdateSeatRequest) (*models.Seat, error)
	DeleteByHall(ctx context.Context, scope models.HallScope) (int64, error)
	Recommend(ctx context.Context, scope models.HallScope, count int, mode string) ([]models.RecommendedGroup, error)
}

type BookingService interface {
	Create(ctx context.Context, id auth.Identity, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error)
	Cancel(ctx context.Context, id auth.Identity, bookingID string) (*models.Booking, error)
	Delete(ctx context.Context, id auth.Identity, bookingID string, force bool) error
	ListMine(ctx context.Context, id auth.Identity) ([]models.Booking, error)
	Get(ctx context.Context, id auth.Identity, bookingID string) (*models.Booking, error)
	ListAll(ctx context.Context, id auth.Identity) ([]models.Booking, error)
	Search(ctx context.Context, id auth.Identity, filter models.BookingSearchFilter) ([]models.Booking, error)
}

type CatalogService interface {
	CreateCinema(ctx context.Context, req *models.CreateCinemaRequest) (*models.Cinema, error)
	GetCinema(ctx context.Context, id string) (*models.Cinema, error)
	ListCinemas(ctx context.Context) ([]models.Cinema, error)
	CreateMovie(ctx context.Context, req *models.CreateMovieRequest) (*models.Movie, error)
	GetMovie(ctx context.Context, id string) (*models.Movie, error)
	ListMovies(ctx context.Context) ([]models.Movie, error)
	CreateShow(ctx context.Context, req *models.CreateShowRequest) (*models.Show, error)
	GetShow(ctx context.Context, id string) (*models.Show, error)
	ListShows(ctx context.Context, cinemaID string) ([]models.Show, error)
}

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
}

// HallSeatCache stores the JSON seat list of a hall. A miss reports the show
// generation, and SetHallSeats drops the fill when the show changed since.
type HallSeatCache interface {
	GetHallSeatsRaw(ctx context.Context, cinemaID, showID, hallName string) ([]byte, int64, error)
	SetHallSeats(ctx context.Context, generation int64, cinemaID, showID, hallName string, value any) error
}

type Handlers struct {
	seats    SeatService
	bookings BookingService
	catalog  CatalogService
	auth     AuthService
	cache    HallSeatCache
}

// NewHandlers wires the handlers to the services. cache may be nil.
func NewHandlers(services *service.Services, cache HallSeatCache) *Handlers {
	return &Handlers{
		seats:    services.Seats,
		bookings: services.Bookings,
		catalog:  services.Catalog,
		auth:     services.Auth,
		cache:    cache,
	}
}

func identity(c *gin.Context) auth.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

// handleServiceError maps service errors to HTTP responses. Unknown errors
// are logged and answered with 500 and the generic message.
func (h *Handlers) handleServiceError(c *gin.Context, err error, message string) {
	var (
		validationErr *apperrors.ValidationError
		conflictErr   *apperrors.ConflictError
		notFoundErr   *apperrors.NotFoundError
		authzErr      *apperrors.AuthorizationError
		dependencyErr *apperrors.DependencyError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &conflictErr):
		body := gin.H{"error": conflictErr.Message}
		if len(conflictErr.SeatIDs) > 0 {
			body["seatIds"] = conflictErr.SeatIDs
		}
		if len(conflictErr.Labels) > 0 {
			body["seats"] = conflictErr.Labels
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &authzErr):
		c.JSON(http.StatusForbidden, gin.H{"error": authzErr.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &dependencyErr):
		logger.WithContext(c.Request.Context()).Warn(message, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": dependencyErr.Error()})
	default:
		logger.WithContext(c.Request.Context()).Error(message, "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
