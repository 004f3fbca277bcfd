package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grabyourtickets/internal/logger"
	"grabyourtickets/internal/models"

	"github.com/google/uuid"

	apperrors "grabyourtickets/internal/errors"
)

const showDateLayout = "2006-01-02"

const maxMovieRating = 10

// CatalogService manages the cinemas, movies and shows that seat layouts and
// bookings are scoped to.
type CatalogService struct {
	cinemas CinemaStore
	movies  MovieStore
	shows   ShowStore
}

func NewCatalogService(cinemas CinemaStore, movies MovieStore, shows ShowStore) *CatalogService {
	return &CatalogService{cinemas: cinemas, movies: movies, shows: shows}
}

func (s *CatalogService) CreateCinema(ctx context.Context, req *models.CreateCinemaRequest) (*models.Cinema, error) {
	cinema := &models.Cinema{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(req.Name),
		Location: strings.TrimSpace(req.Location),
	}
	if cinema.Name == "" {
		return nil, apperrors.Validation("name", "is required")
	}
	if cinema.Location == "" {
		return nil, apperrors.Validation("location", "is required")
	}

	if err := s.cinemas.Create(ctx, cinema); err != nil {
		return nil, fmt.Errorf("failed to create cinema: %w", err)
	}

	logger.WithContext(ctx).Info("Cinema created", "cinema_id", cinema.ID, "name", cinema.Name)
	return cinema, nil
}

func (s *CatalogService) GetCinema(ctx context.Context, id string) (*models.Cinema, error) {
	if err := requireUUID("cinemaId", id); err != nil {
		return nil, err
	}
	cinema, err := s.cinemas.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get cinema: %w", err)
	}
	if cinema == nil {
		return nil, apperrors.NotFound("cinema", id)
	}
	return cinema, nil
}

func (s *CatalogService) ListCinemas(ctx context.Context) ([]models.Cinema, error) {
	cinemas, err := s.cinemas.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cinemas: %w", err)
	}
	return cinemas, nil
}

func (s *CatalogService) CreateMovie(ctx context.Context, req *models.CreateMovieRequest) (*models.Movie, error) {
	trailer := strings.TrimSpace(req.TrailerURL)
	if trailer == "" {
		trailer = strings.TrimSpace(req.Trailer)
	}

	movie := &models.Movie{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		Genre:       strings.TrimSpace(req.Genre),
		Language:    strings.TrimSpace(req.Language),
		DurationMin: req.Duration,
		Rating:      req.Rating,
		ReleaseDate: strings.TrimSpace(req.ReleaseDate),
		Description: strings.TrimSpace(req.Description),
		TrailerURL:  trailer,
		ImageURL:    strings.TrimSpace(req.Image),
	}

	for _, f := range []struct{ name, value string }{
		{"title", movie.Title},
		{"genre", movie.Genre},
		{"language", movie.Language},
		{"description", movie.Description},
		{"image", movie.ImageURL},
	} {
		if f.value == "" {
			return nil, apperrors.Validation(f.name, "is required")
		}
	}
	if movie.DurationMin <= 0 {
		return nil, apperrors.Validation("duration", "must be a positive number of minutes")
	}
	if movie.Rating < 0 || movie.Rating > maxMovieRating {
		return nil, apperrors.Validation("rating", fmt.Sprintf("must be between 0 and %d", maxMovieRating))
	}
	if _, err := time.Parse(showDateLayout, movie.ReleaseDate); err != nil {
		return nil, apperrors.Validation("releaseDate", "must be a date in YYYY-MM-DD format")
	}

	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	logger.WithContext(ctx).Info("Movie created", "movie_id", movie.ID, "title", movie.Title)
	return movie, nil
}

func (s *CatalogService) GetMovie(ctx context.Context, id string) (*models.Movie, error) {
	if err := requireUUID("movieId", id); err != nil {
		return nil, err
	}
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	if movie == nil {
		return nil, apperrors.NotFound("movie", id)
	}
	return movie, nil
}

func (s *CatalogService) ListMovies(ctx context.Context) ([]models.Movie, error) {
	movies, err := s.movies.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, nil
}

func (s *CatalogService) CreateShow(ctx context.Context, req *models.CreateShowRequest) (*models.Show, error) {
	if _, err := s.GetCinema(ctx, req.CinemaID); err != nil {
		return nil, err
	}

	show := &models.Show{
		ID:         uuid.New().String(),
		CinemaID:   req.CinemaID,
		MovieTitle: strings.TrimSpace(req.MovieTitle),
		ShowDate:   strings.TrimSpace(req.ShowDate),
		ShowTime:   strings.TrimSpace(req.ShowTime),
	}
	if req.MovieID != "" {
		movie, err := s.GetMovie(ctx, req.MovieID)
		if err != nil {
			return nil, err
		}
		show.MovieID = movie.ID
		show.MovieTitle = movie.Title
	}
	if show.MovieTitle == "" {
		return nil, apperrors.Validation("movieId", "a movie or movie title is required")
	}
	if _, err := time.Parse(showDateLayout, show.ShowDate); err != nil {
		return nil, apperrors.Validation("showDate", "must be a date in YYYY-MM-DD format")
	}
	if show.ShowTime == "" {
		return nil, apperrors.Validation("time", "is required")
	}

	if err := s.shows.Create(ctx, show); err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}

	logger.WithContext(ctx).Info("Show created",
		"show_id", show.ID,
		"cinema_id", show.CinemaID,
		"movie_id", show.MovieID,
		"movie_title", show.MovieTitle)
	return show, nil
}

func (s *CatalogService) GetShow(ctx context.Context, id string) (*models.Show, error) {
	if err := requireUUID("showId", id); err != nil {
		return nil, err
	}
	show, err := s.shows.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	if show == nil {
		return nil, apperrors.NotFound("show", id)
	}
	return show, nil
}

func (s *CatalogService) ListShows(ctx context.Context, cinemaID string) ([]models.Show, error) {
	if err := optionalUUID("cinemaId", cinemaID); err != nil {
		return nil, err
	}
	shows, err := s.shows.List(ctx, cinemaID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	return shows, nil
}
