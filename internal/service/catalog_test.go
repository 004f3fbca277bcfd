package service

import (
	"context"
	"errors"
	"testing"

	"grabyourtickets/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "grabyourtickets/internal/errors"
)

func TestCatalogCinemasAndShows(t *testing.T) {
	f := newFixture()
	svc := f.catalogService()
	ctx := context.Background()

	cinema, err := svc.CreateCinema(ctx, &models.CreateCinemaRequest{Name: " Big Movies ", Location: "Pokhara"})
	require.NoError(t, err)
	assert.Equal(t, "Big Movies", cinema.Name)

	got, err := svc.GetCinema(ctx, cinema.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pokhara", got.Location)

	show, err := svc.CreateShow(ctx, &models.CreateShowRequest{
		CinemaID:   cinema.ID,
		MovieTitle: "Arrival",
		ShowDate:   "2026-03-04",
		ShowTime:   "20:30",
	})
	require.NoError(t, err)

	shows, err := svc.ListShows(ctx, cinema.ID)
	require.NoError(t, err)
	require.Len(t, shows, 1)
	assert.Equal(t, show.ID, shows[0].ID)

	cinemas, err := svc.ListCinemas(ctx)
	require.NoError(t, err)
	assert.Len(t, cinemas, 2)
}

func TestCatalogValidation(t *testing.T) {
	f := newFixture()
	svc := f.catalogService()
	ctx := context.Background()

	var verr *apperrors.ValidationError
	_, err := svc.CreateCinema(ctx, &models.CreateCinemaRequest{Name: " ", Location: "x"})
	assert.True(t, errors.As(err, &verr))

	_, err = svc.CreateShow(ctx, &models.CreateShowRequest{
		CinemaID: f.cinemaID, MovieTitle: "Dune", ShowDate: "04/03/2026", ShowTime: "20:30",
	})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "showDate", verr.Field)

	_, err = svc.CreateShow(ctx, &models.CreateShowRequest{
		CinemaID: uuid.New().String(), MovieTitle: "Dune", ShowDate: "2026-03-04", ShowTime: "20:30",
	})
	var nf *apperrors.NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = svc.GetShow(ctx, uuid.New().String())
	assert.True(t, errors.As(err, &nf))

	_, err = svc.ListShows(ctx, "not-an-id")
	assert.True(t, errors.As(err, &verr))
}

func validMovie() *models.CreateMovieRequest {
	return &models.CreateMovieRequest{
		Title:       " Arrival ",
		Genre:       "Sci-Fi",
		Language:    "English",
		Duration:    116,
		Rating:      7.9,
		ReleaseDate: "2016-11-11",
		Description: "Linguist meets visitors.",
		Trailer:     "https://example.com/arrival",
		Image:       "https://example.com/arrival.jpg",
	}
}

func TestCatalogMovies(t *testing.T) {
	f := newFixture()
	svc := f.catalogService()
	ctx := context.Background()

	movie, err := svc.CreateMovie(ctx, validMovie())
	require.NoError(t, err)
	assert.Equal(t, "Arrival", movie.Title)
	assert.Equal(t, "https://example.com/arrival", movie.TrailerURL)

	got, err := svc.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, 116, got.DurationMin)

	movies, err := svc.ListMovies(ctx)
	require.NoError(t, err)
	assert.Len(t, movies, 1)

	show, err := svc.CreateShow(ctx, &models.CreateShowRequest{
		CinemaID:   f.cinemaID,
		MovieID:    movie.ID,
		MovieTitle: "ignored",
		ShowDate:   "2026-03-04",
		ShowTime:   "20:30",
	})
	require.NoError(t, err)
	assert.Equal(t, movie.ID, show.MovieID)
	assert.Equal(t, "Arrival", show.MovieTitle)
}

func TestCatalogMovieValidation(t *testing.T) {
	f := newFixture()
	svc := f.catalogService()
	ctx := context.Background()

	cases := map[string]func(*models.CreateMovieRequest){
		"genre":       func(r *models.CreateMovieRequest) { r.Genre = " " },
		"duration":    func(r *models.CreateMovieRequest) { r.Duration = -5 },
		"rating":      func(r *models.CreateMovieRequest) { r.Rating = 11 },
		"releaseDate": func(r *models.CreateMovieRequest) { r.ReleaseDate = "11/11/2016" },
	}
	for field, mutate := range cases {
		req := validMovie()
		mutate(req)
		_, err := svc.CreateMovie(ctx, req)
		var verr *apperrors.ValidationError
		require.True(t, errors.As(err, &verr), field)
		assert.Equal(t, field, verr.Field)
	}

	_, err := svc.CreateShow(ctx, &models.CreateShowRequest{
		CinemaID: f.cinemaID, MovieID: uuid.New().String(), ShowDate: "2026-03-04", ShowTime: "20:30",
	})
	var nf *apperrors.NotFoundError
	assert.True(t, errors.As(err, &nf))

	_, err = svc.CreateShow(ctx, &models.CreateShowRequest{
		CinemaID: f.cinemaID, ShowDate: "2026-03-04", ShowTime: "20:30",
	})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "movieId", verr.Field)
}
