package repository

import (
	"context"
	"database/sql"

	"grabyourtickets/internal/database"
	"grabyourtickets/internal/models"
)

type CinemaRepository struct {
	db *database.DB
}

func NewCinemaRepository(db *database.DB) *CinemaRepository {
	return &CinemaRepository{db: db}
}

func (r *CinemaRepository) Create(ctx context.Context, cinema *models.Cinema) error {
	query := `
		INSERT INTO cinemas (id, name, location)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	return r.db.QueryRowContext(ctx, query, cinema.ID, cinema.Name, cinema.Location).
		Scan(&cinema.CreatedAt)
}

func (r *CinemaRepository) GetByID(ctx context.Context, id string) (*models.Cinema, error) {
	cinema := &models.Cinema{}
	query := `SELECT id, name, location, created_at FROM cinemas WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&cinema.ID, &cinema.Name, &cinema.Location, &cinema.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cinema, nil
}

func (r *CinemaRepository) List(ctx context.Context) ([]models.Cinema, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, location, created_at FROM cinemas ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cinemas := make([]models.Cinema, 0)
	for rows.Next() {
		var c models.Cinema
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.CreatedAt); err != nil {
			return nil, err
		}
		cinemas = append(cinemas, c)
	}
	return cinemas, rows.Err()
}

type MovieRepository struct {
	db *database.DB
}

func NewMovieRepository(db *database.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

const movieColumns = `id, title, genre, language, duration_min, rating, release_date,
		       description, trailer_url, image_url, created_at`

func scanMovie(s rowScanner) (models.Movie, error) {
	var m models.Movie
	err := s.Scan(
		&m.ID,
		&m.Title,
		&m.Genre,
		&m.Language,
		&m.DurationMin,
		&m.Rating,
		&m.ReleaseDate,
		&m.Description,
		&m.TrailerURL,
		&m.ImageURL,
		&m.CreatedAt,
	)
	return m, err
}

func (r *MovieRepository) Create(ctx context.Context, movie *models.Movie) error {
	query := `
		INSERT INTO movies (id, title, genre, language, duration_min, rating, release_date,
			description, trailer_url, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	return r.db.QueryRowContext(ctx, query,
		movie.ID, movie.Title, movie.Genre, movie.Language, movie.DurationMin, movie.Rating,
		movie.ReleaseDate, movie.Description, movie.TrailerURL, movie.ImageURL,
	).Scan(&movie.CreatedAt)
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	movie, err := scanMovie(r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *MovieRepository) List(ctx context.Context) ([]models.Movie, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY release_date DESC, title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]models.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

type ShowRepository struct {
	db *database.DB
}

func NewShowRepository(db *database.DB) *ShowRepository {
	return &ShowRepository{db: db}
}

const showSelect = `
		SELECT s.id, s.cinema_id, s.movie_id, s.movie_title, s.show_date, s.show_time,
		       c.name, c.location, s.created_at
		FROM shows s
		JOIN cinemas c ON c.id = s.cinema_id`

func scanShow(s rowScanner) (models.Show, error) {
	var show models.Show
	var movieID sql.NullString
	err := s.Scan(
		&show.ID,
		&show.CinemaID,
		&movieID,
		&show.MovieTitle,
		&show.ShowDate,
		&show.ShowTime,
		&show.CinemaName,
		&show.CinemaLocation,
		&show.CreatedAt,
	)
	show.MovieID = movieID.String
	return show, err
}

func (r *ShowRepository) Create(ctx context.Context, show *models.Show) error {
	query := `
		INSERT INTO shows (id, cinema_id, movie_id, movie_title, show_date, show_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	movieID := sql.NullString{String: show.MovieID, Valid: show.MovieID != ""}
	return r.db.QueryRowContext(ctx, query,
		show.ID, show.CinemaID, movieID, show.MovieTitle, show.ShowDate, show.ShowTime,
	).Scan(&show.CreatedAt)
}

// GetByID returns the show joined with its cinema, or nil when missing.
func (r *ShowRepository) GetByID(ctx context.Context, id string) (*models.Show, error) {
	show, err := scanShow(r.db.QueryRowContext(ctx, showSelect+` WHERE s.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &show, nil
}

func (r *ShowRepository) List(ctx context.Context, cinemaID string) ([]models.Show, error) {
	query := showSelect
	var args []any
	if cinemaID != "" {
		query += ` WHERE s.cinema_id = $1`
		args = append(args, cinemaID)
	}
	query += ` ORDER BY s.show_date, s.show_time`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shows := make([]models.Show, 0)
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, show)
	}
	return shows, rows.Err()
}
