package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"grabyourtickets/internal/config"
	"grabyourtickets/internal/database"
	"grabyourtickets/internal/logger"
	"grabyourtickets/internal/models"
	"grabyourtickets/internal/repository"
	"grabyourtickets/internal/seating"
	"grabyourtickets/internal/service"

	"github.com/joho/godotenv"
)

var (
	cinemaName = flag.String("cinema", "QFX Civil Mall", "Cinema name")
	location   = flag.String("location", "Kathmandu", "Cinema location")
	movie      = flag.String("movie", "Dune: Part Two", "Movie title")
	showDate   = flag.String("date", time.Now().AddDate(0, 0, 1).Format("2006-01-02"), "Show date (YYYY-MM-DD)")
	showTime   = flag.String("time", "18:30", "Show time")
	showID     = flag.String("show", "", "Seed an existing show instead of creating cinema and show")
	hallName   = flag.String("hall", "Hall 1", "Hall name")
	rows       = flag.Int("rows", 8, "Number of rows")
	columns    = flag.Int("cols", 12, "Seats per row")
	clearHall  = flag.Bool("clear", false, "Delete the hall's seats before generating")
	dryRun     = flag.Bool("dry-run", false, "Show what would be generated without making changes")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, "text")

	if *dryRun {
		layout, err := seating.GenerateLayout(seating.GridPositions(*rows, *columns), cfg.Scoring)
		if err != nil {
			slog.Error("Invalid layout", "error", err)
			os.Exit(1)
		}
		slog.Info("[DRY RUN] Would generate seats", "hall", *hallName, "seats", len(layout))
		return
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	services := service.NewServices(repository.NewRepositories(db), service.Dependencies{
		Scoring:   cfg.Scoring,
		SeatPrice: cfg.Booking.SeatPrice,
	})

	if err := seed(context.Background(), services); err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, services *service.Services) error {
	show, err := resolveShow(ctx, services.Catalog)
	if err != nil {
		return err
	}

	scope := models.HallScope{CinemaID: show.CinemaID, ShowID: show.ID, HallName: *hallName}
	if *clearHall {
		deleted, err := services.Seats.DeleteByHall(ctx, scope)
		if err != nil {
			return fmt.Errorf("failed to clear hall: %w", err)
		}
		slog.Info("Cleared hall", "hall", *hallName, "deleted", deleted)
	}

	resp, err := services.Seats.GenerateLayout(ctx, &models.GenerateSeatsRequest{
		CinemaID: scope.CinemaID,
		ShowID:   scope.ShowID,
		HallName: scope.HallName,
		Rows:     models.FlexibleInt(*rows),
		Columns:  models.FlexibleInt(*columns),
	})
	if err != nil {
		return fmt.Errorf("failed to generate seats: %w", err)
	}

	slog.Info("Seed completed",
		"cinema_id", show.CinemaID,
		"show_id", show.ID,
		"hall", *hallName,
		"seats_created", resp.TotalSeatsCreated)
	return nil
}

func resolveShow(ctx context.Context, catalog *service.CatalogService) (*models.Show, error) {
	if *showID != "" {
		return catalog.GetShow(ctx, *showID)
	}

	cinema, err := catalog.CreateCinema(ctx, &models.CreateCinemaRequest{Name: *cinemaName, Location: *location})
	if err != nil {
		return nil, fmt.Errorf("failed to create cinema: %w", err)
	}

	film, err := catalog.CreateMovie(ctx, &models.CreateMovieRequest{
		Title:       *movie,
		Genre:       "Sci-Fi",
		Language:    "English",
		Duration:    166,
		Rating:      8.5,
		ReleaseDate: "2024-03-01",
		Description: "Seeded movie",
		Image:       "https://example.com/poster.jpg",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create movie: %w", err)
	}

	show, err := catalog.CreateShow(ctx, &models.CreateShowRequest{
		CinemaID: cinema.ID,
		MovieID:  film.ID,
		ShowDate: *showDate,
		ShowTime: *showTime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create show: %w", err)
	}
	return show, nil
}
