package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"grabyourtickets/internal/database"
	"grabyourtickets/internal/logger"
	"grabyourtickets/internal/models"
	"grabyourtickets/internal/seating"

	"github.com/google/uuid"

	apperrors "grabyourtickets/internal/errors"
)

type SeatService struct {
	seats   SeatStore
	shows   ShowStore
	cache   SeatCache
	scoring seating.Scoring
}

func NewSeatService(seats SeatStore, shows ShowStore, cache SeatCache, scoring seating.Scoring) *SeatService {
	return &SeatService{
		seats:   seats,
		shows:   shows,
		cache:   cache,
		scoring: scoring,
	}
}

// GenerateLayout places the requested seats of a hall and stores them as
// AVAILABLE. Positions that already exist are skipped and show up as the
// difference between created and requested.
func (s *SeatService) GenerateLayout(ctx context.Context, req *models.GenerateSeatsRequest) (*models.GenerateSeatsResponse, error) {
	scope := models.HallScope{CinemaID: req.CinemaID, ShowID: req.ShowID, HallName: strings.TrimSpace(req.HallName)}
	if err := validateScope(scope); err != nil {
		return nil, err
	}

	positions := make([]seating.Position, 0, len(req.Seats))
	for _, p := range req.Seats {
		positions = append(positions, seating.Position{Row: p.Row.String(), Column: p.Column.Int()})
	}
	if len(positions) == 0 {
		positions = seating.GridPositions(req.Rows.Int(), req.Columns.Int())
	}
	if len(positions) == 0 {
		return nil, apperrors.Validation("seats", "provide a seat list or positive rows and columns")
	}

	if err := s.checkShow(ctx, scope); err != nil {
		return nil, err
	}

	placed, err := seating.GenerateLayout(positions, s.scoring)
	if err != nil {
		return nil, err
	}

	seats := make([]models.Seat, 0, len(placed))
	for _, p := range placed {
		seats = append(seats, models.Seat{
			ID:           uuid.New().String(),
			CinemaID:     scope.CinemaID,
			ShowID:       scope.ShowID,
			HallName:     scope.HallName,
			Row:          p.Row,
			Column:       p.Column,
			SeatNumber:   p.SeatNumber,
			IsBestRow:    p.IsBestRow,
			IsCenterSeat: p.IsCenterSeat,
			Status:       models.SeatAvailable,
		})
	}

	created, err := s.seats.CreateBulk(ctx, seats)
	if err != nil {
		return nil, fmt.Errorf("failed to create seats: %w", err)
	}
	invalidateShow(ctx, s.cache, scope.ShowID)

	logger.WithContext(ctx).Info("Seat layout generated",
		"cinema_id", scope.CinemaID,
		"show_id", scope.ShowID,
		"hall_name", scope.HallName,
		"created", created,
		"requested", len(seats))

	return &models.GenerateSeatsResponse{
		Success:           true,
		TotalSeatsCreated: created,
		TotalRequested:    len(seats),
	}, nil
}

func (s *SeatService) checkShow(ctx context.Context, scope models.HallScope) error {
	show, err := s.shows.GetByID(ctx, scope.ShowID)
	if err != nil {
		return fmt.Errorf("failed to get show: %w", err)
	}
	if show == nil {
		return apperrors.NotFound("show", scope.ShowID)
	}
	if show.CinemaID != scope.CinemaID {
		return apperrors.Validation("showId", "show does not belong to the cinema")
	}
	return nil
}

func (s *SeatService) List(ctx context.Context, filter models.SeatFilter) ([]models.Seat, error) {
	if err := optionalUUID("cinemaId", filter.CinemaID); err != nil {
		return nil, err
	}
	if err := optionalUUID("showId", filter.ShowID); err != nil {
		return nil, err
	}

	seats, err := s.seats.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	return seats, nil
}

func (s *SeatService) ListByHall(ctx context.Context, scope models.HallScope) ([]models.Seat, error) {
	scope.HallName = strings.TrimSpace(scope.HallName)
	if err := validateScope(scope); err != nil {
		return nil, err
	}

	seats, err := s.seats.ListByHall(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list hall seats: %w", err)
	}
	return seats, nil
}

func (s *SeatService) Get(ctx context.Context, id string) (*models.Seat, error) {
	if err := requireUUID("seatId", id); err != nil {
		return nil, err
	}

	seat, err := s.seats.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}
	if seat == nil {
		return nil, apperrors.NotFound("seat", id)
	}
	return seat, nil
}

// rowLabelPattern matches what row_label can hold.
var rowLabelPattern = regexp.MustCompile(`^[A-Z]{1,2}$`)

func (s *SeatService) Update(ctx context.Context, req *models.UpdateSeatRequest) (*models.Seat, error) {
	if err := requireUUID("seatId", req.SeatID); err != nil {
		return nil, err
	}

	var upd models.SeatUpdate
	if req.Row != nil {
		row := strings.ToUpper(strings.TrimSpace(req.Row.String()))
		if row == "" {
			return nil, apperrors.Validation("row", "must not be empty")
		}
		if !rowLabelPattern.MatchString(row) {
			return nil, apperrors.Validation("row", "must be one or two letters")
		}
		upd.Row = &row
	}
	if req.Column != nil {
		column := req.Column.Int()
		if column <= 0 {
			return nil, apperrors.Validation("column", "must be a positive integer")
		}
		upd.Column = &column
	}
	if req.Status != nil {
		status := strings.ToUpper(strings.TrimSpace(*req.Status))
		if status != models.SeatAvailable && status != models.SeatBooked {
			return nil, apperrors.Validation("status", "must be AVAILABLE or BOOKED")
		}
		upd.Status = &status
	}

	seat, err := s.seats.Update(ctx, req.SeatID, upd)
	if database.IsUniqueViolation(err) {
		return nil, &apperrors.ConflictError{
			Message: "another seat already occupies this position",
			SeatIDs: []string{req.SeatID},
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update seat: %w", err)
	}
	if seat == nil {
		return nil, apperrors.NotFound("seat", req.SeatID)
	}

	invalidateShow(ctx, s.cache, seat.ShowID)
	return seat, nil
}

func (s *SeatService) DeleteByHall(ctx context.Context, scope models.HallScope) (int64, error) {
	scope.HallName = strings.TrimSpace(scope.HallName)
	if err := validateScope(scope); err != nil {
		return 0, err
	}

	deleted, err := s.seats.DeleteByHall(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("failed to delete seats: %w", err)
	}
	invalidateShow(ctx, s.cache, scope.ShowID)

	logger.WithContext(ctx).Info("Seat layout deleted",
		"cinema_id", scope.CinemaID,
		"show_id", scope.ShowID,
		"hall_name", scope.HallName,
		"deleted", deleted)
	return deleted, nil
}

// Recommend ranks groups of consecutive available seats in a hall.
func (s *SeatService) Recommend(ctx context.Context, scope models.HallScope, count int, mode string) ([]models.RecommendedGroup, error) {
	seats, err := s.ListByHall(ctx, scope)
	if err != nil {
		return nil, err
	}

	groups, err := seating.Recommend(seats, count, seating.ParseMode(mode), s.scoring)
	if err != nil {
		if errors.Is(err, seating.ErrNoAvailableSeats) ||
			errors.Is(err, seating.ErrNoConsecutiveSeatsAvailable) ||
			errors.Is(err, seating.ErrNoConsecutiveSeatsFound) {
			return nil, &apperrors.NotFoundError{Resource: "seats", Err: err}
		}
		return nil, err
	}
	return seating.ToRecommended(groups), nil
}

func validateScope(scope models.HallScope) error {
	if err := requireUUID("cinemaId", scope.CinemaID); err != nil {
		return err
	}
	if err := requireUUID("showId", scope.ShowID); err != nil {
		return err
	}
	if scope.HallName == "" {
		return apperrors.Validation("hallName", "is required")
	}
	return nil
}

func invalidateShow(ctx context.Context, cache SeatCache, showID string) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateShow(ctx, showID); err != nil {
		logger.WithContext(ctx).Warn("Failed to invalidate seat cache", "show_id", showID, "error", err)
	}
}
