package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"grabyourtickets/internal/auth"
	"grabyourtickets/internal/logger"
	"grabyourtickets/internal/metrics"
	"grabyourtickets/internal/models"

	"github.com/google/uuid"

	apperrors "grabyourtickets/internal/errors"
)

// DefaultSeatPrice is used when no price is configured.
const DefaultSeatPrice int64 = 200

const notificationWarning = "booking confirmed but the confirmation email could not be sent"

type BookingServiceConfig struct {
	Bookings  BookingStore
	Seats     SeatStore
	Shows     ShowStore
	Users     UserStore
	Notifier  Notifier
	Cache     SeatCache
	Searcher  BookingSearcher
	Metrics   *metrics.Metrics
	SeatPrice int64
}

type BookingService struct {
	bookings  BookingStore
	seats     SeatStore
	shows     ShowStore
	users     UserStore
	notifier  Notifier
	cache     SeatCache
	searcher  BookingSearcher
	metrics   *metrics.Metrics
	seatPrice int64
	now       func() time.Time
}

func NewBookingService(cfg BookingServiceConfig) *BookingService {
	price := cfg.SeatPrice
	if price <= 0 {
		price = DefaultSeatPrice
	}
	return &BookingService{
		bookings:  cfg.Bookings,
		seats:     cfg.Seats,
		shows:     cfg.Shows,
		users:     cfg.Users,
		notifier:  cfg.Notifier,
		cache:     cfg.Cache,
		searcher:  cfg.Searcher,
		metrics:   cfg.Metrics,
		seatPrice: price,
		now:       time.Now,
	}
}

// Create books every requested seat or none of them.
//
// Seats are flipped one by one with a conditional update, in id order, and
// the loop stops at the first seat that cannot be taken. Seats flipped so far
// are released again. Two overlapping requests therefore always meet on their
// lowest shared seat and exactly one of them wins it.
func (s *BookingService) Create(ctx context.Context, id auth.Identity, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	if id.ID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if id.IsAdmin() {
		return nil, apperrors.Forbidden("admins cannot book seats")
	}

	seatIDs, err := validateBookingRequest(req)
	if err != nil {
		return nil, err
	}

	show, err := s.shows.GetByID(ctx, req.ShowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	if show == nil {
		return nil, apperrors.NotFound("show", req.ShowID)
	}

	booked, err := s.acquireSeats(ctx, req.ShowID, seatIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	booking := &models.Booking{
		ID:          uuid.New().String(),
		UserID:      id.ID,
		ShowID:      req.ShowID,
		SeatIDs:     seatIDs,
		TotalAmount: int64(len(seatIDs)) * s.seatPrice,
		Status:      models.BookingConfirmed,
		BookingDate: now,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		s.release(ctx, seatIDs)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	invalidateShow(ctx, s.cache, req.ShowID)
	s.metrics.BookingCreated()

	log := logger.WithContext(ctx)
	log.Info("Booking confirmed",
		"booking_id", booking.ID,
		"show_id", booking.ShowID,
		"seats", len(seatIDs),
		"total_amount", booking.TotalAmount)

	resp := &models.CreateBookingResponse{
		BookingID:        booking.ID,
		TotalAmount:      booking.TotalAmount,
		BookingStatus:    booking.Status,
		BookingDate:      booking.BookingDate,
		Seats:            make([]models.BookedSeat, 0, len(booked)),
		NotificationSent: true,
	}
	for _, seat := range booked {
		resp.Seats = append(resp.Seats, models.BookedSeat{
			ID:     seat.ID,
			Label:  seat.SeatNumber,
			Row:    seat.Row,
			Column: seat.Column,
		})
	}

	if err := s.notifyConfirmed(ctx, id, booking, show, booked); err != nil {
		log.Warn("Booking notification failed",
			"booking_id", booking.ID,
			"error", err)
		resp.NotificationSent = false
		resp.Warning = notificationWarning
	}

	return resp, nil
}

// validateBookingRequest returns the requested seat ids sorted.
func validateBookingRequest(req *models.CreateBookingRequest) ([]string, error) {
	if err := requireUUID("showId", req.ShowID); err != nil {
		return nil, err
	}
	if len(req.SeatIDs) == 0 {
		return nil, apperrors.Validation("seatIds", "at least one seat is required")
	}

	seen := make(map[string]struct{}, len(req.SeatIDs))
	ids := make([]string, 0, len(req.SeatIDs))
	for _, raw := range req.SeatIDs {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.Validation("seatIds", fmt.Sprintf("invalid seat id %q", raw))
		}
		id := parsed.String()
		if _, dup := seen[id]; dup {
			return nil, apperrors.Validation("seatIds", fmt.Sprintf("seat %s is listed twice", id))
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *BookingService) acquireSeats(ctx context.Context, showID string, seatIDs []string) ([]models.Seat, error) {
	booked := make([]models.Seat, 0, len(seatIDs))
	for i, seatID := range seatIDs {
		seat, err := s.seats.SetStatusIfAvailable(ctx, seatID, showID, models.SeatBooked)
		if err != nil {
			s.release(ctx, bookedIDs(booked))
			return nil, fmt.Errorf("failed to book seat %s: %w", seatID, err)
		}
		if seat != nil {
			booked = append(booked, *seat)
			continue
		}

		s.release(ctx, bookedIDs(booked))
		s.metrics.BookingConflict()
		return nil, s.conflict(ctx, showID, seatIDs[i:])
	}
	return booked, nil
}

// conflict describes which of the not yet acquired seats are unavailable.
// The first of them is always included since it just failed.
func (s *BookingService) conflict(ctx context.Context, showID string, remaining []string) error {
	err := &apperrors.ConflictError{Message: "some seats are already booked"}

	seats, lookupErr := s.seats.ListByIDs(ctx, remaining)
	if lookupErr != nil {
		logger.WithContext(ctx).Warn("Failed to load conflicting seats", "error", lookupErr)
		err.SeatIDs = remaining[:1]
		return err
	}

	byID := make(map[string]models.Seat, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat
	}

	for i, id := range remaining {
		seat, ok := byID[id]
		switch {
		case !ok || seat.ShowID != showID:
			err.SeatIDs = append(err.SeatIDs, id)
			err.Labels = append(err.Labels, id+" (not found)")
		case !seat.Available() || i == 0:
			err.SeatIDs = append(err.SeatIDs, id)
			err.Labels = append(err.Labels, seat.SeatNumber)
		}
	}
	return err
}

func (s *BookingService) release(ctx context.Context, seatIDs []string) {
	if len(seatIDs) == 0 {
		return
	}
	if _, err := s.seats.ReleaseSeats(ctx, seatIDs); err != nil {
		logger.WithContext(ctx).Error("Failed to release seats",
			"seat_ids", seatIDs,
			"error", err)
	}
}

func bookedIDs(seats []models.Seat) []string {
	ids := make([]string, len(seats))
	for i, seat := range seats {
		ids[i] = seat.ID
	}
	return ids
}

func (s *BookingService) notifyConfirmed(ctx context.Context, id auth.Identity, booking *models.Booking, show *models.Show, seats []models.Seat) error {
	if s.notifier == nil {
		return &apperrors.DependencyError{Dependency: "notifier", Err: errors.New("not configured")}
	}

	event := models.BookingConfirmedEvent{
		BookingID:      booking.ID,
		UserID:         id.ID,
		UserName:       id.Name,
		UserEmail:      id.Email,
		ShowID:         show.ID,
		MovieTitle:     show.MovieTitle,
		CinemaName:     show.CinemaName,
		CinemaLocation: show.CinemaLocation,
		ShowDate:       show.ShowDate,
		ShowTime:       show.ShowTime,
		TotalAmount:    booking.TotalAmount,
		BookingDate:    booking.BookingDate,
		Timestamp:      s.now(),
	}
	for _, seat := range seats {
		event.SeatLabels = append(event.SeatLabels, seat.SeatNumber)
		event.HallName = seat.HallName
	}

	// Tokens may predate a profile change, prefer the stored profile.
	if s.users != nil {
		if user, err := s.users.GetByID(ctx, id.ID); err == nil && user != nil {
			event.UserName = user.Name
			event.UserEmail = user.Email
		}
	}

	if err := s.notifier.BookingConfirmed(ctx, event); err != nil {
		return &apperrors.DependencyError{Dependency: "notifier", Err: err}
	}
	return nil
}

// Cancel cancels a confirmed booking of the caller and frees its seats.
func (s *BookingService) Cancel(ctx context.Context, id auth.Identity, bookingID string) (*models.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != id.ID {
		return nil, apperrors.Forbidden("you can only cancel your own bookings")
	}
	if booking.Status == models.BookingCancelled {
		return nil, &apperrors.ConflictError{Message: "booking already cancelled"}
	}

	ok, err := s.bookings.CancelIfConfirmed(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}
	if !ok {
		return nil, &apperrors.ConflictError{Message: "booking already cancelled"}
	}

	s.release(ctx, booking.SeatIDs)
	invalidateShow(ctx, s.cache, booking.ShowID)
	s.metrics.BookingCancelled()

	booking.Status = models.BookingCancelled
	booking.UpdatedAt = s.now()

	log := logger.WithContext(ctx)
	log.Info("Booking cancelled", "booking_id", booking.ID, "seats", len(booking.SeatIDs))

	if s.notifier != nil {
		event := models.BookingCancelledEvent{
			BookingID: booking.ID,
			UserID:    booking.UserID,
			ShowID:    booking.ShowID,
			SeatIDs:   booking.SeatIDs,
			Reason:    "cancelled by user",
			Timestamp: s.now(),
		}
		if err := s.notifier.BookingCancelled(ctx, event); err != nil {
			log.Warn("Failed to publish booking cancelled event", "booking_id", booking.ID, "error", err)
		}
	}

	return booking, nil
}

// Delete removes a booking record. Without force only cancelled bookings may
// be removed. Its seats are released unless another confirmed booking has
// taken them since.
func (s *BookingService) Delete(ctx context.Context, id auth.Identity, bookingID string, force bool) error {
	if !id.IsAdmin() {
		return apperrors.Forbidden("admin access required")
	}

	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return err
	}
	if !force && booking.Status != models.BookingCancelled && booking.Status != "" {
		return apperrors.Validation("booking", "only cancelled bookings can be deleted")
	}

	deleted, err := s.bookings.DeleteAndRelease(ctx, booking.ID, booking.SeatIDs)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if !deleted {
		return apperrors.NotFound("booking", bookingID)
	}
	invalidateShow(ctx, s.cache, booking.ShowID)

	logger.WithContext(ctx).Info("Booking deleted",
		"booking_id", booking.ID,
		"force", force,
		"previous_status", booking.Status)
	return nil
}

func (s *BookingService) ListMine(ctx context.Context, id auth.Identity) ([]models.Booking, error) {
	if id.ID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	bookings, err := s.bookings.ListByUser(ctx, id.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// Get returns a booking with its seats to its owner or an admin.
func (s *BookingService) Get(ctx context.Context, id auth.Identity, bookingID string) (*models.Booking, error) {
	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != id.ID && !id.IsAdmin() {
		return nil, apperrors.Forbidden("you can only view your own bookings")
	}

	if len(booking.SeatIDs) > 0 {
		seats, err := s.seats.ListByIDs(ctx, booking.SeatIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to get booking seats: %w", err)
		}
		booking.Seats = seats
	}
	return booking, nil
}

func (s *BookingService) ListAll(ctx context.Context, id auth.Identity) ([]models.Booking, error) {
	if !id.IsAdmin() {
		return nil, apperrors.Forbidden("admin access required")
	}
	bookings, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

var ErrSearchDisabled = errors.New("booking search is not configured")

func (s *BookingService) Search(ctx context.Context, id auth.Identity, filter models.BookingSearchFilter) ([]models.Booking, error) {
	if !id.IsAdmin() {
		return nil, apperrors.Forbidden("admin access required")
	}
	if s.searcher == nil {
		return nil, &apperrors.DependencyError{Dependency: "search", Err: ErrSearchDisabled}
	}
	bookings, err := s.searcher.SearchBookings(ctx, filter)
	if err != nil {
		return nil, &apperrors.DependencyError{Dependency: "search", Err: err}
	}
	return bookings, nil
}

func (s *BookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	if err := requireUUID("bookingId", bookingID); err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking", bookingID)
	}
	return booking, nil
}
