package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"grabyourtickets/internal/models"
	"grabyourtickets/internal/seating"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memSeats is an in-memory SeatStore. SetStatusIfAvailable is atomic under
// the mutex, like the conditional UPDATE it stands in for.
type memSeats struct {
	mu    sync.Mutex
	seats map[string]models.Seat
	order []string

	failReleases bool
	// held lists seats referenced by CONFIRMED bookings.
	held func() map[string]bool
}

func newMemSeats() *memSeats {
	return &memSeats{seats: make(map[string]models.Seat)}
}

func (m *memSeats) CreateBulk(_ context.Context, seats []models.Seat) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := 0
	for _, s := range seats {
		if m.positionTaken(s) {
			continue
		}
		m.seats[s.ID] = s
		m.order = append(m.order, s.ID)
		created++
	}
	return created, nil
}

func (m *memSeats) positionTaken(s models.Seat) bool {
	for _, o := range m.seats {
		if o.CinemaID == s.CinemaID && o.ShowID == s.ShowID && o.HallName == s.HallName &&
			o.Row == s.Row && o.Column == s.Column {
			return true
		}
	}
	return false
}

func (m *memSeats) sorted(keep func(models.Seat) bool) []models.Seat {
	out := make([]models.Seat, 0)
	for _, id := range m.order {
		s, ok := m.seats[id]
		if ok && keep(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Column < out[j].Column
	})
	return out
}

func (m *memSeats) List(_ context.Context, f models.SeatFilter) ([]models.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(s models.Seat) bool {
		return (f.CinemaID == "" || s.CinemaID == f.CinemaID) && (f.ShowID == "" || s.ShowID == f.ShowID)
	}), nil
}

func (m *memSeats) ListByHall(_ context.Context, sc models.HallScope) ([]models.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(s models.Seat) bool {
		return s.CinemaID == sc.CinemaID && s.ShowID == sc.ShowID && s.HallName == sc.HallName
	}), nil
}

func (m *memSeats) ListByIDs(_ context.Context, ids []string) ([]models.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.sorted(func(s models.Seat) bool { return want[s.ID] }), nil
}

func (m *memSeats) GetByID(_ context.Context, id string) (*models.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSeats) Update(_ context.Context, id string, upd models.SeatUpdate) (*models.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[id]
	if !ok {
		return nil, nil
	}
	if upd.Row != nil {
		s.Row = *upd.Row
	}
	if upd.Column != nil {
		s.Column = *upd.Column
	}
	if upd.Row != nil && upd.Column != nil {
		s.SeatNumber = seating.SeatLabel(s.Row, s.Column)
	}
	if upd.Status != nil {
		s.Status = *upd.Status
	}
	m.seats[id] = s
	return &s, nil
}

func (m *memSeats) DeleteByHall(_ context.Context, sc models.HallScope) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.seats {
		if s.CinemaID == sc.CinemaID && s.ShowID == sc.ShowID && s.HallName == sc.HallName {
			delete(m.seats, id)
			n++
		}
	}
	return n, nil
}

func (m *memSeats) SetStatusIfAvailable(_ context.Context, id, showID, status string) (*models.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seats[id]
	if !ok || s.ShowID != showID || s.Status != models.SeatAvailable {
		return nil, nil
	}
	s.Status = status
	m.seats[id] = s
	return &s, nil
}

func (m *memSeats) ReleaseSeats(_ context.Context, ids []string) (int64, error) {
	held := map[string]bool{}
	if m.held != nil {
		held = m.held()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReleases {
		return 0, fmt.Errorf("release failed")
	}
	var n int64
	for _, id := range ids {
		if held[id] {
			continue
		}
		if s, ok := m.seats[id]; ok {
			s.Status = models.SeatAvailable
			m.seats[id] = s
			n++
		}
	}
	return n, nil
}

func (m *memSeats) status(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seats[id].Status
}

func (m *memSeats) countStatus(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.seats {
		if s.Status == status {
			n++
		}
	}
	return n
}

type memBookings struct {
	mu       sync.Mutex
	bookings map[string]models.Booking

	createErr error
	deleteErr error
	seats     *memSeats
}

func newMemBookings() *memBookings {
	return &memBookings{bookings: make(map[string]models.Booking)}
}

func (m *memBookings) Create(_ context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.bookings[b.ID] = *b
	return nil
}

func (m *memBookings) GetByID(_ context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memBookings) list(keep func(models.Booking) bool) []models.Booking {
	out := make([]models.Booking, 0)
	for _, b := range m.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memBookings) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(b models.Booking) bool { return b.UserID == userID }), nil
}

func (m *memBookings) ListAll(_ context.Context) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(models.Booking) bool { return true }), nil
}

func (m *memBookings) CancelIfConfirmed(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != models.BookingConfirmed {
		return false, nil
	}
	b.Status = models.BookingCancelled
	m.bookings[id] = b
	return true, nil
}

func (m *memBookings) DeleteAndRelease(ctx context.Context, id string, seatIDs []string) (bool, error) {
	m.mu.Lock()
	if m.deleteErr != nil {
		m.mu.Unlock()
		return false, m.deleteErr
	}
	_, ok := m.bookings[id]
	delete(m.bookings, id)
	m.mu.Unlock()

	if !ok || m.seats == nil {
		return ok, nil
	}
	if _, err := m.seats.ReleaseSeats(ctx, seatIDs); err != nil {
		return false, err
	}
	return true, nil
}

func (m *memBookings) heldSeats() map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held := make(map[string]bool)
	for _, b := range m.bookings {
		if b.Status != models.BookingConfirmed {
			continue
		}
		for _, id := range b.SeatIDs {
			held[id] = true
		}
	}
	return held
}

func (m *memBookings) setStatus(id, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bookings[id]
	b.Status = status
	m.bookings[id] = b
}

type memShows struct {
	shows map[string]models.Show
}

func (m *memShows) Create(_ context.Context, s *models.Show) error {
	m.shows[s.ID] = *s
	return nil
}

func (m *memShows) GetByID(_ context.Context, id string) (*models.Show, error) {
	s, ok := m.shows[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memShows) List(_ context.Context, cinemaID string) ([]models.Show, error) {
	out := make([]models.Show, 0)
	for _, s := range m.shows {
		if cinemaID == "" || s.CinemaID == cinemaID {
			out = append(out, s)
		}
	}
	return out, nil
}

type memCinemas struct {
	cinemas map[string]models.Cinema
}

func (m *memCinemas) Create(_ context.Context, c *models.Cinema) error {
	m.cinemas[c.ID] = *c
	return nil
}

func (m *memCinemas) GetByID(_ context.Context, id string) (*models.Cinema, error) {
	c, ok := m.cinemas[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memCinemas) List(_ context.Context) ([]models.Cinema, error) {
	out := make([]models.Cinema, 0, len(m.cinemas))
	for _, c := range m.cinemas {
		out = append(out, c)
	}
	return out, nil
}

type memMovies struct {
	movies map[string]models.Movie
}

func (m *memMovies) Create(_ context.Context, movie *models.Movie) error {
	movie.CreatedAt = time.Now()
	m.movies[movie.ID] = *movie
	return nil
}

func (m *memMovies) GetByID(_ context.Context, id string) (*models.Movie, error) {
	movie, ok := m.movies[id]
	if !ok {
		return nil, nil
	}
	return &movie, nil
}

func (m *memMovies) List(_ context.Context) ([]models.Movie, error) {
	out := make([]models.Movie, 0, len(m.movies))
	for _, movie := range m.movies {
		out = append(out, movie)
	}
	return out, nil
}

type memUsers struct {
	mu      sync.Mutex
	users   map[string]models.User
	upserts int
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]models.User)}
}

func (m *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = *u
	return nil
}

func (m *memUsers) UpsertAdmin(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	for id, existing := range m.users {
		if existing.Email == u.Email {
			existing.Role = models.RoleAdmin
			existing.PasswordHash = u.PasswordHash
			m.users[id] = existing
			u.ID = id
			u.Role = models.RoleAdmin
			return nil
		}
	}
	u.Role = models.RoleAdmin
	m.users[u.ID] = *u
	return nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockNotifier) BookingCancelled(ctx context.Context, event models.BookingCancelledEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) InvalidateShow(ctx context.Context, showID string) error {
	args := m.Called(ctx, showID)
	return args.Error(0)
}

// fixture is one cinema with one show and a generated hall.
type fixture struct {
	seats    *memSeats
	bookings *memBookings
	shows    *memShows
	cinemas  *memCinemas
	movies   *memMovies
	users    *memUsers

	cinemaID string
	showID   string
	hall     string
}

func newFixture() *fixture {
	f := &fixture{
		seats:    newMemSeats(),
		bookings: newMemBookings(),
		shows:    &memShows{shows: make(map[string]models.Show)},
		cinemas:  &memCinemas{cinemas: make(map[string]models.Cinema)},
		movies:   &memMovies{movies: make(map[string]models.Movie)},
		users:    newMemUsers(),
		cinemaID: uuid.New().String(),
		showID:   uuid.New().String(),
		hall:     "Hall 1",
	}
	f.bookings.seats = f.seats
	f.seats.held = f.bookings.heldSeats
	f.cinemas.cinemas[f.cinemaID] = models.Cinema{ID: f.cinemaID, Name: "QFX", Location: "Kathmandu"}
	f.shows.shows[f.showID] = models.Show{
		ID:             f.showID,
		CinemaID:       f.cinemaID,
		MovieTitle:     "Dune",
		ShowDate:       "2026-01-02",
		ShowTime:       "18:00",
		CinemaName:     "QFX",
		CinemaLocation: "Kathmandu",
	}
	return f
}

func (f *fixture) scope() models.HallScope {
	return models.HallScope{CinemaID: f.cinemaID, ShowID: f.showID, HallName: f.hall}
}

func (f *fixture) catalogService() *CatalogService {
	return NewCatalogService(f.cinemas, f.movies, f.shows)
}

func (f *fixture) seatService(cache SeatCache) *SeatService {
	return NewSeatService(f.seats, f.shows, cache, seating.DefaultScoring())
}

func (f *fixture) bookingService(n Notifier) *BookingService {
	return NewBookingService(BookingServiceConfig{
		Bookings:  f.bookings,
		Seats:     f.seats,
		Shows:     f.shows,
		Users:     f.users,
		Notifier:  n,
		SeatPrice: 200,
	})
}

// seatIDs returns the ids of the named seats, e.g. "A1".
func (f *fixture) seatIDs(labels ...string) []string {
	f.seats.mu.Lock()
	defer f.seats.mu.Unlock()
	ids := make([]string, 0, len(labels))
	for _, l := range labels {
		for _, s := range f.seats.seats {
			if s.SeatNumber == l && s.ShowID == f.showID {
				ids = append(ids, s.ID)
				break
			}
		}
	}
	return ids
}
