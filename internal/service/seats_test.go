package service

import (
	"context"
	"errors"
	"testing"

	"grabyourtickets/internal/models"
	"grabyourtickets/internal/seating"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "grabyourtickets/internal/errors"
)

func gridRequest(f *fixture, rows, columns int) *models.GenerateSeatsRequest {
	return &models.GenerateSeatsRequest{
		CinemaID: f.cinemaID,
		ShowID:   f.showID,
		HallName: f.hall,
		Rows:     models.FlexibleInt(rows),
		Columns:  models.FlexibleInt(columns),
	}
}

func TestGenerateLayoutGrid(t *testing.T) {
	f := newFixture()
	cache := new(mockCache)
	cache.On("InvalidateShow", mock.Anything, f.showID).Return(nil)

	resp, err := f.seatService(cache).GenerateLayout(context.Background(), gridRequest(f, 3, 4))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 12, resp.TotalSeatsCreated)
	assert.Equal(t, 12, resp.TotalRequested)
	cache.AssertExpectations(t)

	seats, err := f.seats.ListByHall(context.Background(), f.scope())
	require.NoError(t, err)
	require.Len(t, seats, 12)
	assert.Equal(t, "A1", seats[0].SeatNumber)
	assert.Equal(t, "C4", seats[11].SeatNumber)
	for _, s := range seats {
		assert.Equal(t, models.SeatAvailable, s.Status)
		assert.NotEmpty(t, s.ID)
	}
}

func TestGenerateLayoutExplicitSeatsWithDuplicates(t *testing.T) {
	f := newFixture()
	req := &models.GenerateSeatsRequest{
		CinemaID: f.cinemaID,
		ShowID:   f.showID,
		HallName: "  " + f.hall + " ",
		Seats: []models.SeatPositionInput{
			{Row: "10", Column: 1},
			{Row: "9", Column: 1},
			{Row: "9", Column: 1},
		},
	}

	resp, err := f.seatService(nil).GenerateLayout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalSeatsCreated)
	assert.Equal(t, 3, resp.TotalRequested)

	assert.Len(t, f.seatIDs("A1", "B1"), 2)
}

func TestGenerateLayoutValidation(t *testing.T) {
	f := newFixture()
	svc := f.seatService(nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		mod   func(r *models.GenerateSeatsRequest)
		field string
	}{
		{"bad cinema", func(r *models.GenerateSeatsRequest) { r.CinemaID = "nope" }, "cinemaId"},
		{"missing show", func(r *models.GenerateSeatsRequest) { r.ShowID = "" }, "showId"},
		{"blank hall", func(r *models.GenerateSeatsRequest) { r.HallName = " " }, "hallName"},
		{"no seats", func(r *models.GenerateSeatsRequest) { r.Rows = 0 }, "seats"},
		{"bad column", func(r *models.GenerateSeatsRequest) {
			r.Seats = []models.SeatPositionInput{{Row: "1", Column: 0}}
		}, "column"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := gridRequest(f, 2, 2)
			tt.mod(req)
			_, err := svc.GenerateLayout(ctx, req)

			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestGenerateLayoutChecksShow(t *testing.T) {
	f := newFixture()
	svc := f.seatService(nil)

	req := gridRequest(f, 1, 1)
	req.ShowID = uuid.New().String()
	_, err := svc.GenerateLayout(context.Background(), req)
	var nf *apperrors.NotFoundError
	assert.True(t, errors.As(err, &nf))

	req = gridRequest(f, 1, 1)
	req.CinemaID = uuid.New().String()
	_, err = svc.GenerateLayout(context.Background(), req)
	var verr *apperrors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestRecommendScenario(t *testing.T) {
	f := newFixture()
	svc := f.seatService(nil)
	ctx := context.Background()
	_, err := svc.GenerateLayout(ctx, gridRequest(f, 3, 4))
	require.NoError(t, err)

	groups, err := svc.Recommend(ctx, f.scope(), 2, "row")
	require.NoError(t, err)
	require.Len(t, groups, 3)
	for i, row := range []string{"A", "B", "C"} {
		assert.Equal(t, row, groups[i].Row)
		assert.Equal(t, 30, groups[i].Score)
		require.Len(t, groups[i].Seats, 2)
		assert.Equal(t, row+"2", groups[i].Seats[0].Label)
		assert.Equal(t, row+"3", groups[i].Seats[1].Label)
	}

	best, err := svc.Recommend(ctx, f.scope(), 2, "BEST")
	require.NoError(t, err)
	assert.Len(t, best, seating.BestModeLimit)
}

func TestRecommendNotFoundErrors(t *testing.T) {
	f := newFixture()
	svc := f.seatService(nil)
	ctx := context.Background()

	_, err := svc.Recommend(ctx, f.scope(), 2, "row")
	var nf *apperrors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "no available seats", err.Error())

	_, err = svc.GenerateLayout(ctx, gridRequest(f, 2, 2))
	require.NoError(t, err)

	_, err = svc.Recommend(ctx, f.scope(), 3, "row")
	assert.EqualError(t, err, "no consecutive seats available")
	_, err = svc.Recommend(ctx, f.scope(), 3, "best")
	assert.EqualError(t, err, "no consecutive seats found")
}

func TestSeatGetUpdateDelete(t *testing.T) {
	f := newFixture()
	cache := new(mockCache)
	cache.On("InvalidateShow", mock.Anything, f.showID).Return(nil)
	svc := f.seatService(cache)
	ctx := context.Background()

	_, err := svc.GenerateLayout(ctx, gridRequest(f, 2, 2))
	require.NoError(t, err)
	id := f.seatIDs("A1")[0]

	seat, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A1", seat.SeatNumber)

	_, err = svc.Get(ctx, uuid.New().String())
	var nf *apperrors.NotFoundError
	assert.True(t, errors.As(err, &nf))

	row := models.FlexibleString("c")
	col := models.FlexibleInt(7)
	status := "booked"
	seat, err = svc.Update(ctx, &models.UpdateSeatRequest{SeatID: id, Row: &row, Column: &col, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "C", seat.Row)
	assert.Equal(t, 7, seat.Column)
	assert.Equal(t, "C7", seat.SeatNumber)
	assert.Equal(t, models.SeatBooked, seat.Status)

	for _, raw := range []string{"ROW", "A1", "1"} {
		badRow := models.FlexibleString(raw)
		_, err = svc.Update(ctx, &models.UpdateSeatRequest{SeatID: id, Row: &badRow})
		var rowErr *apperrors.ValidationError
		require.True(t, errors.As(err, &rowErr), raw)
		assert.Equal(t, "row", rowErr.Field)
	}
	unchanged, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "C", unchanged.Row)

	bad := "HELD"
	_, err = svc.Update(ctx, &models.UpdateSeatRequest{SeatID: id, Status: &bad})
	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "status", verr.Field)

	deleted, err := svc.DeleteByHall(ctx, f.scope())
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	cache.AssertNumberOfCalls(t, "InvalidateShow", 3)
}

func TestListSeatsFilters(t *testing.T) {
	f := newFixture()
	svc := f.seatService(nil)
	ctx := context.Background()
	_, err := svc.GenerateLayout(ctx, gridRequest(f, 1, 3))
	require.NoError(t, err)

	all, err := svc.List(ctx, models.SeatFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := svc.List(ctx, models.SeatFilter{ShowID: uuid.New().String()})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.List(ctx, models.SeatFilter{CinemaID: "x"})
	var verr *apperrors.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = svc.ListByHall(ctx, models.HallScope{CinemaID: f.cinemaID, ShowID: f.showID})
	assert.True(t, errors.As(err, &verr))
}
