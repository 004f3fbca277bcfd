package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"grabyourtickets/internal/models"
	"grabyourtickets/internal/notification"
	"grabyourtickets/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, msg notification.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockIndex struct{ mock.Mock }

func (m *mockIndex) IndexBooking(ctx context.Context, doc search.BookingDocument) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *mockIndex) MarkCancelled(ctx context.Context, event models.BookingCancelledEvent) error {
	return m.Called(ctx, event).Error(0)
}

func confirmedPayload(t *testing.T, email string) []byte {
	t.Helper()
	data, err := json.Marshal(models.BookingConfirmedEvent{
		BookingID:  "b-1",
		UserID:     "u-1",
		UserEmail:  email,
		MovieTitle: "Dune",
		SeatLabels: []string{"A1", "A2"},
	})
	require.NoError(t, err)
	return data
}

func TestBookingConfirmedIndexesAndMails(t *testing.T) {
	sender, index := new(mockSender), new(mockIndex)
	h := NewHandlers(sender, index)

	index.On("IndexBooking", mock.Anything, mock.MatchedBy(func(d search.BookingDocument) bool {
		return d.BookingID == "b-1" && d.Status == models.BookingConfirmed
	})).Return(nil)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(m notification.Message) bool {
		return m.To == "ann@example.com" && m.Subject == "Your tickets for Dune"
	})).Return(nil)

	require.NoError(t, h.bookingConfirmed(context.Background(), confirmedPayload(t, "ann@example.com")))
	index.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestBookingConfirmedSendFailureIsRetried(t *testing.T) {
	sender := new(mockSender)
	h := NewHandlers(sender, nil)
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("relay down"))

	err := h.bookingConfirmed(context.Background(), confirmedPayload(t, "ann@example.com"))
	require.Error(t, err)

	var bad *malformedError
	assert.False(t, errors.As(err, &bad))
}

func TestBookingConfirmedIndexFailureSkipsMail(t *testing.T) {
	sender, index := new(mockSender), new(mockIndex)
	h := NewHandlers(sender, index)
	index.On("IndexBooking", mock.Anything, mock.Anything).Return(errors.New("cluster red"))

	assert.Error(t, h.bookingConfirmed(context.Background(), confirmedPayload(t, "ann@example.com")))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestBookingConfirmedMailDisabled(t *testing.T) {
	sender := new(mockSender)
	h := NewHandlers(sender, nil)
	sender.On("Send", mock.Anything, mock.Anything).Return(notification.ErrMailDisabled)

	assert.NoError(t, h.bookingConfirmed(context.Background(), confirmedPayload(t, "ann@example.com")))
}

func TestBookingConfirmedMalformed(t *testing.T) {
	h := NewHandlers(new(mockSender), nil)
	var bad *malformedError

	err := h.bookingConfirmed(context.Background(), []byte(`{not json`))
	assert.True(t, errors.As(err, &bad))

	err = h.bookingConfirmed(context.Background(), confirmedPayload(t, ""))
	assert.True(t, errors.As(err, &bad))
}

func TestBookingCancelled(t *testing.T) {
	index := new(mockIndex)
	h := NewHandlers(new(mockSender), index)

	event := models.BookingCancelledEvent{BookingID: "b-1", SeatIDs: []string{"s-1"}, Reason: "user"}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	index.On("MarkCancelled", mock.Anything, mock.MatchedBy(func(e models.BookingCancelledEvent) bool {
		return e.BookingID == "b-1" && e.Reason == "user"
	})).Return(nil).Once()
	index.On("MarkCancelled", mock.Anything, mock.Anything).Return(errors.New("timeout")).Once()

	assert.NoError(t, h.bookingCancelled(context.Background(), data))
	assert.Error(t, h.bookingCancelled(context.Background(), data))

	assert.NoError(t, NewHandlers(new(mockSender), nil).bookingCancelled(context.Background(), data))
}
