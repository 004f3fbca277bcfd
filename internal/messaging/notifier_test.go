package messaging

import (
	"context"
	"errors"
	"testing"

	"grabyourtickets/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func TestBookingNotifierPublishesSubjects(t *testing.T) {
	pub := new(mockPublisher)
	confirmed := models.BookingConfirmedEvent{BookingID: "b-1"}
	cancelled := models.BookingCancelledEvent{BookingID: "b-1"}
	pub.On("Publish", models.EventBookingConfirmed, confirmed).Return(nil)
	pub.On("Publish", models.EventBookingCancelled, cancelled).Return(errors.New("nats down"))

	n := NewBookingNotifier(pub)
	assert.NoError(t, n.BookingConfirmed(context.Background(), confirmed))
	assert.EqualError(t, n.BookingCancelled(context.Background(), cancelled), "nats down")
	pub.AssertExpectations(t)
}

func TestBookingNotifierWithoutPublisher(t *testing.T) {
	n := NewBookingNotifier(nil)
	assert.ErrorIs(t, n.BookingConfirmed(context.Background(), models.BookingConfirmedEvent{}), ErrMessagingDisabled)
	assert.ErrorIs(t, n.BookingCancelled(context.Background(), models.BookingCancelledEvent{}), ErrMessagingDisabled)
}

func TestSubscriptionOptionsDefaults(t *testing.T) {
	assert.Equal(t, "booking.confirmed-consumers-durable", durableName(models.EventBookingConfirmed, "consumers"))
	assert.Len(t, subscriptionOptions(Config{}, "s", "q"), 4)
}
