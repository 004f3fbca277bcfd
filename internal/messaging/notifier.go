package messaging

import (
	"context"
	"errors"

	"grabyourtickets/internal/models"
)

var ErrMessagingDisabled = errors.New("messaging is disabled")

// Publisher is the part of NATSClient the notifier needs.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// BookingNotifier publishes booking lifecycle events for the consumers
// service, which sends the emails.
type BookingNotifier struct {
	pub Publisher
}

// NewBookingNotifier accepts a nil publisher; every notification then fails
// with ErrMessagingDisabled.
func NewBookingNotifier(pub Publisher) *BookingNotifier {
	return &BookingNotifier{pub: pub}
}

func (n *BookingNotifier) BookingConfirmed(_ context.Context, event models.BookingConfirmedEvent) error {
	if n.pub == nil {
		return ErrMessagingDisabled
	}
	return n.pub.Publish(models.EventBookingConfirmed, event)
}

func (n *BookingNotifier) BookingCancelled(_ context.Context, event models.BookingCancelledEvent) error {
	if n.pub == nil {
		return ErrMessagingDisabled
	}
	return n.pub.Publish(models.EventBookingCancelled, event)
}
