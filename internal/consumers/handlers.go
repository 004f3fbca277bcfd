package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"grabyourtickets/internal/models"
	"grabyourtickets/internal/notification"
	"grabyourtickets/internal/search"

	"github.com/nats-io/stan.go"
)

const handlerTimeout = 20 * time.Second

// Indexer is the part of the booking index the consumers write to.
type Indexer interface {
	IndexBooking(ctx context.Context, doc search.BookingDocument) error
	MarkCancelled(ctx context.Context, event models.BookingCancelledEvent) error
}

// Handlers process booking events. A message is acknowledged once it has
// been handled or can never be handled; anything else is redelivered.
type Handlers struct {
	mail  notification.Sender
	index Indexer
}

// NewHandlers accepts a nil index when search is disabled.
func NewHandlers(mail notification.Sender, index Indexer) *Handlers {
	return &Handlers{mail: mail, index: index}
}

func (h *Handlers) HandleBookingConfirmed(m *stan.Msg) {
	h.dispatch(m, models.EventBookingConfirmed, h.bookingConfirmed)
}

func (h *Handlers) HandleBookingCancelled(m *stan.Msg) {
	h.dispatch(m, models.EventBookingCancelled, h.bookingCancelled)
}

func (h *Handlers) dispatch(m *stan.Msg, subject string, handle func(ctx context.Context, data []byte) error) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	if err := handle(ctx, m.Data); err != nil {
		var bad *malformedError
		if !errors.As(err, &bad) {
			slog.Error("Failed to process event, awaiting redelivery",
				"subject", subject, "sequence", m.Sequence, "error", err)
			return
		}
		slog.Error("Dropping malformed event", "subject", subject, "sequence", m.Sequence, "error", err)
	}

	if err := m.Ack(); err != nil {
		slog.Error("Failed to ack event", "subject", subject, "sequence", m.Sequence, "error", err)
	}
}

type malformedError struct{ err error }

func (e *malformedError) Error() string { return "malformed event: " + e.err.Error() }

func (e *malformedError) Unwrap() error { return e.err }

// bookingConfirmed indexes the booking and mails the ticket. Indexing goes
// first since it is idempotent and a redelivery would mail twice.
func (h *Handlers) bookingConfirmed(ctx context.Context, data []byte) error {
	var event models.BookingConfirmedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return &malformedError{err}
	}
	log := slog.With("booking_id", event.BookingID)

	if h.index != nil {
		if err := h.index.IndexBooking(ctx, search.ConfirmedDocument(event)); err != nil {
			return fmt.Errorf("index booking: %w", err)
		}
	}

	msg, err := notification.RenderTicket(event)
	if err != nil {
		return &malformedError{err}
	}

	err = h.mail.Send(ctx, msg)
	if errors.Is(err, notification.ErrMailDisabled) {
		log.Info("Mail delivery disabled, ticket email skipped")
		return nil
	}
	if err != nil {
		return fmt.Errorf("send ticket email: %w", err)
	}
	return nil
}

func (h *Handlers) bookingCancelled(ctx context.Context, data []byte) error {
	var event models.BookingCancelledEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return &malformedError{err}
	}

	if h.index == nil {
		slog.Debug("Search disabled, cancellation not indexed", "booking_id", event.BookingID)
		return nil
	}
	if err := h.index.MarkCancelled(ctx, event); err != nil {
		return fmt.Errorf("mark booking cancelled: %w", err)
	}
	slog.Info("Booking marked cancelled in index", "booking_id", event.BookingID)
	return nil
}
