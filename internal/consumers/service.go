package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"grabyourtickets/internal/config"
	"grabyourtickets/internal/messaging"
	"grabyourtickets/internal/models"
	"grabyourtickets/internal/notification"
	"grabyourtickets/internal/search"

	"github.com/nats-io/stan.go"
)

const queueGroup = "consumers"

type ConsumerService struct {
	nats     *messaging.NATSClient
	handlers *Handlers
	subs     []stan.Subscription
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	if !cfg.NATS.Enabled {
		return nil, fmt.Errorf("consumers require NATS, set NATS_ENABLED=true")
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	var index Indexer
	if cfg.Elasticsearch.Enabled {
		bookingIndex, err := search.NewBookingIndex(cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Booking index disabled", "error", err)
		} else {
			index = bookingIndex
		}
	}

	if cfg.Mail.Host == "" {
		slog.Warn("SMTP_HOST is not set, ticket emails will be skipped")
	}

	return &ConsumerService{
		nats:     natsClient,
		handlers: NewHandlers(notification.NewSMTPSender(cfg.Mail), index),
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	subjects := []struct {
		subject string
		handler stan.MsgHandler
	}{
		{models.EventBookingConfirmed, cs.handlers.HandleBookingConfirmed},
		{models.EventBookingCancelled, cs.handlers.HandleBookingCancelled},
	}

	for _, s := range subjects {
		sub, err := cs.nats.SubscribeQueue(s.subject, queueGroup, s.handler)
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", s.subject, err)
		}
		cs.subs = append(cs.subs, sub)
	}

	slog.Info("All consumers started successfully", "subjects", len(cs.subs))
	return nil
}

// Shutdown closes the subscriptions without unsubscribing, so durable
// progress survives a restart.
func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	for _, sub := range cs.subs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
			return err
		}
	}

	return nil
}
