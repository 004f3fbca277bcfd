package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

const (
	defaultAckWait     = 30 * time.Second
	defaultMaxInflight = 1
)

type Config struct {
	Enabled   bool
	URL       string
	ClusterID string
	ClientID  string
	// AckWait is how long the server waits for an ack before redelivering.
	AckWait     time.Duration
	MaxInflight int
}

// NATSClient publishes and consumes JSON events on NATS Streaming.
type NATSClient struct {
	conn stan.Conn
	cfg  Config
}

func NewNATSClient(cfg Config) (*NATSClient, error) {
	// Replicas share a cluster, so every connection gets its own client ID.
	clientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.New().String()[:8])

	conn, err := stan.Connect(cfg.ClusterID, clientID,
		stan.NatsURL(cfg.URL),
		stan.Pings(10, 5),
		stan.SetConnectionLostHandler(func(_ stan.Conn, reason error) {
			slog.Error("NATS Streaming connection lost", "client", clientID, "error", reason)
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	slog.Info("Connected to NATS Streaming",
		"url", cfg.URL, "cluster", cfg.ClusterID, "client", clientID)

	return &NATSClient{conn: conn, cfg: cfg}, nil
}

// Publish sends data as JSON and waits for the server ack.
func (nc *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", subject, err)
	}

	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	slog.Debug("Published event", "subject", subject, "bytes", len(payload))
	return nil
}

// SubscribeQueue joins a durable queue group with manual acks. Handlers must
// ack every message they are done with.
func (nc *NATSClient) SubscribeQueue(subject, queue string, handler stan.MsgHandler) (stan.Subscription, error) {
	sub, err := nc.conn.QueueSubscribe(subject, queue, handler, subscriptionOptions(nc.cfg, subject, queue)...)
	if err != nil {
		return nil, fmt.Errorf("failed to queue subscribe to subject %s: %w", subject, err)
	}

	slog.Info("Subscribed to subject", "subject", subject, "queue", queue)
	return sub, nil
}

func durableName(subject, queue string) string {
	return subject + "-" + queue + "-durable"
}

func subscriptionOptions(cfg Config, subject, queue string) []stan.SubscriptionOption {
	ackWait := cfg.AckWait
	if ackWait <= 0 {
		ackWait = defaultAckWait
	}
	inflight := cfg.MaxInflight
	if inflight <= 0 {
		inflight = defaultMaxInflight
	}

	return []stan.SubscriptionOption{
		stan.DurableName(durableName(subject, queue)),
		stan.SetManualAckMode(),
		stan.AckWait(ackWait),
		stan.MaxInflight(inflight),
	}
}

func (nc *NATSClient) Close() error {
	if nc.conn != nil {
		return nc.conn.Close()
	}
	return nil
}
