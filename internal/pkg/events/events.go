package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"nepalstay/internal/pkg/logger"
)

const (
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	BookingCancelled     = "booking.cancelled"
	PaymentCaptured      = "payment.captured"
	PaymentFailed        = "payment.failed"
	ReviewCreated        = "review.created"
	PropertyApproved     = "property.approved"
	OwnerVerified        = "owner.verified"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	Close() error
}

type BookingEvent struct {
	BookingID  int64     `json:"booking_id"`
	PropertyID int64     `json:"property_id"`
	UserID     int64     `json:"user_id"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	At         time.Time `json:"at"`
}

type PaymentEvent struct {
	BookingID  int64     `json:"booking_id"`
	Gateway    string    `json:"gateway"`
	ExternalID string    `json:"external_id,omitempty"`
	Amount     float64   `json:"amount"`
	Reason     string    `json:"reason,omitempty"`
	At         time.Time `json:"at"`
}

type ReviewEvent struct {
	ReviewID   int64     `json:"review_id"`
	PropertyID int64     `json:"property_id"`
	Rating     int       `json:"rating"`
	At         time.Time `json:"at"`
}

type NATSPublisher struct {
	conn *nats.Conn
	log  logrus.FieldLogger
}

func NewNATSPublisher(url string, log logrus.FieldLogger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("nepalstay-api"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, log: log}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	logger.FromContext(ctx, n.log).WithField("subject", subject).Debug("publishing event")
	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	return n.conn.Drain()
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

type Recorded struct {
	Subject string
	Data    any
}

func (r *Recorder) Publish(_ context.Context, subject string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{Subject: subject, Data: data})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Subject)
	}
	return out
}

// PublishBestEffort publishes and only logs failures.
func PublishBestEffort(ctx context.Context, p Publisher, log logrus.FieldLogger, subject string, data any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, subject, data); err != nil {
		logger.FromContext(ctx, log).WithError(err).WithField("subject", subject).Warn("event publish failed")
	}
}
