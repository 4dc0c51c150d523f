// Package notify publishes push-notification events to RabbitMQ. Delivery to
// devices is a downstream consumer's job; publishing is fire-and-forget and
// must never fail the originating request.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const queueName = "notifications.push"

// Notification types consumed by the push worker.
const (
	TypeNewMatch          = "new_match"
	TypeSuperLikeReceived = "super_like_received"
	TypeLimitReached      = "limit_reached"
	TypeFeeDue            = "fee_due"
)

// Event is the message body placed on the queue.
type Event struct {
	RecipientID uuid.UUID      `json:"recipient_id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Data        map[string]any `json:"data,omitempty"`
	SentAt      time.Time      `json:"sent_at"`
}

// Notifier dispatches notification events.
type Notifier interface {
	Notify(ctx context.Context, recipientID uuid.UUID, typ, title, body string, data map[string]any)
}

// AMQPNotifier publishes events to a durable RabbitMQ queue as persistent
// JSON messages.
type AMQPNotifier struct {
	url  string
	mu   sync.Mutex
	conn *amqp.Connection
}

func NewAMQPNotifier(url string) *AMQPNotifier {
	return &AMQPNotifier{url: url}
}

func (n *AMQPNotifier) channel() (*amqp.Channel, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil || n.conn.IsClosed() {
		conn, err := amqp.Dial(n.url)
		if err != nil {
			return nil, err
		}
		n.conn = conn
	}

	ch, err := n.conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return ch, nil
}

// Notify publishes the event. Errors are logged and swallowed so callers can
// treat dispatch as fire-and-forget.
func (n *AMQPNotifier) Notify(ctx context.Context, recipientID uuid.UUID, typ, title, body string, data map[string]any) {
	event := Event{
		RecipientID: recipientID,
		Type:        typ,
		Title:       title,
		Body:        body,
		Data:        data,
		SentAt:      time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("notify: marshal event failed", "error", err, "type", typ)
		return
	}

	ch, err := n.channel()
	if err != nil {
		slog.Error("notify: rabbitmq unavailable", "error", err, "type", typ)
		return
	}
	defer func() { _ = ch.Close() }()

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         payload,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		slog.Error("notify: publish failed", "error", err, "type", typ)
	}
}

// Close shuts down the underlying connection.
func (n *AMQPNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn != nil && !n.conn.IsClosed() {
		_ = n.conn.Close()
	}
}

// Nop is a Notifier that drops every event. Used in tests and when the
// broker is not configured.
type Nop struct{}

func (Nop) Notify(context.Context, uuid.UUID, string, string, string, map[string]any) {}
