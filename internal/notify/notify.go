// Package notify publishes alerts when a flagged identity is recognized.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Alert describes one recognition of a flagged identity.
type Alert struct {
	EventID    string    `json:"event_id"`
	IdentityID int64     `json:"identity_id"`
	Code       string    `json:"code"`
	GivenName  string    `json:"given_name"`
	FamilyName string    `json:"family_name"`
	Similarity float64   `json:"similarity"`
	At         time.Time `json:"at"`
}

// Serialize encodes the alert as JSON.
func (a Alert) Serialize() ([]byte, error) {
	return json.Marshal(a)
}

// Nop discards every alert.
type Nop struct{}

// Publish implements the publisher contract and does nothing.
func (Nop) Publish(ctx context.Context, alert Alert) error { return nil }

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Close() error
}

// AMQPPublisher publishes alerts as persistent JSON messages to a topic exchange.
type AMQPPublisher struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	channel    Channel
	Exchange   string
	RoutingKey string
}

// DialAMQP connects to the broker and declares the alert exchange.
func DialAMQP(url, exchange, routingKey string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to AMQP broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening AMQP channel: %w", err)
	}

	p, err := NewAMQPPublisher(ch, exchange, routingKey)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewAMQPPublisher wraps an open channel and declares a durable topic exchange.
func NewAMQPPublisher(ch Channel, exchange, routingKey string) (*AMQPPublisher, error) {
	if exchange != "" {
		if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
		}
	}
	return &AMQPPublisher{
		channel:    ch,
		Exchange:   exchange,
		RoutingKey: routingKey,
	}, nil
}

// Publish sends the alert. Channels are not safe for concurrent publishing,
// so calls are serialized.
func (p *AMQPPublisher) Publish(ctx context.Context, alert Alert) error {
	body, err := alert.Serialize()
	if err != nil {
		return fmt.Errorf("encoding alert: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.Exchange,
		p.RoutingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    alert.EventID,
			Body:         body,
			Timestamp:    alert.At,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing alert: %w", err)
	}
	return nil
}

// Close closes the channel and, when owned, the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		return fmt.Errorf("closing AMQP channel: %w", err)
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
