package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// publishChannel is the part of *amqp091.Channel the publisher needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// EventPublisher publishes review events to a topic exchange with routing
// key "expenditure.<status>".
type EventPublisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  publishChannel
	exchange string
}

// DialEventPublisher connects to the broker and declares the exchange.
func DialEventPublisher(url, exchange string) (*EventPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// ExpenditureReviewed implements Notifier.
func (p *EventPublisher) ExpenditureReviewed(ctx context.Context, ev ReviewEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		"expenditure."+string(ev.Status),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    ev.ReviewedAt,
			MessageId:    fmt.Sprintf("expenditure-%d-%s", ev.ExpenditureID, ev.Status),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close shuts the channel and connection down.
func (p *EventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
