package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kariqs/tableside/logger"
	"github.com/rabbitmq/amqp091-go"
)

// Channel is the publishing side of an AMQP channel.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Publisher writes persistent JSON messages to the orders exchange.
type Publisher struct {
	ch      Channel
	timeout time.Duration
	log     *logger.Logger
}

func NewPublisher(ch Channel, log *logger.Logger) *Publisher {
	return &Publisher{ch: ch, timeout: 10 * time.Second, log: log}
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.ch.PublishWithContext(ctx, OrdersExchange, routingKey, false, false, publishing); err != nil {
		p.log.Error(ctx, "message_publish_failed", "failed to publish message", err,
			slog.String("exchange", OrdersExchange),
			slog.String("routing_key", routingKey))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.log.Debug(ctx, "message_published", "published message",
		slog.String("exchange", OrdersExchange),
		slog.String("routing_key", routingKey),
		slog.Int("message_size", len(body)))
	return nil
}
