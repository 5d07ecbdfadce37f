package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kariqs/tableside/logger"
	"github.com/rabbitmq/amqp091-go"
)

const OrdersExchange = "orders_topic"

// Connection wraps a RabbitMQ connection and reconnects on demand.
type Connection struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	url     string
	retries int
	log     *logger.Logger
}

func Dial(url string, log *logger.Logger) (*Connection, error) {
	c := &Connection{url: url, retries: 5, log: log}
	if err := c.connect(); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}
	return c, nil
}

func (c *Connection) connect() error {
	var err error
	for i := 0; i < c.retries; i++ {
		c.conn, err = amqp091.Dial(c.url)
		if err == nil {
			c.channel, err = c.conn.Channel()
			if err == nil {
				if err = c.setupTopology(); err == nil {
					return nil
				}
				c.close()
			} else {
				c.conn.Close()
			}
		}

		if i < c.retries-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			c.log.Error(context.Background(), "rabbitmq_connection_failed",
				fmt.Sprintf("failed to connect to RabbitMQ, retrying in %v", wait), err,
				slog.Int("attempt", i+1))
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", c.retries, err)
}

func (c *Connection) setupTopology() error {
	err := c.channel.ExchangeDeclare(
		OrdersExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", OrdersExchange, err)
	}
	return nil
}

func (c *Connection) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if c.IsClosed() {
		if err := c.Reconnect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}
	return c.channel.PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

func (c *Connection) Close() error {
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Connection) IsClosed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

func (c *Connection) Reconnect() error {
	c.close()
	return c.connect()
}
