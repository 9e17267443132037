package amqp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/Rus1K7/Airport/pkg/log"
)

type consumer struct {
	cfg       *Config
	connected atomic.Bool
}

// NewConsumer creates a Consumer for cfg.Queue. No connection is made until Consume.
func NewConsumer(cfg *Config) (Consumer, error) {
	if cfg == nil {
		return nil, errors.New("amqp config is required")
	}

	setDefaultConfig(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid amqp config: %w", err)
	}

	return &consumer{cfg: cfg}, nil
}

func (c *consumer) Connected() bool {
	return c.connected.Load()
}

func (c *consumer) Consume(ctx context.Context, handler Handler, drain func()) error {
	log.Info("Starting AMQP consumer", "queue", c.cfg.Queue, "tag", c.cfg.ConsumerTag)

	for {
		err := c.session(ctx, handler, drain)
		c.connected.Store(false)
		if ctx.Err() != nil {
			return nil
		}

		log.Error(err, "AMQP session ended, reconnecting", "queue", c.cfg.Queue, "after", c.cfg.ReconnectInterval)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.cfg.ReconnectInterval):
		}
	}
}

// session runs one connection lifetime. It returns when the connection
// drops or ctx is cancelled, after drain has returned.
func (c *consumer) session(ctx context.Context, handler Handler, drain func()) error {
	conn, err := dial(c.cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.cfg.Queue, c.cfg.Durable, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %q: %w", c.cfg.Queue, err)
	}

	if c.cfg.Prefetch > 0 {
		if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}
	}

	msgs, err := ch.ConsumeWithContext(ctx, c.cfg.Queue, c.cfg.ConsumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %q: %w", c.cfg.Queue, err)
	}

	closed := conn.NotifyClose(make(chan *amqp091.Error, 1))
	c.connected.Store(true)
	log.Info("AMQP consumer connected", "queue", c.cfg.Queue, "prefetch", c.cfg.Prefetch)

	err = receive(ctx, msgs, closed, handler)
	if drain != nil {
		drain()
	}
	return err
}

func receive(ctx context.Context, msgs <-chan amqp091.Delivery, closed <-chan *amqp091.Error, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("connection closed")
			}
			return amqpErr
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			handler(ctx, &delivery{d: d})
		}
	}
}

func dial(cfg *Config) (*amqp091.Connection, error) {
	conn, err := amqp091.DialConfig(cfg.URL, amqp091.Config{
		Heartbeat:  cfg.Heartbeat,
		Properties: amqp091.Table{"connection_name": cfg.ConsumerTag},
	})
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	return conn, nil
}

type delivery struct {
	d amqp091.Delivery
}

func (d *delivery) Body() []byte            { return d.d.Body }
func (d *delivery) Redelivered() bool       { return d.d.Redelivered }
func (d *delivery) Ack() error              { return d.d.Ack(false) }
func (d *delivery) Nack(requeue bool) error { return d.d.Nack(false, requeue) }

type publisher struct {
	cfg  *Config
	conn *amqp091.Connection
	ch   *amqp091.Channel
}

// NewPublisher connects to the broker and opens a channel for publishing.
func NewPublisher(cfg *Config) (Publisher, error) {
	if cfg == nil {
		return nil, errors.New("amqp config is required")
	}

	setDefaultConfig(cfg)

	conn, err := dial(cfg)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	return &publisher{cfg: cfg, conn: conn, ch: ch}, nil
}

func (p *publisher) Publish(ctx context.Context, queue string, body []byte) error {
	if _, err := p.ch.QueueDeclare(queue, p.cfg.Durable, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %q: %w", queue, err)
	}

	return p.ch.PublishWithContext(ctx, "", queue, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (p *publisher) Close() error {
	_ = p.ch.Close()
	return p.conn.Close()
}
