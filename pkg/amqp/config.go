package amqp

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Config holds the configuration for a queue consumer or publisher.
type Config struct {
	URL   string
	Queue string

	// Durable declares the queue as surviving broker restarts.
	Durable bool

	// Prefetch is the per-channel QoS prefetch count. Zero leaves it unlimited.
	Prefetch int

	// ConsumerTag identifies the consumer to the broker. Generated when empty.
	ConsumerTag string

	// ReconnectInterval is the wait between reconnection attempts. Default is 3s.
	ReconnectInterval time.Duration

	// Heartbeat interval negotiated with the broker. Default is 10s.
	Heartbeat time.Duration
}

func setDefaultConfig(cfg *Config) {
	if cfg.ReconnectInterval == 0 {
		cfg.ReconnectInterval = 3 * time.Second
	}
	if cfg.Heartbeat == 0 {
		cfg.Heartbeat = 10 * time.Second
	}
	if cfg.ConsumerTag == "" {
		cfg.ConsumerTag = "ground-" + uuid.NewString()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("amqp url is required")
	}
	if _, err := url.Parse(c.URL); err != nil {
		return fmt.Errorf("invalid amqp url: %w", err)
	}
	if c.Queue == "" {
		return errors.New("amqp queue is required")
	}
	if c.Prefetch < 0 {
		return errors.New("amqp prefetch must not be negative")
	}
	return nil
}
