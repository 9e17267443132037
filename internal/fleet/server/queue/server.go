// Package queue feeds task messages from the broker to the intake and
// settles them with the intake's outcome.
package queue

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"

	"github.com/Rus1K7/Airport/internal/fleet/core/intake"
	"github.com/Rus1K7/Airport/internal/fleet/core/movement"
	"github.com/Rus1K7/Airport/pkg/amqp"
	"github.com/Rus1K7/Airport/pkg/log"
)

// Handler decides the outcome of one message.
type Handler interface {
	Handle(ctx context.Context, body []byte) intake.Outcome
}

// Config tunes a Server.
type Config struct {
	// Workers bounds the tasks handled at once. It should match the
	// consumer prefetch so no delivery waits for a worker.
	Workers int

	// RequeueDelay is waited before a requeue.
	RequeueDelay time.Duration

	Clock clock.Clock
}

type Server struct {
	consumer amqp.Consumer
	handler  Handler
	cfg      Config
}

func NewServer(consumer amqp.Consumer, handler Handler, cfg Config) *Server {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	return &Server{consumer: consumer, handler: handler, cfg: cfg}
}

// Ready reports whether the consumer holds a live channel.
func (s *Server) Ready() bool {
	return s.consumer.Connected()
}

// Start consumes until ctx ends. Every session waits for its tasks in
// flight before the channel closes, so their deliveries are settled on the
// channel that received them.
func (s *Server) Start(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)

	err := s.consumer.Consume(ctx, func(ctx context.Context, d amqp.Delivery) {
		g.Go(func() error {
			s.settle(ctx, d)
			return nil
		})
	}, func() {
		_ = g.Wait()
	})

	log.Info("Task queue consumer stopped")
	return err
}

func (s *Server) settle(ctx context.Context, d amqp.Delivery) {
	logger := log.FromContext(ctx)

	outcome := s.safeHandle(ctx, d.Body())
	if outcome == intake.Ack {
		if err := d.Ack(); err != nil {
			logger.Error(err, "Failed to acknowledge task message")
		}
		return
	}

	if err := movement.Sleep(ctx, s.cfg.Clock, s.cfg.RequeueDelay); err != nil {
		logger.Debug("Requeueing without delay", "reason", err)
	}
	if err := d.Nack(true); err != nil {
		logger.Error(err, "Failed to requeue task message")
	}
}

// safeHandle converts a panicking handler into a requeue.
func (s *Server) safeHandle(ctx context.Context, body []byte) (outcome intake.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			log.FromContext(ctx).Error(nil, "Task handler panicked, requeueing", "panic", r)
			outcome = intake.Requeue
		}
	}()
	return s.handler.Handle(ctx, body)
}
