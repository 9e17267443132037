package amqp

import "context"

// Delivery is one message received from the queue. Exactly one of Ack or
// Nack must be called.
type Delivery interface {
	Body() []byte
	Redelivered() bool
	Ack() error
	Nack(requeue bool) error
}

// Handler processes one delivery. It runs on the consumer goroutine; long
// work should be handed off.
type Handler func(ctx context.Context, d Delivery)

// Consumer reads messages from a single queue.
type Consumer interface {
	// Consume delivers messages to handler until ctx is cancelled. Lost
	// connections are re-established in the background of the call.
	//
	// When a session ends, drain is called before its channel closes so
	// handed-off deliveries can still be settled. drain may be nil.
	Consume(ctx context.Context, handler Handler, drain func()) error

	// Connected reports whether a consuming channel is currently open.
	Connected() bool
}

// Publisher sends messages to a queue through the default exchange.
type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
	Close() error
}
