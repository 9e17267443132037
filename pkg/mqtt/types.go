package mqtt

import (
	"context"
)

// MessageHandler receives the messages of one subscription. Each message is
// handled on its own goroutine, so calls may run concurrently and out of order.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Client is a small MQTT v5 client facade over autopaho.
type Client interface {
	// Start begins connecting in the background and returns at once.
	Start(ctx context.Context) error

	// Disconnect cleanly closes the connection.
	Disconnect(ctx context.Context)

	// Publish sends a message to the specified topic.
	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error

	// Subscribe registers a handler for a topic filter. Subscriptions are
	// restored after a reconnect.
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error

	// Unsubscribe removes the handler and sends an UNSUBSCRIBE packet.
	Unsubscribe(ctx context.Context, topic string) error

	// AwaitConnection blocks until the client is connected to the broker.
	AwaitConnection(ctx context.Context) error

	// IsConnected returns true if the client is currently connected.
	IsConnected() bool
}
