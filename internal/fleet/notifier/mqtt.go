// Package notifier publishes vehicle telemetry on MQTT.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	pkgmqtt "github.com/Rus1K7/Airport/pkg/mqtt"
	"github.com/Rus1K7/Airport/pkg/mqtt/topic"
	"github.com/Rus1K7/Airport/pkg/options"
)

var _ core.Notifier = (*MQTTNotifier)(nil)

// MQTTNotifier publishes positions and task states. Messages published while
// the broker is unreachable are dropped.
type MQTTNotifier struct {
	client pkgmqtt.Client
	topics *topic.TopicBuilder
}

// NewMQTTNotifier connects a dedicated publishing client. The connection is
// established in the background.
func NewMQTTNotifier(ctx context.Context, opts *options.MqttOptions) (*MQTTNotifier, error) {
	cfg := opts.ToClientConfig()
	if cfg.ClientID != "" {
		cfg.ClientID += "-telemetry"
	}

	client, err := pkgmqtt.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.Start(ctx); err != nil {
		return nil, err
	}

	return NewWithClient(client, opts.TopicRoot), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client pkgmqtt.Client, root string) *MQTTNotifier {
	return &MQTTNotifier{client: client, topics: topic.NewTopicBuilder(root)}
}

func (n *MQTTNotifier) PublishPosition(ctx context.Context, hop model.Hop) error {
	return n.publish(ctx, n.topics.Position(hop.VehicleID), hop)
}

func (n *MQTTNotifier) PublishTaskEvent(ctx context.Context, ev model.TaskEvent) error {
	return n.publish(ctx, n.topics.TaskState(ev.VehicleID), ev)
}

func (n *MQTTNotifier) publish(ctx context.Context, t string, v any) error {
	if !n.client.IsConnected() {
		return fmt.Errorf("telemetry broker not connected, dropped %s", t)
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, t, 1, false, payload)
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close(ctx context.Context) {
	n.client.Disconnect(ctx)
}
