package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/Rus1K7/Airport/pkg/mqtt"
	"github.com/Rus1K7/Airport/pkg/mqtt/topic"
	"github.com/Rus1K7/Airport/pkg/options"
)

func newTelemetryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telemetry",
		Short: "Follow vehicle telemetry on the MQTT broker",
	}
	cmd.AddCommand(newTelemetryWatchCommand())
	return cmd
}

func newTelemetryWatchCommand() *cobra.Command {
	opts := options.NewMqttOptions()
	opts.Broker = "tcp://localhost:1883"
	var vehicle string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print positions and task transitions until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if errs := opts.Validate(); len(errs) > 0 {
				return errs[0]
			}
			if opts.ClientID == "" {
				opts.ClientID = "groundctl-" + uuid.NewString()
			}

			client, err := mqtt.NewClient(opts.ToClientConfig())
			if err != nil {
				return err
			}
			ctx := genericapiserver.SetupSignalContext()
			return watch(ctx, client, watchFilters(opts.TopicRoot, vehicle), cmd.OutOrStdout())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.Broker, "broker", opts.Broker, "URL of the MQTT broker.")
	fs.StringVar(&opts.Username, "username", opts.Username, "MQTT username.")
	fs.StringVar(&opts.Password, "password", opts.Password, "MQTT password.")
	fs.StringVar(&opts.TopicRoot, "topic-root", opts.TopicRoot, "Topic prefix the service publishes under.")
	fs.StringVar(&vehicle, "vehicle", "", "Only show this vehicle.")
	return cmd
}

func watchFilters(root, vehicle string) []string {
	b := topic.NewTopicBuilder(root)
	if vehicle == "" {
		return []string{b.All()}
	}
	return []string{b.Position(vehicle), b.TaskState(vehicle)}
}

// watch subscribes to filters and writes "topic payload" lines to w until ctx ends.
func watch(ctx context.Context, client mqtt.Client, filters []string, w io.Writer) error {
	if err := client.Start(ctx); err != nil {
		return err
	}
	defer client.Disconnect(context.WithoutCancel(ctx))

	if err := client.AwaitConnection(ctx); err != nil {
		return fmt.Errorf("failed to connect to broker: %w", err)
	}

	var mu sync.Mutex
	show := func(_ context.Context, t string, payload []byte) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "%s %s\n", t, payload)
	}
	for _, f := range filters {
		if err := client.Subscribe(ctx, f, 1, show); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", f, err)
		}
	}

	<-ctx.Done()
	return nil
}
