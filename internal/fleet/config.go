package fleet

import (
	"context"
	"fmt"

	"github.com/Rus1K7/Airport/internal/fleet/checkin"
	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/executor"
	"github.com/Rus1K7/Airport/internal/fleet/core/intake"
	"github.com/Rus1K7/Airport/internal/fleet/core/movement"
	"github.com/Rus1K7/Airport/internal/fleet/core/pool"
	"github.com/Rus1K7/Airport/internal/fleet/groundcontrol"
	"github.com/Rus1K7/Airport/internal/fleet/notifier"
	"github.com/Rus1K7/Airport/internal/fleet/plane"
	"github.com/Rus1K7/Airport/internal/fleet/server"
	"github.com/Rus1K7/Airport/internal/fleet/server/http"
	"github.com/Rus1K7/Airport/internal/fleet/server/queue"
	"github.com/Rus1K7/Airport/internal/fleet/storage"
	"github.com/Rus1K7/Airport/internal/fleet/supervisor"
	"github.com/Rus1K7/Airport/pkg/amqp"
	"github.com/Rus1K7/Airport/pkg/options"
)

type Config struct {
	FleetOptions    *FleetOptions
	HttpOptions     *options.HttpOptions
	AmqpOptions     *options.AmqpOptions
	MqttOptions     *options.MqttOptions
	S3Options       *options.S3Options
	MovementOptions *options.MovementOptions

	GroundControl *options.ClientOptions
	Supervisor    *options.ClientOptions
	CheckIn       *options.ClientOptions
	Plane         *options.ClientOptions
}

// NewFleetServer wires the adapters around the engine core.
func (cfg *Config) NewFleetServer(ctx context.Context) (*FleetServer, error) {
	kind, vehicles, err := cfg.FleetOptions.Build()
	if err != nil {
		return nil, err
	}
	vehiclePool, err := pool.New(vehicles...)
	if err != nil {
		return nil, err
	}

	// Secondary adapters
	gc, err := groundcontrol.New(cfg.GroundControl)
	if err != nil {
		return nil, err
	}
	sup, err := supervisor.New(cfg.Supervisor)
	if err != nil {
		return nil, err
	}

	var telemetry core.Notifier = core.NopNotifier{}
	var mqttNotifier *notifier.MQTTNotifier
	if cfg.MqttOptions.Enabled() {
		mqttNotifier, err = notifier.NewMQTTNotifier(ctx, cfg.MqttOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to init notifier: %w", err)
		}
		telemetry = mqttNotifier
	}

	var archive core.TripArchive = core.NopArchive{}
	var tripArchive *storage.TripArchive
	if cfg.S3Options.Enabled() {
		tripArchive, err = storage.NewTripArchive(cfg.S3Options)
		if err != nil {
			return nil, err
		}
		archive = tripArchive
	}

	// Core
	backoff, err := movement.NewBackoff(cfg.MovementOptions.BackoffPolicy, cfg.MovementOptions.PermissionInterval, cfg.MovementOptions.MaxInterval)
	if err != nil {
		return nil, err
	}
	coordinator := movement.NewCoordinator(gc, vehiclePool, telemetry, movement.Config{
		Kind:                  kind,
		VehicleType:           cfg.FleetOptions.VehicleType,
		Backoff:               backoff,
		MaxPermissionAttempts: cfg.MovementOptions.MaxPermissionAttempts,
	})

	var (
		orders   http.OrderSink
		provider core.PayloadProvider
		target   core.EscortTarget
	)
	if kind.Cargo() {
		book := checkin.NewOrderBook()
		orders = book
		chain := checkin.Chain{book}
		if cfg.CheckIn.Enabled() {
			ci, err := checkin.New(cfg.CheckIn)
			if err != nil {
				return nil, err
			}
			chain = append(chain, ci)
		}
		provider = chain
	}
	if cfg.Plane.Enabled() {
		target, err = plane.New(cfg.Plane)
		if err != nil {
			return nil, err
		}
	}

	behavior, err := executor.NewBehavior(kind, provider, vehiclePool, target)
	if err != nil {
		return nil, err
	}
	exec := executor.New(vehiclePool, coordinator, behavior, sup,
		executor.WithNotifier(telemetry),
		executor.WithArchive(archive),
	)

	// Primary adapters
	queueName := cfg.AmqpOptions.Queue
	if queueName == "" {
		queueName = kind.Profile().Queue
	}
	amqpCfg := cfg.AmqpOptions.ToConfig(queueName)
	if amqpCfg.Prefetch == 0 {
		amqpCfg.Prefetch = vehiclePool.Len()
	}
	consumer, err := amqp.NewConsumer(amqpCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init task consumer: %w", err)
	}
	queueServer := queue.NewServer(consumer, intake.New(vehiclePool, exec, sup), queue.Config{
		Workers:      amqpCfg.Prefetch,
		RequeueDelay: cfg.AmqpOptions.RequeueDelay,
	})

	api := http.NewAPI(kind, vehiclePool, gc, coordinator, orders)
	httpServer := http.NewServer(cfg.HttpOptions, api, queueServer.Ready)

	return &FleetServer{
		kind:            kind,
		vehicles:        vehiclePool,
		authority:       gc,
		registerOnStart: cfg.FleetOptions.RegisterOnStart,
		tripArchive:     tripArchive,
		notifier:        mqttNotifier,
		serverManager:   server.NewManager(httpServer, queueServer),
	}, nil
}
