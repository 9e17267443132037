// Package fleet assembles the ground vehicle service: one fleet of catering
// trucks or follow-me cars consuming tasks from the queue.
package fleet

import (
	"context"
	"time"

	"k8s.io/utils/clock"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/fleet/core/movement"
	"github.com/Rus1K7/Airport/internal/fleet/core/pool"
	"github.com/Rus1K7/Airport/internal/fleet/notifier"
	"github.com/Rus1K7/Airport/internal/fleet/server"
	"github.com/Rus1K7/Airport/internal/fleet/storage"
	"github.com/Rus1K7/Airport/pkg/log"
)

const (
	registerAttempts = 5
	registerInterval = 10 * time.Second
)

// FleetServer is the running service.
type FleetServer struct {
	kind            model.Kind
	vehicles        *pool.Pool
	authority       core.TrafficAuthority
	registerOnStart bool

	// Optional, nil when disabled.
	tripArchive *storage.TripArchive
	notifier    *notifier.MQTTNotifier

	serverManager *server.Manager
}

// Run serves until ctx ends.
func (s *FleetServer) Run(ctx context.Context) error {
	log.Info("Starting ground vehicle service", "kind", s.kind, "vehicles", s.vehicles.Len())

	if s.notifier != nil {
		defer s.notifier.Close(context.WithoutCancel(ctx))
	}

	if s.registerOnStart {
		if err := registerVehicles(ctx, s.authority, s.vehicles.List(), clock.RealClock{}); err != nil {
			// Unregistered vehicles fail their tasks until registered through the init endpoint.
			log.Error(err, "Failed to register vehicles with ground control")
		}
	}

	if s.tripArchive != nil {
		if err := s.tripArchive.EnsureBucket(ctx); err != nil {
			log.Error(err, "Trip archive unavailable, journals will be dropped")
		}
	}

	return s.serverManager.Start(ctx)
}

// registerVehicles places every vehicle at its current node on the ground
// control map, retrying a few times while ground control starts up.
func registerVehicles(ctx context.Context, authority core.TrafficAuthority, vehicles []model.Vehicle, clk clock.Clock) error {
	ids := make([]string, 0, len(vehicles))
	nodes := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		ids = append(ids, v.ID)
		nodes = append(nodes, v.Location)
	}

	var err error
	for attempt := 1; attempt <= registerAttempts; attempt++ {
		if err = authority.Register(ctx, ids, nodes); err == nil {
			log.Info("Vehicles registered with ground control", "vehicles", ids)
			return nil
		}
		log.Warn("Ground control registration failed", "attempt", attempt, "error", err)
		if attempt == registerAttempts {
			break
		}
		if serr := movement.Sleep(ctx, clk, registerInterval); serr != nil {
			return serr
		}
	}
	return err
}
