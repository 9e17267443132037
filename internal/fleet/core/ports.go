package core

import (
	"context"

	"github.com/Rus1K7/Airport/internal/fleet/core/model"
)

// MoveRequest identifies one hop of one vehicle towards ground control.
type MoveRequest struct {
	VehicleID   string `json:"guid"`
	VehicleType string `json:"vehicleType"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// TrafficAuthority is ground control: it plans routes and grants hops.
type TrafficAuthority interface {
	// Path returns the route from -> to, starting with from.
	Path(ctx context.Context, vehicleID, from, to string) ([]string, error)

	// MovePermission asks whether the vehicle may take the hop now.
	MovePermission(ctx context.Context, req MoveRequest) (bool, error)

	// Move announces the start of a granted hop.
	Move(ctx context.Context, req MoveRequest) error

	// Arrived confirms the hop is complete.
	Arrived(ctx context.Context, req MoveRequest) error

	// Register places vehicles on the map, vehicleIDs[i] at nodes[i].
	Register(ctx context.Context, vehicleIDs, nodes []string) error
}

// Supervisor is the task owner. All calls are notifications; callers log failures and move on.
type Supervisor interface {
	Assign(ctx context.Context, taskID, vehicleID string) error
	UpdateState(ctx context.Context, taskID string, state model.TaskState, message string) error
	Complete(ctx context.Context, taskID string) error
}

// PayloadProvider returns what a cargo vehicle must load for a flight.
type PayloadProvider interface {
	Menu(ctx context.Context, flightID string) (model.Payload, error)
}

// EscortTarget is told which point to follow next while a plane is escorted.
type EscortTarget interface {
	Follow(ctx context.Context, vehicleID, point string) error
}

// Notifier publishes telemetry. Delivery is best-effort.
type Notifier interface {
	PublishPosition(ctx context.Context, hop model.Hop) error
	PublishTaskEvent(ctx context.Context, ev model.TaskEvent) error
}

// TripArchive stores finished trip journals.
type TripArchive interface {
	Archive(ctx context.Context, trip *model.Trip) error
}
