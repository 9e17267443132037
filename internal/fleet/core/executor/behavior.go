package executor

import (
	"context"
	"fmt"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/fleet/core/movement"
	"github.com/Rus1K7/Airport/pkg/log"
)

// Behavior holds the steps that differ between vehicle kinds.
type Behavior interface {
	Kind() model.Kind

	// Load prepares the vehicle at the pickup node.
	Load(ctx context.Context, v model.Vehicle, task *model.Task) error

	// Deliver hands over at the drop-off node.
	Deliver(ctx context.Context, v model.Vehicle, task *model.Task) error

	// DropoffHooks are attached to the traversal towards the drop-off node.
	DropoffHooks() []movement.Hook
}

// CargoStore is the part of the pool a cargo behaviour needs.
type CargoStore interface {
	Load(vehicleID string, payload model.Payload) error
	Unload(vehicleID string) (model.Payload, error)
}

// NewBehavior returns the behaviour for kind. provider and store are
// required for cargo kinds, target is used by escort kinds and may be nil.
func NewBehavior(kind model.Kind, provider core.PayloadProvider, store CargoStore, target core.EscortTarget) (Behavior, error) {
	switch kind {
	case model.KindCatering:
		if provider == nil || store == nil {
			return nil, fmt.Errorf("%s behaviour needs a payload provider and a cargo store", kind)
		}
		return &Cargo{kind: kind, provider: provider, store: store}, nil
	case model.KindFollowMe:
		if target == nil {
			target = core.NopEscortTarget{}
		}
		return &Escort{kind: kind, target: target}, nil
	default:
		return nil, fmt.Errorf("no behaviour for vehicle kind %q", kind)
	}
}

// Cargo loads a flight's meals at the pickup node and unloads them at the plane.
type Cargo struct {
	kind     model.Kind
	provider core.PayloadProvider
	store    CargoStore
}

func (b *Cargo) Kind() model.Kind { return b.kind }

func (b *Cargo) Load(ctx context.Context, v model.Vehicle, task *model.Task) error {
	menu, err := b.provider.Menu(ctx, task.FlightID)
	if err != nil {
		return fmt.Errorf("fetch menu for flight %s: %w", task.FlightID, err)
	}
	if err := b.store.Load(v.ID, menu); err != nil {
		return err
	}

	log.FromContext(ctx).Info("Payload loaded", "flight", task.FlightID, "meals", menu.Total())
	return nil
}

func (b *Cargo) Deliver(ctx context.Context, v model.Vehicle, task *model.Task) error {
	carried, err := b.store.Unload(v.ID)
	if err != nil {
		return err
	}

	log.FromContext(ctx).Info("Payload delivered", "flight", task.FlightID, "plane", task.PlaneID, "meals", carried.Total())
	return nil
}

func (b *Cargo) DropoffHooks() []movement.Hook { return nil }

// Escort meets a plane at the runway and leads it to its parking.
type Escort struct {
	kind   model.Kind
	target core.EscortTarget
}

func (b *Escort) Kind() model.Kind { return b.kind }

func (b *Escort) Load(context.Context, model.Vehicle, *model.Task) error { return nil }

func (b *Escort) Deliver(ctx context.Context, v model.Vehicle, task *model.Task) error {
	log.FromContext(ctx).Info("Plane escorted to parking", "flight", task.FlightID, "plane", task.PlaneID, "parking", task.DropoffNode())
	return nil
}

// DropoffHooks tells the plane each point before the car moves to it.
func (b *Escort) DropoffHooks() []movement.Hook {
	return []movement.Hook{{
		BeforeMove: func(ctx context.Context, req core.MoveRequest) error {
			return b.target.Follow(ctx, req.VehicleID, req.To)
		},
	}}
}
