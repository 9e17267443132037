// Package executor runs one task on one reserved vehicle, from assignment
// to completion or failure.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"k8s.io/utils/clock"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/fleet/core/movement"
	"github.com/Rus1K7/Airport/internal/pkg/metrics"
	"github.com/Rus1K7/Airport/pkg/log"
)

const defaultArchiveTimeout = 10 * time.Second

// Store is the part of the vehicle pool the executor needs.
type Store interface {
	Get(vehicleID string) (model.Vehicle, error)
	Release(vehicleID string) error
}

// Mover drives a vehicle between two nodes.
type Mover interface {
	Traverse(ctx context.Context, vehicleID, from, to string, hooks ...movement.Hook) error
}

// Executor runs tasks. It holds no per-task state and is safe for concurrent use.
type Executor struct {
	store      Store
	mover      Mover
	behavior   Behavior
	supervisor core.Supervisor
	notifier   core.Notifier
	archive    core.TripArchive
	clock      clock.Clock

	archiveTimeout time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

func WithNotifier(n core.Notifier) Option {
	return func(e *Executor) { e.notifier = n }
}

func WithArchive(a core.TripArchive) Option {
	return func(e *Executor) { e.archive = a }
}

func WithClock(c clock.Clock) Option {
	return func(e *Executor) { e.clock = c }
}

// New returns an Executor. supervisor may be nil.
func New(store Store, mover Mover, behavior Behavior, supervisor core.Supervisor, opts ...Option) *Executor {
	e := &Executor{
		store:          store,
		mover:          mover,
		behavior:       behavior,
		supervisor:     supervisor,
		notifier:       core.NopNotifier{},
		archive:        core.NopArchive{},
		clock:          clock.RealClock{},
		archiveTimeout: defaultArchiveTimeout,
	}
	if e.supervisor == nil {
		e.supervisor = core.NopSupervisor{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kind is the vehicle kind this executor drives.
func (e *Executor) Kind() model.Kind { return e.behavior.Kind() }

// Run executes task on v, which the caller has already reserved in the store.
// The vehicle is released exactly once before Run returns, whatever the outcome.
// A nil error means the task reached Completed.
func (e *Executor) Run(ctx context.Context, v model.Vehicle, task *model.Task) (err error) {
	logger := log.FromContext(ctx).WithValues("task", task.TaskID, "vehicle", v.ID)
	ctx = log.IntoContext(ctx, logger)

	r := &run{
		exec:    e,
		vehicle: v,
		task:    task,
		logger:  logger,
		trip: &model.Trip{
			AttemptID: uuid.NewString(),
			TaskID:    task.TaskID,
			FlightID:  task.FlightID,
			VehicleID: v.ID,
			Kind:      e.behavior.Kind(),
			StartedAt: e.clock.Now(),
		},
	}
	r.machine = newMachine(r)

	defer func() { r.finish(ctx, err) }()

	logger.Info("Task started", "pickup", task.PickupNode(), "dropoff", task.DropoffNode())
	r.journal(ctx, model.TaskAssigned, "vehicle "+v.ID+" assigned")

	return r.drive(ctx)
}

// run is the state of one task attempt. It is confined to the Run goroutine.
type run struct {
	exec    *Executor
	vehicle model.Vehicle
	task    *model.Task
	machine *fsm.FSM
	logger  log.Logger
	trip    *model.Trip
}

func (r *run) state() model.TaskState {
	return model.TaskState(r.machine.Current())
}

// drive performs the work of the current state and fires the event it yields,
// until a terminal state is reached.
func (r *run) drive(ctx context.Context) error {
	for !r.state().Terminal() {
		from := r.state()
		event, msg, err := r.step(ctx, from)
		if err != nil {
			err = fmt.Errorf("task %s failed in %s: %w", r.task.TaskID, from, err)
			if ferr := r.fire(ctx, EventFail, err); ferr != nil {
				r.logger.Error(ferr, "Failed to enter failed state")
			}
			return err
		}
		if err := r.fire(ctx, event, msg); err != nil {
			return fmt.Errorf("task %s: %s from %s: %w", r.task.TaskID, event, from, err)
		}
	}
	return nil
}

// fire reports through a context that outlives cancellation, so the failure
// of a cancelled task still reaches the supervisor.
func (r *run) fire(ctx context.Context, event string, arg any) error {
	return r.machine.Event(context.WithoutCancel(ctx), event, arg)
}

// step does the work attached to state s and returns the event to fire next.
func (r *run) step(ctx context.Context, s model.TaskState) (event, msg string, err error) {
	task := r.task
	switch s {
	case model.TaskAssigned:
		at, err := r.location()
		if err != nil {
			return "", "", err
		}
		pickup := task.PickupNode()
		if pickup == "" || pickup == at {
			return EventSkipPickup, "already at pickup " + at, nil
		}
		return EventStart, "moving to pickup " + pickup, nil

	case model.TaskMovingToPickup:
		if err := r.traverse(ctx, task.PickupNode()); err != nil {
			return "", "", err
		}
		return EventReachPickup, "arrived at pickup " + task.PickupNode(), nil

	case model.TaskLoading:
		if err := r.exec.behavior.Load(ctx, r.vehicle, task); err != nil {
			return "", "", err
		}
		return EventLoaded, "moving to " + task.DropoffNode(), nil

	case model.TaskMovingToDropoff:
		if err := r.traverse(ctx, task.DropoffNode(), r.exec.behavior.DropoffHooks()...); err != nil {
			return "", "", err
		}
		return EventReachDropoff, "arrived at " + task.DropoffNode(), nil

	case model.TaskDelivering:
		if err := r.exec.behavior.Deliver(ctx, r.vehicle, task); err != nil {
			return "", "", err
		}
		if err := r.exec.supervisor.Complete(ctx, task.TaskID); err != nil {
			r.logger.Error(err, "Failed to report task completion")
		}
		return EventDelivered, "returning to " + r.vehicle.BaseLocation, nil

	case model.TaskReturningToBase:
		// Completion is already reported; a failed return only gets logged.
		if err := r.traverse(ctx, r.vehicle.BaseLocation); err != nil {
			r.logger.Error(err, "Return to base failed", "base", r.vehicle.BaseLocation)
			return EventReturned, "return to base failed: " + err.Error(), nil
		}
		return EventReturned, "back at " + r.vehicle.BaseLocation, nil
	}

	return "", "", fmt.Errorf("no work defined for state %s", s)
}

func (r *run) location() (string, error) {
	v, err := r.exec.store.Get(r.vehicle.ID)
	if err != nil {
		return "", err
	}
	return v.Location, nil
}

func (r *run) traverse(ctx context.Context, to string, hooks ...movement.Hook) error {
	from, err := r.location()
	if err != nil {
		return err
	}
	hooks = append(hooks, movement.Hook{Arrived: r.recordHop})
	return r.exec.mover.Traverse(ctx, r.vehicle.ID, from, to, hooks...)
}

func (r *run) recordHop(_ context.Context, hop model.Hop) {
	r.trip.Hops = append(r.trip.Hops, hop)
}

// enterState reports every state entry. Reporting is best-effort and never
// blocks the transition.
func (r *run) enterState(ctx context.Context, e *fsm.Event) error {
	state := model.TaskState(e.Dst)
	msg := messageOf(e)

	metrics.TaskTransitions.WithLabelValues(r.exec.behavior.Kind().String(), string(state)).Inc()
	r.logger.Info("Task state changed", "from", e.Src, "to", state, "event", e.Event)

	if err := r.exec.supervisor.UpdateState(ctx, r.task.TaskID, state, msg); err != nil {
		r.logger.Error(err, "Failed to report task state", "state", state)
	}
	r.journal(ctx, state, msg)
	return nil
}

func (r *run) enterFailed(_ context.Context, e *fsm.Event) error {
	r.logger.Error(nil, "Task failed", "from", e.Src, "reason", messageOf(e))
	return nil
}

// journal records a state on the trip and publishes it as telemetry.
func (r *run) journal(ctx context.Context, state model.TaskState, msg string) {
	ev := model.TaskEvent{
		TaskID:    r.task.TaskID,
		VehicleID: r.vehicle.ID,
		State:     state,
		Message:   msg,
		At:        r.exec.clock.Now(),
	}
	r.trip.Events = append(r.trip.Events, ev)

	if err := r.exec.notifier.PublishTaskEvent(ctx, ev); err != nil {
		r.logger.Warn("Failed to publish task event", "error", err)
	}
}

// finish releases the vehicle and archives the trip journal.
func (r *run) finish(ctx context.Context, err error) {
	if rerr := r.exec.store.Release(r.vehicle.ID); rerr != nil {
		r.logger.Error(rerr, "Failed to release vehicle")
	}

	outcome := r.state()
	if err != nil && !outcome.Terminal() {
		outcome = model.TaskFailed
	}
	metrics.TasksTotal.WithLabelValues(r.exec.behavior.Kind().String(), string(outcome)).Inc()

	r.trip.FinishedAt = r.exec.clock.Now()
	r.trip.Outcome = outcome
	if err != nil {
		r.trip.Error = err.Error()
	}

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.exec.archiveTimeout)
	defer cancel()
	if aerr := r.exec.archive.Archive(actx, r.trip); aerr != nil {
		r.logger.Warn("Failed to archive trip", "attempt", r.trip.AttemptID, "error", aerr)
	}

	r.logger.Info("Task finished", "outcome", outcome, "hops", len(r.trip.Hops), "elapsed", r.trip.FinishedAt.Sub(r.trip.StartedAt))
}
