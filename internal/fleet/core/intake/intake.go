// Package intake turns queue messages into task runs and settles each
// message as acknowledged or requeued.
package intake

import (
	"context"
	"errors"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/fleet/core/pool"
	"github.com/Rus1K7/Airport/internal/pkg/metrics"
	"github.com/Rus1K7/Airport/pkg/log"
)

// Outcome is how a queue message must be settled.
type Outcome int

const (
	// Ack removes the message from the queue.
	Ack Outcome = iota
	// Requeue returns the message to the queue for a later attempt.
	Requeue
)

func (o Outcome) String() string {
	if o == Ack {
		return "ack"
	}
	return "requeue"
}

// Reasons attached to an outcome.
const (
	ReasonCompleted   = "completed"
	ReasonMalformed   = "malformed"
	ReasonNoVehicle   = "no_free_vehicle"
	ReasonVehicleBusy = "vehicle_busy"
	ReasonFailed      = "task_failed"
)

// Reserver hands out vehicles for tasks.
type Reserver interface {
	Contains(vehicleID string) bool
	Acquire(vehicleID, taskID string) (model.Vehicle, error)
	AcquireFree(taskID string) (model.Vehicle, bool)
	Release(vehicleID string) error
}

// Runner executes one task on a reserved vehicle and releases it afterwards.
type Runner interface {
	Run(ctx context.Context, v model.Vehicle, task *model.Task) error
}

// Intake settles task messages.
type Intake struct {
	vehicles   Reserver
	runner     Runner
	supervisor core.Supervisor
}

// New returns an Intake. supervisor may be nil.
func New(vehicles Reserver, runner Runner, supervisor core.Supervisor) *Intake {
	if supervisor == nil {
		supervisor = core.NopSupervisor{}
	}
	return &Intake{vehicles: vehicles, runner: runner, supervisor: supervisor}
}

// Handle runs the task in body to completion and says how to settle the message.
func (in *Intake) Handle(ctx context.Context, body []byte) Outcome {
	outcome, reason := in.handle(ctx, body)
	metrics.IntakeDecisions.WithLabelValues(outcome.String(), reason).Inc()
	return outcome
}

func (in *Intake) handle(ctx context.Context, body []byte) (Outcome, string) {
	logger := log.FromContext(ctx)

	task, err := model.DecodeTask(body)
	if err != nil {
		logger.Error(err, "Dropping malformed task message", "size", len(body))
		return Ack, ReasonMalformed
	}
	logger = logger.WithValues("task", task.TaskID, "flight", task.FlightID)

	v, reason, ok := in.reserve(task)
	if !ok {
		logger.Info("No vehicle available, requeueing task", "carId", task.CarID, "reason", reason)
		return Requeue, reason
	}
	if err := task.Assign(v.ID); err != nil {
		logger.Error(err, "Task assignment rejected")
		if rerr := in.vehicles.Release(v.ID); rerr != nil {
			logger.Error(rerr, "Failed to release vehicle", "vehicle", v.ID)
		}
		return Requeue, ReasonFailed
	}

	logger.Info("Task assigned", "vehicle", v.ID)
	if err := in.supervisor.Assign(ctx, task.TaskID, v.ID); err != nil {
		logger.Error(err, "Failed to report assignment", "vehicle", v.ID)
	}

	if err := in.runner.Run(log.IntoContext(ctx, logger), v, task); err != nil {
		logger.Error(err, "Task failed, requeueing", "vehicle", v.ID)
		return Requeue, ReasonFailed
	}
	return Ack, ReasonCompleted
}

// reserve picks the vehicle named by the task when it is known, otherwise any free one.
func (in *Intake) reserve(task *model.Task) (model.Vehicle, string, bool) {
	if task.CarID != "" && in.vehicles.Contains(task.CarID) {
		v, err := in.vehicles.Acquire(task.CarID, task.TaskID)
		switch {
		case err == nil:
			return v, "", true
		case errors.Is(err, pool.ErrBusy):
			return model.Vehicle{}, ReasonVehicleBusy, false
		default:
			return model.Vehicle{}, ReasonNoVehicle, false
		}
	}

	v, ok := in.vehicles.AcquireFree(task.TaskID)
	if !ok {
		return model.Vehicle{}, ReasonNoVehicle, false
	}
	return v, "", true
}
