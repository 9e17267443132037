package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedTask is returned for queue messages that can never be executed.
var ErrMalformedTask = errors.New("malformed task")

// Task is a unit of work read from the queue.
type Task struct {
	TaskID   string      `json:"taskId"`
	Type     string      `json:"type,omitempty"`
	CarID    string      `json:"carId,omitempty"`
	FlightID string      `json:"flightId"`
	PlaneID  string      `json:"planeId,omitempty"`
	Point    string      `json:"point,omitempty"`
	Details  TaskDetails `json:"details"`

	// AssignedVehicleID is set once by the intake.
	AssignedVehicleID string `json:"-"`
}

type TaskDetails struct {
	TakeFrom     string `json:"takeFrom,omitempty"`
	Runway       string `json:"runway,omitempty"`
	PlaneParking string `json:"planeParking,omitempty"`
}

// DecodeTask parses and validates a queue message.
func DecodeTask(raw []byte) (*Task, error) {
	var t Task
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTask, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate rejects tasks without an id or a destination.
func (t *Task) Validate() error {
	if t.TaskID == "" {
		return fmt.Errorf("%w: missing taskId", ErrMalformedTask)
	}
	if t.DropoffNode() == "" {
		return fmt.Errorf("%w: task %s has no destination", ErrMalformedTask, t.TaskID)
	}
	return nil
}

// PickupNode is where the vehicle collects its payload or meets the plane.
// Empty means the task starts wherever the vehicle is.
func (t *Task) PickupNode() string {
	if t.Details.TakeFrom != "" {
		return t.Details.TakeFrom
	}
	return t.Details.Runway
}

// DropoffNode is where the payload is delivered or the escort ends.
func (t *Task) DropoffNode() string {
	if t.Point != "" {
		return t.Point
	}
	return t.Details.PlaneParking
}

// Assign records the vehicle running the task. It can be called once.
func (t *Task) Assign(vehicleID string) error {
	if t.AssignedVehicleID != "" && t.AssignedVehicleID != vehicleID {
		return fmt.Errorf("task %s already assigned to %s", t.TaskID, t.AssignedVehicleID)
	}
	t.AssignedVehicleID = vehicleID
	return nil
}

// TaskState is a state of the task executor.
type TaskState string

const (
	TaskAssigned        TaskState = "assigned"
	TaskMovingToPickup  TaskState = "moving_to_pickup"
	TaskLoading         TaskState = "loading"
	TaskMovingToDropoff TaskState = "moving_to_dropoff"
	TaskDelivering      TaskState = "delivering"
	TaskReturningToBase TaskState = "returning_to_base"
	TaskCompleted       TaskState = "completed"
	TaskFailed          TaskState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// Hop is one confirmed directed move.
type Hop struct {
	VehicleID string    `json:"vehicleId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	At        time.Time `json:"at"`
}

// TaskEvent is one executor transition.
type TaskEvent struct {
	TaskID    string    `json:"taskId"`
	VehicleID string    `json:"vehicleId"`
	State     TaskState `json:"state"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
}

// Trip is the journal of one task attempt.
type Trip struct {
	AttemptID  string      `json:"attemptId"`
	TaskID     string      `json:"taskId"`
	FlightID   string      `json:"flightId,omitempty"`
	VehicleID  string      `json:"vehicleId"`
	Kind       Kind        `json:"kind"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt time.Time   `json:"finishedAt"`
	Outcome    TaskState   `json:"outcome"`
	Error      string      `json:"error,omitempty"`
	Events     []TaskEvent `json:"events"`
	Hops       []Hop       `json:"hops"`
}
