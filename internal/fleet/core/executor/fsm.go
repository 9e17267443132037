package executor

import (
	"github.com/looplab/fsm"

	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	fsmutil "github.com/Rus1K7/Airport/internal/pkg/util/fsm"
)

// Task events. EventStart leaves Assigned when the vehicle is away from the
// pickup node and EventSkipPickup when it is already there. EventFail is
// accepted from every non-terminal state.
const (
	EventStart        = "start"
	EventSkipPickup   = "skip_pickup"
	EventReachPickup  = "reach_pickup"
	EventLoaded       = "loaded"
	EventReachDropoff = "reach_dropoff"
	EventDelivered    = "delivered"
	EventReturned     = "returned"
	EventFail         = "fail"
)

var activeStates = []string{
	string(model.TaskAssigned),
	string(model.TaskMovingToPickup),
	string(model.TaskLoading),
	string(model.TaskMovingToDropoff),
	string(model.TaskDelivering),
	string(model.TaskReturningToBase),
}

// newMachine builds the task state machine. Every state entry goes through r.enterState,
// and entering Failed additionally through r.enterFailed.
func newMachine(r *run) *fsm.FSM {
	events := fsm.Events{
		{Name: EventStart, Src: []string{string(model.TaskAssigned)}, Dst: string(model.TaskMovingToPickup)},
		{Name: EventSkipPickup, Src: []string{string(model.TaskAssigned)}, Dst: string(model.TaskLoading)},
		{Name: EventReachPickup, Src: []string{string(model.TaskMovingToPickup)}, Dst: string(model.TaskLoading)},
		{Name: EventLoaded, Src: []string{string(model.TaskLoading)}, Dst: string(model.TaskMovingToDropoff)},
		{Name: EventReachDropoff, Src: []string{string(model.TaskMovingToDropoff)}, Dst: string(model.TaskDelivering)},
		{Name: EventDelivered, Src: []string{string(model.TaskDelivering)}, Dst: string(model.TaskReturningToBase)},
		{Name: EventReturned, Src: []string{string(model.TaskReturningToBase)}, Dst: string(model.TaskCompleted)},

		{Name: EventFail, Src: activeStates, Dst: string(model.TaskFailed)},
	}

	callbacks := fsmutil.Callbacks(map[string]fsmutil.EventFunc{
		fsmutil.EnterState(string(model.TaskFailed)): r.enterFailed,
		fsmutil.EnterAnyState:                        r.enterState,
	})

	return fsm.NewFSM(string(model.TaskAssigned), events, callbacks)
}

// messageOf returns the state message carried as the first event argument.
func messageOf(e *fsm.Event) string {
	if len(e.Args) == 0 || e.Args[0] == nil {
		return ""
	}
	switch v := e.Args[0].(type) {
	case error:
		return v.Error()
	case string:
		return v
	default:
		return ""
	}
}
