// Package fsm adapts error-returning callbacks to looplab/fsm.
package fsm

import (
	"context"

	"github.com/looplab/fsm"
)

// EnterAnyState is the callback key run after entering any state.
const EnterAnyState = "enter_state"

// EventFunc is a state machine callback that can fail the transition.
type EventFunc func(ctx context.Context, event *fsm.Event) error

// EnterState returns the callback key run after entering state.
func EnterState(state string) string {
	return "enter_" + state
}

// WrapEvent stores the error returned by fn on the event.
func WrapEvent(fn EventFunc) fsm.Callback {
	return func(ctx context.Context, event *fsm.Event) {
		if err := fn(ctx, event); err != nil {
			event.Err = err
		}
	}
}

// Callbacks wraps every function of fns.
func Callbacks(fns map[string]EventFunc) fsm.Callbacks {
	cbs := make(fsm.Callbacks, len(fns))
	for key, fn := range fns {
		cbs[key] = WrapEvent(fn)
	}
	return cbs
}
