package core

import (
	"context"

	"github.com/Rus1K7/Airport/internal/fleet/core/model"
)

// NopNotifier drops every event. Used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) PublishPosition(context.Context, model.Hop) error        { return nil }
func (NopNotifier) PublishTaskEvent(context.Context, model.TaskEvent) error { return nil }

// NopArchive discards trip journals.
type NopArchive struct{}

func (NopArchive) Archive(context.Context, *model.Trip) error { return nil }

// NopEscortTarget ignores follow points.
type NopEscortTarget struct{}

func (NopEscortTarget) Follow(context.Context, string, string) error { return nil }

// NopSupervisor accepts every notification.
type NopSupervisor struct{}

func (NopSupervisor) Assign(context.Context, string, string) error { return nil }
func (NopSupervisor) UpdateState(context.Context, string, model.TaskState, string) error {
	return nil
}
func (NopSupervisor) Complete(context.Context, string) error { return nil }
