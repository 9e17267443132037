package topic

import (
	"fmt"
)

// Topic segments for vehicle telemetry. Consumers subscribe to these, so
// changing them is a breaking change.
const (
	// SuffixPosition carries confirmed hop arrivals.
	// Structure: {root}/vehicle/position/{vehicleID}
	SuffixPosition = "vehicle/position"

	// SuffixTaskState carries task state transitions.
	// Structure: {root}/vehicle/task/{vehicleID}
	SuffixTaskState = "vehicle/task"

	// SuffixVehicle is the parent of every vehicle topic.
	SuffixVehicle = "vehicle"
)

// MQTT filter wildcards. Wildcard matches one level, MultiWildcard the rest
// of the topic and must come last.
const (
	Wildcard      = "+"
	MultiWildcard = "#"
)

// TopicBuilder constructs topic strings under a fixed root.
type TopicBuilder struct {
	// root is the base namespace for all topics (e.g., "airport/v1").
	root string
}

// NewTopicBuilder creates a new instance of TopicBuilder with the specified root namespace.
func NewTopicBuilder(root string) *TopicBuilder {
	return &TopicBuilder{root: root}
}

// Position returns the topic a vehicle's confirmed positions are published on.
func (b *TopicBuilder) Position(vehicleID string) string {
	return b.build(SuffixPosition, vehicleID)
}

// PositionWildcard matches the positions of every vehicle.
func (b *TopicBuilder) PositionWildcard() string {
	return b.build(SuffixPosition, Wildcard)
}

// TaskState returns the topic a vehicle's task transitions are published on.
func (b *TopicBuilder) TaskState(vehicleID string) string {
	return b.build(SuffixTaskState, vehicleID)
}

// TaskStateWildcard matches the task transitions of every vehicle.
func (b *TopicBuilder) TaskStateWildcard() string {
	return b.build(SuffixTaskState, Wildcard)
}

// All matches every vehicle topic.
// Result: {root}/vehicle/#
func (b *TopicBuilder) All() string {
	return fmt.Sprintf("%s/%s/%s", b.root, SuffixVehicle, MultiWildcard)
}

// build produces {root}/{suffix}/{identifier}.
func (b *TopicBuilder) build(suffix, id string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, suffix, id)
}
