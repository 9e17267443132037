package model

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Status is the reservation state of a vehicle.
type Status string

const (
	StatusFree Status = "free"
	StatusBusy Status = "busy"
)

// MenuCategories are the meal categories a catering truck carries.
var MenuCategories = []string{"chicken", "pork", "fish", "vegetarian"}

// Payload maps a category to a quantity.
type Payload map[string]int

// EmptyMenu returns a payload with every menu category at zero.
func EmptyMenu() Payload {
	p := make(Payload, len(MenuCategories))
	for _, c := range MenuCategories {
		p[c] = 0
	}
	return p
}

// ErrInvalidPayload reports a quantity below zero or a category off the menu.
var ErrInvalidPayload = errors.New("invalid payload")

// Validate checks that every category is on the menu and no quantity is negative.
func (p Payload) Validate() error {
	for c, q := range p {
		if !slices.Contains(MenuCategories, c) {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidPayload, c)
		}
		if q < 0 {
			return fmt.Errorf("%w: %s quantity %d is negative", ErrInvalidPayload, c, q)
		}
	}
	return nil
}

// Total is the sum of all quantities.
func (p Payload) Total() int {
	n := 0
	for _, q := range p {
		n += q
	}
	return n
}

// Vehicle is a ground vehicle. Values handed out by the pool are snapshots.
type Vehicle struct {
	ID           string  `json:"id"`
	Kind         Kind    `json:"kind"`
	Capacity     int     `json:"capacity"`
	Status       Status  `json:"status"`
	Location     string  `json:"location"`
	BaseLocation string  `json:"baseLocation"`
	Payload      Payload `json:"payload,omitempty"`

	// TaskID is the task the vehicle is reserved for, if any.
	TaskID string `json:"taskId,omitempty"`
}

// NewVehicle returns a free vehicle of kind k parked at base.
func NewVehicle(id string, k Kind, base string) *Vehicle {
	v := &Vehicle{
		ID:           id,
		Kind:         k,
		Capacity:     k.Profile().Capacity,
		Status:       StatusFree,
		Location:     base,
		BaseLocation: base,
	}
	if k.Cargo() {
		v.Payload = EmptyMenu()
	}
	return v
}

// Free reports whether the vehicle can take a task.
func (v Vehicle) Free() bool {
	return v.Status == StatusFree
}

// Clone returns a deep copy.
func (v *Vehicle) Clone() Vehicle {
	c := *v
	if v.Payload != nil {
		c.Payload = maps.Clone(v.Payload)
	}
	return c
}
