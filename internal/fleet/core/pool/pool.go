// Package pool owns the vehicles of one fleet and arbitrates who may use them.
package pool

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/pkg/metrics"
)

var (
	ErrNotFound      = errors.New("vehicle not found")
	ErrAlreadyExists = errors.New("vehicle already exists")
	ErrBusy          = errors.New("vehicle is busy")
	ErrNotBusy       = errors.New("vehicle is not reserved")
	ErrOverCapacity  = errors.New("payload exceeds vehicle capacity")
	ErrNoCargo       = errors.New("vehicle does not carry a payload")
)

// Pool is an in-memory vehicle store. All reads return snapshots; all
// mutations go through its methods under one mutex.
type Pool struct {
	mu       sync.Mutex
	vehicles map[string]*model.Vehicle
	// order keeps registration order so AcquireFree is deterministic.
	order []string
}

// New returns a pool holding vehicles.
func New(vehicles ...*model.Vehicle) (*Pool, error) {
	p := &Pool{vehicles: make(map[string]*model.Vehicle)}
	for _, v := range vehicles {
		if err := p.Add(v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Add registers a vehicle. The pool takes ownership of v.
func (p *Pool) Add(v *model.Vehicle) error {
	if v == nil || v.ID == "" {
		return errors.New("vehicle id is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.vehicles[v.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, v.ID)
	}
	if v.Status == "" {
		v.Status = model.StatusFree
	}
	p.vehicles[v.ID] = v
	p.order = append(p.order, v.ID)
	return nil
}

// AcquireFree reserves the first free vehicle. ok is false when every vehicle is busy.
func (p *Pool) AcquireFree(taskID string) (v model.Vehicle, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range p.order {
		cur := p.vehicles[id]
		if cur.Free() {
			p.reserveLocked(cur, taskID)
			return cur.Clone(), true
		}
	}
	return model.Vehicle{}, false
}

// Acquire reserves a specific vehicle.
func (p *Pool) Acquire(id, taskID string) (model.Vehicle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur, ok := p.vehicles[id]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !cur.Free() {
		return model.Vehicle{}, fmt.Errorf("%w: %s", ErrBusy, id)
	}
	p.reserveLocked(cur, taskID)
	return cur.Clone(), nil
}

func (p *Pool) reserveLocked(v *model.Vehicle, taskID string) {
	v.Status = model.StatusBusy
	v.TaskID = taskID
	metrics.VehiclesBusy.WithLabelValues(v.Kind.String()).Inc()
}

// Release frees a reserved vehicle. Releasing a free vehicle is an error so
// double releases are visible.
func (p *Pool) Release(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur, ok := p.vehicles[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if cur.Free() {
		return fmt.Errorf("%w: %s", ErrNotBusy, id)
	}
	cur.Status = model.StatusFree
	cur.TaskID = ""
	metrics.VehiclesBusy.WithLabelValues(cur.Kind.String()).Dec()
	return nil
}

// Get returns a snapshot of the vehicle.
func (p *Pool) Get(id string) (model.Vehicle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur, ok := p.vehicles[id]
	if !ok {
		return model.Vehicle{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cur.Clone(), nil
}

// Contains reports whether id is registered.
func (p *Pool) Contains(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.vehicles[id]
	return ok
}

// List returns snapshots of all vehicles in registration order.
func (p *Pool) List() []model.Vehicle {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]model.Vehicle, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.vehicles[id].Clone())
	}
	return out
}

// Len is the number of registered vehicles.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.order)
}

// SetLocation records a confirmed arrival.
func (p *Pool) SetLocation(id, node string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur, ok := p.vehicles[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cur.Location = node
	return nil
}

// Load replaces the payload of a cargo vehicle. The total must fit the capacity.
func (p *Pool) Load(id string, payload model.Payload) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur, ok := p.vehicles[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !cur.Kind.Cargo() {
		return fmt.Errorf("%w: %s", ErrNoCargo, id)
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("%s: %w", id, err)
	}
	if total := payload.Total(); total > cur.Capacity {
		return fmt.Errorf("%w: %s holds %d, got %d", ErrOverCapacity, id, cur.Capacity, total)
	}

	next := model.EmptyMenu()
	maps.Copy(next, payload)
	cur.Payload = next
	return nil
}

// Unload empties the payload and returns what was carried.
func (p *Pool) Unload(id string) (model.Payload, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cur, ok := p.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !cur.Kind.Cargo() {
		return nil, fmt.Errorf("%w: %s", ErrNoCargo, id)
	}
	carried := cur.Payload
	cur.Payload = model.EmptyMenu()
	return carried, nil
}
