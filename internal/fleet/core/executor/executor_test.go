package executor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/fleet/core/movement"
	"github.com/Rus1K7/Airport/internal/fleet/core/pool"
)

type hop struct{ from, to string }

// fakeGC serves fixed routes and grants every permission.
type fakeGC struct {
	mu          sync.Mutex
	routes      map[hop][]string
	failArrived map[hop]bool
	paths       []hop
	moves       []hop
}

func newFakeGC(routes map[hop][]string) *fakeGC {
	return &fakeGC{routes: routes, failArrived: map[hop]bool{}}
}

func (g *fakeGC) Path(_ context.Context, _, from, to string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paths = append(g.paths, hop{from, to})
	r, ok := g.routes[hop{from, to}]
	if !ok {
		return nil, errors.New("no path")
	}
	return r, nil
}

func (g *fakeGC) MovePermission(context.Context, core.MoveRequest) (bool, error) { return true, nil }

func (g *fakeGC) Move(_ context.Context, req core.MoveRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.moves = append(g.moves, hop{req.From, req.To})
	return nil
}

func (g *fakeGC) Arrived(_ context.Context, req core.MoveRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failArrived[hop{req.From, req.To}] {
		return errors.New("503 Service Unavailable")
	}
	return nil
}

func (g *fakeGC) Register(context.Context, []string, []string) error { return nil }

type fakeSupervisor struct {
	mu        sync.Mutex
	states    []model.TaskState
	completed int
}

func (s *fakeSupervisor) Assign(context.Context, string, string) error { return nil }

func (s *fakeSupervisor) UpdateState(_ context.Context, _ string, state model.TaskState, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, state)
	return nil
}

func (s *fakeSupervisor) Complete(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed++
	return nil
}

type staticMenu struct {
	menu model.Payload
	err  error
}

func (m staticMenu) Menu(context.Context, string) (model.Payload, error) { return m.menu, m.err }

type follower struct{ points []string }

func (f *follower) Follow(_ context.Context, _, point string) error {
	f.points = append(f.points, point)
	return nil
}

// countingStore counts releases on top of a real pool.
type countingStore struct {
	*pool.Pool
	releases int
}

func (s *countingStore) Release(id string) error {
	s.releases++
	return s.Pool.Release(id)
}

type memArchive struct{ trips []*model.Trip }

func (a *memArchive) Archive(_ context.Context, t *model.Trip) error {
	a.trips = append(a.trips, t)
	return nil
}

type fixture struct {
	gc      *fakeGC
	store   *countingStore
	sup     *fakeSupervisor
	archive *memArchive
	exec    *Executor
	vehicle model.Vehicle
}

func newFixture(t *testing.T, kind model.Kind, base string, gc *fakeGC, behavior Behavior) *fixture {
	t.Helper()

	p, err := pool.New(model.NewVehicle("V-1", kind, base))
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	store := &countingStore{Pool: p}
	if behavior == nil {
		behavior, err = NewBehavior(kind, staticMenu{menu: model.Payload{"fish": 10, "chicken": 5}}, p, nil)
		if err != nil {
			t.Fatalf("NewBehavior: %v", err)
		}
	}

	mover := movement.NewCoordinator(gc, p, nil, movement.Config{Kind: kind, Backoff: movement.Constant{}})
	sup := &fakeSupervisor{}
	archive := &memArchive{}

	v, err := p.Acquire("V-1", "T-1")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	return &fixture{
		gc:      gc,
		store:   store,
		sup:     sup,
		archive: archive,
		exec:    New(store, mover, behavior, sup, WithArchive(archive)),
		vehicle: v,
	}
}

func (f *fixture) final(t *testing.T) model.Vehicle {
	t.Helper()
	v, err := f.store.Get("V-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return v
}

func TestRunCateringDelivery(t *testing.T) {
	// No route back to base: the vehicle stays at the gate and the task still completes.
	gc := newFakeGC(map[hop][]string{
		{"CS-1", "G11"}: {"CS-1", "T1", "G11"},
	})
	f := newFixture(t, model.KindCatering, "CS-1", gc, nil)

	task := &model.Task{TaskID: "T-1", FlightID: "SU100", Point: "G11", Details: model.TaskDetails{TakeFrom: "CS-1"}}
	if err := f.exec.Run(context.Background(), f.vehicle, task); err != nil {
		t.Fatalf("Run: %v", err)
	}

	v := f.final(t)
	if v.Location != "G11" {
		t.Errorf("location = %s, want G11", v.Location)
	}
	if !v.Free() {
		t.Errorf("status = %s, want free", v.Status)
	}
	if v.Payload.Total() != 0 {
		t.Errorf("payload not delivered: %v", v.Payload)
	}
	if f.store.releases != 1 {
		t.Errorf("releases = %d, want 1", f.store.releases)
	}
	if f.sup.completed != 1 {
		t.Errorf("completed reported %d times, want 1", f.sup.completed)
	}

	wantStates := []model.TaskState{
		model.TaskLoading,
		model.TaskMovingToDropoff,
		model.TaskDelivering,
		model.TaskReturningToBase,
		model.TaskCompleted,
	}
	if diff := cmp.Diff(wantStates, f.sup.states); diff != "" {
		t.Errorf("reported states mismatch (-want +got):\n%s", diff)
	}

	// Pickup equals the current location, so no pickup route is requested.
	wantPaths := []hop{{"CS-1", "G11"}, {"G11", "CS-1"}}
	if diff := cmp.Diff(wantPaths, gc.paths, cmp.AllowUnexported(hop{})); diff != "" {
		t.Errorf("path requests mismatch (-want +got):\n%s", diff)
	}

	if len(f.archive.trips) != 1 {
		t.Fatalf("archived %d trips, want 1", len(f.archive.trips))
	}
	trip := f.archive.trips[0]
	if trip.Outcome != model.TaskCompleted || len(trip.Hops) != 2 || trip.AttemptID == "" {
		t.Errorf("unexpected trip: outcome=%s hops=%d attempt=%q", trip.Outcome, len(trip.Hops), trip.AttemptID)
	}
	if trip.Events[0].State != model.TaskAssigned {
		t.Errorf("first journal entry = %s, want %s", trip.Events[0].State, model.TaskAssigned)
	}
}

func TestRunMovesToPickupAndReturnsToBase(t *testing.T) {
	gc := newFakeGC(map[hop][]string{
		{"CS-1", "K-2"}: {"CS-1", "K-2"},
		{"K-2", "G11"}:  {"K-2", "T1", "G11"},
		{"G11", "CS-1"}: {"G11", "T1", "CS-1"},
	})
	f := newFixture(t, model.KindCatering, "CS-1", gc, nil)

	task := &model.Task{TaskID: "T-1", FlightID: "SU100", Point: "G11", Details: model.TaskDetails{TakeFrom: "K-2"}}
	if err := f.exec.Run(context.Background(), f.vehicle, task); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if v := f.final(t); v.Location != "CS-1" || !v.Free() {
		t.Errorf("vehicle = %s/%s, want CS-1/free", v.Location, v.Status)
	}
	if got := f.sup.states[0]; got != model.TaskMovingToPickup {
		t.Errorf("first reported state = %s, want %s", got, model.TaskMovingToPickup)
	}
	if len(gc.moves) != 5 {
		t.Errorf("moves = %d, want 5", len(gc.moves))
	}
}

func TestRunArrivalFailureLeavesVehicleInPlace(t *testing.T) {
	gc := newFakeGC(map[hop][]string{
		{"CS-1", "G11"}: {"CS-1", "T1", "G11"},
	})
	gc.failArrived[hop{"CS-1", "T1"}] = true
	f := newFixture(t, model.KindCatering, "CS-1", gc, nil)

	task := &model.Task{TaskID: "T-1", FlightID: "SU100", Point: "G11", Details: model.TaskDetails{TakeFrom: "CS-1"}}
	err := f.exec.Run(context.Background(), f.vehicle, task)
	if !errors.Is(err, movement.ErrArrivalRejected) {
		t.Fatalf("Run error = %v, want ErrArrivalRejected", err)
	}

	v := f.final(t)
	if v.Location != "CS-1" {
		t.Errorf("location = %s, want CS-1", v.Location)
	}
	if !v.Free() {
		t.Errorf("status = %s, want free", v.Status)
	}
	if f.store.releases != 1 {
		t.Errorf("releases = %d, want 1", f.store.releases)
	}
	if last := f.sup.states[len(f.sup.states)-1]; last != model.TaskFailed {
		t.Errorf("last reported state = %s, want failed", last)
	}
	if f.sup.completed != 0 {
		t.Error("completion reported for a failed task")
	}
	if trip := f.archive.trips[0]; trip.Outcome != model.TaskFailed || trip.Error == "" {
		t.Errorf("trip outcome = %s error = %q", trip.Outcome, trip.Error)
	}
}

func TestRunLoadFailure(t *testing.T) {
	gc := newFakeGC(nil)
	p, _ := pool.New()
	behavior, err := NewBehavior(model.KindCatering, staticMenu{err: errors.New("check-in down")}, p, nil)
	if err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, model.KindCatering, "CS-1", gc, behavior)

	task := &model.Task{TaskID: "T-1", FlightID: "SU100", Point: "G11"}
	if err := f.exec.Run(context.Background(), f.vehicle, task); err == nil {
		t.Fatal("Run succeeded, want load failure")
	}

	if len(gc.paths) != 0 {
		t.Errorf("path requested after failed load: %v", gc.paths)
	}
	if !f.final(t).Free() || f.store.releases != 1 {
		t.Errorf("vehicle not released exactly once (releases=%d)", f.store.releases)
	}
	if diff := cmp.Diff([]model.TaskState{model.TaskLoading, model.TaskFailed}, f.sup.states); diff != "" {
		t.Errorf("reported states mismatch (-want +got):\n%s", diff)
	}
}

func TestRunOverCapacityFails(t *testing.T) {
	gc := newFakeGC(nil)
	f := newFixture(t, model.KindCatering, "CS-1", gc, nil)
	big, err := NewBehavior(model.KindCatering, staticMenu{menu: model.Payload{"fish": 101}}, f.store.Pool, nil)
	if err != nil {
		t.Fatal(err)
	}
	f.exec.behavior = big

	err = f.exec.Run(context.Background(), f.vehicle, &model.Task{TaskID: "T-1", Point: "G11"})
	if !errors.Is(err, pool.ErrOverCapacity) {
		t.Fatalf("Run error = %v, want ErrOverCapacity", err)
	}
}

func TestRunEscortFollowsEveryPoint(t *testing.T) {
	gc := newFakeGC(map[hop][]string{
		{"FS-1", "RW-1"}: {"FS-1", "RW-1"},
		{"RW-1", "P-3"}:  {"RW-1", "T4", "P-3"},
		{"P-3", "FS-1"}:  {"P-3", "FS-1"},
	})
	plane := &follower{}
	behavior, err := NewBehavior(model.KindFollowMe, nil, nil, plane)
	if err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, model.KindFollowMe, "FS-1", gc, behavior)

	task := &model.Task{TaskID: "T-1", FlightID: "SU100", PlaneID: "PL-1", Details: model.TaskDetails{Runway: "RW-1", PlaneParking: "P-3"}}
	if err := f.exec.Run(context.Background(), f.vehicle, task); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if diff := cmp.Diff([]string{"T4", "P-3"}, plane.points); diff != "" {
		t.Errorf("follow points mismatch (-want +got):\n%s", diff)
	}
	if v := f.final(t); v.Location != "FS-1" || v.Payload != nil {
		t.Errorf("vehicle = %+v", v)
	}
}

func TestRunCancelledReleasesVehicle(t *testing.T) {
	gc := newFakeGC(map[hop][]string{
		{"CS-1", "G11"}: {"CS-1", "G11"},
	})
	f := newFixture(t, model.KindCatering, "CS-1", gc, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.exec.Run(ctx, f.vehicle, &model.Task{TaskID: "T-1", Point: "G11", Details: model.TaskDetails{TakeFrom: "CS-1"}})
	if err == nil {
		t.Fatal("Run succeeded on a cancelled context")
	}
	if f.store.releases != 1 || !f.final(t).Free() {
		t.Errorf("vehicle not released exactly once (releases=%d)", f.store.releases)
	}
	if last := f.sup.states[len(f.sup.states)-1]; last != model.TaskFailed {
		t.Errorf("last reported state = %s, want failed", last)
	}
}

func TestNewBehavior(t *testing.T) {
	p, _ := pool.New()
	tests := []struct {
		name     string
		kind     model.Kind
		provider core.PayloadProvider
		wantErr  bool
	}{
		{name: "catering", kind: model.KindCatering, provider: staticMenu{}},
		{name: "catering without provider", kind: model.KindCatering, wantErr: true},
		{name: "followme", kind: model.KindFollowMe},
		{name: "unknown", kind: model.Kind("bus"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBehavior(tt.kind, tt.provider, p, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && b.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", b.Kind(), tt.kind)
			}
		})
	}
}
