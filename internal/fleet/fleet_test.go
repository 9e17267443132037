package fleet

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
)

type registerOnly struct {
	core.TrafficAuthority
	failures int
	calls    int
	ids      []string
	nodes    []string
}

func (r *registerOnly) Register(_ context.Context, ids, nodes []string) error {
	r.calls++
	if r.calls <= r.failures {
		return errors.New("ground control starting")
	}
	r.ids, r.nodes = ids, nodes
	return nil
}

func TestRegisterVehicles(t *testing.T) {
	vehicles := []model.Vehicle{
		*model.NewVehicle("CT-1", model.KindCatering, "CS-1"),
		*model.NewVehicle("CT-2", model.KindCatering, "CS-2"),
	}
	gc := &registerOnly{failures: 1}
	clk := clocktesting.NewFakeClock(time.Now())

	done := make(chan error, 1)
	go func() { done <- registerVehicles(context.Background(), gc, vehicles, clk) }()

	for !clk.HasWaiters() {
		time.Sleep(time.Millisecond)
	}
	clk.Step(registerInterval)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("registerVehicles: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("registerVehicles did not retry")
	}

	if gc.calls != 2 {
		t.Errorf("calls = %d, want 2", gc.calls)
	}
	if diff := cmp.Diff([]string{"CT-1", "CT-2"}, gc.ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"CS-1", "CS-2"}, gc.nodes); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterVehiclesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gc := &registerOnly{failures: registerAttempts}
	err := registerVehicles(ctx, gc, nil, clocktesting.NewFakeClock(time.Now()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if gc.calls != 1 {
		t.Errorf("calls = %d, want 1", gc.calls)
	}
}
