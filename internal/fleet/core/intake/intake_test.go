package intake

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/fleet/core/pool"
)

// fakeRunner releases the vehicle like the real executor does.
type fakeRunner struct {
	pool *pool.Pool
	err  error

	mu   sync.Mutex
	runs []string
}

func (r *fakeRunner) Run(_ context.Context, v model.Vehicle, task *model.Task) error {
	r.mu.Lock()
	r.runs = append(r.runs, v.ID+"/"+task.TaskID)
	r.mu.Unlock()
	if err := r.pool.Release(v.ID); err != nil {
		return err
	}
	return r.err
}

type assignRecorder struct {
	assigned map[string]string
	err      error
}

func (a *assignRecorder) Assign(_ context.Context, taskID, vehicleID string) error {
	if a.assigned == nil {
		a.assigned = map[string]string{}
	}
	a.assigned[taskID] = vehicleID
	return a.err
}
func (a *assignRecorder) UpdateState(context.Context, string, model.TaskState, string) error {
	return nil
}
func (a *assignRecorder) Complete(context.Context, string) error { return nil }

func newPool(t *testing.T, ids ...string) *pool.Pool {
	t.Helper()
	var vs []*model.Vehicle
	for _, id := range ids {
		vs = append(vs, model.NewVehicle(id, model.KindCatering, "CS-1"))
	}
	p, err := pool.New(vs...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		vehicles  []string
		busy      []string
		runErr    error
		assignErr error
		want      Outcome
		wantRun   string
	}{
		{
			name: "malformed json is acked",
			body: `{"taskId":`,
			want: Ack,
		},
		{
			name:     "missing destination is acked",
			body:     `{"taskId":"T-1","flightId":"SU1"}`,
			vehicles: []string{"CT-1"},
			want:     Ack,
		},
		{
			name:     "success is acked",
			body:     `{"taskId":"T-1","flightId":"SU1","point":"G11","details":{"takeFrom":"CS-1"}}`,
			vehicles: []string{"CT-1"},
			want:     Ack,
			wantRun:  "CT-1/T-1",
		},
		{
			name:      "supervisor failure does not block",
			body:      `{"taskId":"T-1","flightId":"SU1","point":"G11"}`,
			vehicles:  []string{"CT-1"},
			assignErr: errors.New("supervisor down"),
			want:      Ack,
			wantRun:   "CT-1/T-1",
		},
		{
			name:     "no free vehicle is requeued",
			body:     `{"taskId":"T-1","flightId":"SU1","point":"G11"}`,
			vehicles: []string{"CT-1"},
			busy:     []string{"CT-1"},
			want:     Requeue,
		},
		{
			name:     "executor failure is requeued",
			body:     `{"taskId":"T-1","flightId":"SU1","point":"G11"}`,
			vehicles: []string{"CT-1"},
			runErr:   errors.New("arrived rejected"),
			want:     Requeue,
			wantRun:  "CT-1/T-1",
		},
		{
			name:     "named vehicle is used",
			body:     `{"taskId":"T-1","carId":"CT-2","flightId":"SU1","point":"G11"}`,
			vehicles: []string{"CT-1", "CT-2"},
			want:     Ack,
			wantRun:  "CT-2/T-1",
		},
		{
			name:     "named busy vehicle is requeued",
			body:     `{"taskId":"T-1","carId":"CT-2","flightId":"SU1","point":"G11"}`,
			vehicles: []string{"CT-1", "CT-2"},
			busy:     []string{"CT-2"},
			want:     Requeue,
		},
		{
			name:     "unknown vehicle falls back to any free one",
			body:     `{"taskId":"T-1","carId":"CT-9","flightId":"SU1","point":"G11"}`,
			vehicles: []string{"CT-1"},
			want:     Ack,
			wantRun:  "CT-1/T-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPool(t, tt.vehicles...)
			for _, id := range tt.busy {
				if _, err := p.Acquire(id, "other"); err != nil {
					t.Fatal(err)
				}
			}
			runner := &fakeRunner{pool: p, err: tt.runErr}
			sup := &assignRecorder{err: tt.assignErr}

			got := New(p, runner, sup).Handle(context.Background(), []byte(tt.body))
			if got != tt.want {
				t.Errorf("Handle() = %s, want %s", got, tt.want)
			}

			switch {
			case tt.wantRun == "" && len(runner.runs) != 0:
				t.Errorf("unexpected runs %v", runner.runs)
			case tt.wantRun != "" && (len(runner.runs) != 1 || runner.runs[0] != tt.wantRun):
				t.Errorf("runs = %v, want [%s]", runner.runs, tt.wantRun)
			}
			if tt.wantRun != "" && sup.assigned["T-1"] == "" {
				t.Error("assignment was not reported")
			}

			for _, v := range p.List() {
				if v.Free() == slices.Contains(tt.busy, v.ID) {
					t.Errorf("vehicle %s status = %s after Handle", v.ID, v.Status)
				}
			}
		})
	}
}

func TestHandleConcurrentTasksNeverShareVehicle(t *testing.T) {
	p := newPool(t, "CT-1", "CT-2")
	block := make(chan struct{})
	runner := &blockingRunner{pool: p, block: block, inFlight: map[string]int{}, peak: map[string]int{}}
	in := New(p, runner, nil)

	results := make(chan Outcome, 3)
	for _, id := range []string{"T-1", "T-2", "T-3"} {
		id := id
		go func() {
			results <- in.Handle(context.Background(), []byte(`{"taskId":"`+id+`","point":"G11"}`))
		}()
	}

	// Both vehicles stay reserved until block closes, so the first message
	// to settle is the one that found no vehicle.
	if first := <-results; first != Requeue {
		t.Fatalf("first outcome = %v, want requeue while both vehicles are held", first)
	}
	close(block)

	for i := 0; i < 2; i++ {
		if o := <-results; o != Ack {
			t.Errorf("outcome after unblocking = %v, want ack", o)
		}
	}
	for id, n := range runner.peak {
		if n > 1 {
			t.Errorf("vehicle %s ran %d tasks concurrently", id, n)
		}
	}
	if len(runner.peak) != 2 {
		t.Errorf("vehicles used = %v, want both", runner.peak)
	}
}

// blockingRunner holds every run until block closes and records the
// highest number of simultaneous runs seen on each vehicle.
type blockingRunner struct {
	pool  *pool.Pool
	block chan struct{}

	mu       sync.Mutex
	inFlight map[string]int
	peak     map[string]int
}

func (r *blockingRunner) Run(_ context.Context, v model.Vehicle, _ *model.Task) error {
	r.mu.Lock()
	r.inFlight[v.ID]++
	r.peak[v.ID] = max(r.peak[v.ID], r.inFlight[v.ID])
	r.mu.Unlock()

	<-r.block

	r.mu.Lock()
	r.inFlight[v.ID]--
	r.mu.Unlock()
	return r.pool.Release(v.ID)
}
