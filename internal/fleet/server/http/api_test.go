package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/fleet/core/movement"
	"github.com/Rus1K7/Airport/internal/fleet/core/pool"
	"github.com/Rus1K7/Airport/pkg/options"
)

type fakeRegistrar struct {
	err   error
	calls int
}

func (f *fakeRegistrar) Register(context.Context, []string, []string) error {
	f.calls++
	return f.err
}

// teleport moves the vehicle straight to the destination.
type teleport struct {
	pool *pool.Pool
	err  error
}

func (m *teleport) Traverse(_ context.Context, id, _, to string, _ ...movement.Hook) error {
	if m.err != nil {
		return m.err
	}
	return m.pool.SetLocation(id, to)
}

type orders map[string]model.Payload

func (o orders) Put(flightID string, menu model.Payload) { o[flightID] = menu }

type env struct {
	handler   http.Handler
	pool      *pool.Pool
	registrar *fakeRegistrar
	mover     *teleport
	orders    orders
	ready     bool
}

func newEnv(t *testing.T, kind model.Kind) *env {
	t.Helper()
	p, err := pool.New(model.NewVehicle("V-1", kind, kind.Profile().BaseLocation))
	if err != nil {
		t.Fatal(err)
	}
	e := &env{pool: p, registrar: &fakeRegistrar{}, mover: &teleport{pool: p}, orders: orders{}, ready: true}
	api := NewAPI(kind, p, e.registrar, e.mover, e.orders)
	e.handler = NewServer(options.NewHttpOptions(), api, func() bool { return e.ready }).Handler()
	return e
}

func (e *env) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestListAndGet(t *testing.T) {
	e := newEnv(t, model.KindCatering)

	rec := e.do(t, http.MethodGet, "/v1/catering-trucks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []model.Vehicle
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "V-1" || list[0].Location != "CS-1" {
		t.Errorf("list = %+v", list)
	}

	if rec := e.do(t, http.MethodGet, "/v1/catering-trucks/V-1", ""); rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/v1/catering-trucks/V-9", ""); rec.Code != http.StatusNotFound {
		t.Errorf("get unknown status = %d, want 404", rec.Code)
	}
}

func TestInit(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		registerErr error
		want        int
	}{
		{name: "ok", body: `{"id":"V-2","location":"CS-2"}`, want: http.StatusOK},
		{name: "missing location", body: `{"id":"V-2"}`, want: http.StatusBadRequest},
		{name: "duplicate", body: `{"id":"V-1","location":"CS-1"}`, want: http.StatusConflict},
		{name: "ground control down", body: `{"id":"V-2","location":"CS-2"}`, registerErr: errors.New("unavailable"), want: http.StatusBadGateway},
		{name: "bad json", body: `{`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, model.KindCatering)
			e.registrar.err = tt.registerErr

			rec := e.do(t, http.MethodPost, "/v1/catering-trucks/init", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want == http.StatusOK {
				v, err := e.pool.Get("V-2")
				if err != nil {
					t.Fatalf("vehicle not added: %v", err)
				}
				if v.Location != "CS-2" || v.BaseLocation != "CS-2" || !v.Free() {
					t.Errorf("vehicle = %+v", v)
				}
			}
			if tt.want == http.StatusBadGateway && e.pool.Len() != 1 {
				t.Error("vehicle added although ground control failed")
			}
		})
	}
}

func TestLoadAndDeliverFood(t *testing.T) {
	e := newEnv(t, model.KindCatering)

	if rec := e.do(t, http.MethodPost, "/v1/catering-trucks/V-1/load-food", `{"menu":{"fish":101}}`); rec.Code != http.StatusBadRequest {
		t.Errorf("over capacity status = %d, want 400", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, "/v1/catering-trucks/V-1/load-food", `{"menu":{"chicken":-100,"pork":150}}`); rec.Code != http.StatusBadRequest {
		t.Errorf("negative quantity status = %d, want 400", rec.Code)
	}
	if v, _ := e.pool.Get("V-1"); v.Payload.Total() != 0 {
		t.Errorf("payload after rejected loads = %v", v.Payload)
	}
	if rec := e.do(t, http.MethodPost, "/v1/catering-trucks/V-1/load-food", `{"menu":{"fish":20,"pork":5}}`); rec.Code != http.StatusOK {
		t.Fatalf("load status = %d (%s)", rec.Code, rec.Body.String())
	}
	if v, _ := e.pool.Get("V-1"); v.Payload.Total() != 25 {
		t.Errorf("payload = %v", v.Payload)
	}

	if rec := e.do(t, http.MethodPost, "/v1/catering-trucks/V-1/deliver-food", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing planeId status = %d, want 400", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, "/v1/catering-trucks/V-1/deliver-food", `{"planeId":"PL-1"}`); rec.Code != http.StatusOK {
		t.Fatalf("deliver status = %d", rec.Code)
	}
	if v, _ := e.pool.Get("V-1"); v.Payload.Total() != 0 {
		t.Errorf("payload after delivery = %v", v.Payload)
	}
}

func TestBusyVehicleRejectsLoad(t *testing.T) {
	e := newEnv(t, model.KindCatering)
	if _, err := e.pool.Acquire("V-1", "T-1"); err != nil {
		t.Fatal(err)
	}

	if rec := e.do(t, http.MethodPost, "/v1/catering-trucks/V-1/load-food", `{"menu":{"fish":1}}`); rec.Code != http.StatusConflict {
		t.Errorf("load status = %d, want 409", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, "/v1/catering-trucks/V-1/test-move", `{"to_location":"G11"}`); rec.Code != http.StatusConflict {
		t.Errorf("test-move status = %d, want 409", rec.Code)
	}
}

func TestEscortFleetHasNoPayload(t *testing.T) {
	e := newEnv(t, model.KindFollowMe)

	if rec := e.do(t, http.MethodPost, "/v1/followme-cars/V-1/load-food", `{"menu":{"fish":1}}`); rec.Code != http.StatusBadRequest {
		t.Errorf("load status = %d, want 400", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/v1/followme-cars", ""); rec.Code != http.StatusOK {
		t.Errorf("list status = %d", rec.Code)
	}
}

func TestOrders(t *testing.T) {
	e := newEnv(t, model.KindCatering)

	if rec := e.do(t, http.MethodPost, "/v1/catering-trucks/orders", `{"flightId":"SU100","menu":{"chicken":2}}`); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := e.orders["SU100"]["chicken"]; got != 2 {
		t.Errorf("stored order = %v", e.orders["SU100"])
	}
	if rec := e.do(t, http.MethodPost, "/v1/catering-trucks/orders", `{"flightId":"SU100"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty menu status = %d, want 400", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, "/v1/catering-trucks/orders", `{"flightId":"SU200","menu":{"fish":-3}}`); rec.Code != http.StatusBadRequest {
		t.Errorf("negative order status = %d, want 400", rec.Code)
	}
	if _, stored := e.orders["SU200"]; stored {
		t.Errorf("invalid order stored: %v", e.orders["SU200"])
	}
}

func TestTestMove(t *testing.T) {
	e := newEnv(t, model.KindCatering)

	rec := e.do(t, http.MethodPost, "/v1/catering-trucks/V-1/test-move", `{"to_location":"G11"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	v, _ := e.pool.Get("V-1")
	if v.Location != "G11" || !v.Free() {
		t.Errorf("vehicle = %s/%s, want G11/free", v.Location, v.Status)
	}

	e.mover.err = errors.New("no route")
	if rec := e.do(t, http.MethodPost, "/v1/catering-trucks/V-1/test-move", `{"to_location":"CS-1"}`); rec.Code != http.StatusBadGateway {
		t.Errorf("failed move status = %d, want 502", rec.Code)
	}
	if v, _ := e.pool.Get("V-1"); !v.Free() {
		t.Error("vehicle left busy after failed test move")
	}
}

func TestHealthEndpoints(t *testing.T) {
	e := newEnv(t, model.KindCatering)

	if rec := e.do(t, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("readyz = %d", rec.Code)
	}
	e.ready = false
	if rec := e.do(t, http.MethodGet, "/readyz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz while not ready = %d, want 503", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/metrics", ""); rec.Code != http.StatusOK {
		t.Errorf("metrics = %d", rec.Code)
	}
}
