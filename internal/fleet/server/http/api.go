package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/fleet/core/movement"
	"github.com/Rus1K7/Airport/internal/fleet/core/pool"
	"github.com/Rus1K7/Airport/pkg/log"
)

// VehicleStore is the vehicle pool as seen by the API.
type VehicleStore interface {
	List() []model.Vehicle
	Get(id string) (model.Vehicle, error)
	Add(v *model.Vehicle) error
	Acquire(id, taskID string) (model.Vehicle, error)
	Release(id string) error
	Load(id string, payload model.Payload) error
	Unload(id string) (model.Payload, error)
}

// Mover drives a vehicle between two nodes.
type Mover interface {
	Traverse(ctx context.Context, vehicleID, from, to string, hooks ...movement.Hook) error
}

// OrderSink stores menu orders pushed by Check-In.
type OrderSink interface {
	Put(flightID string, menu model.Payload)
}

// Registrar places new vehicles on the ground control map.
type Registrar interface {
	Register(ctx context.Context, vehicleIDs, nodes []string) error
}

// API serves the vehicle endpoints of one fleet.
type API struct {
	kind      model.Kind
	vehicles  VehicleStore
	registrar Registrar
	mover     Mover
	orders    OrderSink
}

// NewAPI returns the vehicle API. orders may be nil for escort fleets.
func NewAPI(kind model.Kind, vehicles VehicleStore, registrar Registrar, mover Mover, orders OrderSink) *API {
	return &API{kind: kind, vehicles: vehicles, registrar: registrar, mover: mover, orders: orders}
}

// Register mounts the routes under /v1/{route-prefix}.
func (a *API) Register(r *mux.Router) {
	s := r.PathPrefix("/v1/" + a.kind.Profile().RoutePrefix).Subrouter()

	s.HandleFunc("", a.list).Methods(http.MethodGet)
	s.HandleFunc("/init", a.init).Methods(http.MethodPost)
	s.HandleFunc("/orders", a.putOrder).Methods(http.MethodPost)
	s.HandleFunc("/{id}", a.get).Methods(http.MethodGet)
	s.HandleFunc("/{id}/load-food", a.loadFood).Methods(http.MethodPost)
	s.HandleFunc("/{id}/deliver-food", a.deliverFood).Methods(http.MethodPost)
	s.HandleFunc("/{id}/test-move", a.testMove).Methods(http.MethodPost)
}

type result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error(err, "Failed to write response")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Detail: msg})
}

func ok(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusOK, result{Success: true, Message: fmt.Sprintf(format, args...)})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// lookup writes 404 and returns false when the vehicle is unknown.
func (a *API) lookup(w http.ResponseWriter, id string) (model.Vehicle, bool) {
	v, err := a.vehicles.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("vehicle %s not found", id))
		return model.Vehicle{}, false
	}
	return v, true
}

func (a *API) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.vehicles.List())
}

func (a *API) get(w http.ResponseWriter, r *http.Request) {
	v, found := a.lookup(w, mux.Vars(r)["id"])
	if !found {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type initRequest struct {
	ID       string `json:"id"`
	Location string `json:"location"`
}

func (a *API) init(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" || req.Location == "" {
		writeError(w, http.StatusBadRequest, "id and location are required")
		return
	}
	if _, err := a.vehicles.Get(req.ID); err == nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("vehicle %s already exists", req.ID))
		return
	}

	if err := a.registrar.Register(r.Context(), []string{req.ID}, []string{req.Location}); err != nil {
		log.Error(err, "Ground control rejected vehicle", "vehicle", req.ID, "location", req.Location)
		writeError(w, http.StatusBadGateway, "ground control: "+err.Error())
		return
	}

	// The initial node becomes the vehicle's base.
	if err := a.vehicles.Add(model.NewVehicle(req.ID, a.kind, req.Location)); err != nil {
		if errors.Is(err, pool.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Info("Vehicle initialized", "vehicle", req.ID, "location", req.Location)
	ok(w, "%s %s initialized at %s", a.kind, req.ID, req.Location)
}

type loadRequest struct {
	Menu model.Payload `json:"menu"`
}

func (a *API) loadFood(w http.ResponseWriter, r *http.Request) {
	if !a.kind.Cargo() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s vehicles carry no payload", a.kind))
		return
	}
	id := mux.Vars(r)["id"]
	v, found := a.lookup(w, id)
	if !found {
		return
	}
	if !v.Free() {
		writeError(w, http.StatusConflict, fmt.Sprintf("vehicle %s is busy", id))
		return
	}

	var req loadRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Menu) == 0 {
		writeError(w, http.StatusBadRequest, "menu is required")
		return
	}

	if err := a.vehicles.Load(id, req.Menu); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ok(w, "food loaded into %s", id)
}

type deliverRequest struct {
	PlaneID string `json:"planeId"`
}

func (a *API) deliverFood(w http.ResponseWriter, r *http.Request) {
	if !a.kind.Cargo() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s vehicles carry no payload", a.kind))
		return
	}
	id := mux.Vars(r)["id"]
	v, found := a.lookup(w, id)
	if !found {
		return
	}
	if !v.Free() {
		writeError(w, http.StatusConflict, fmt.Sprintf("vehicle %s is busy", id))
		return
	}

	var req deliverRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PlaneID == "" {
		writeError(w, http.StatusBadRequest, "planeId is required")
		return
	}

	carried, err := a.vehicles.Unload(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Info("Food delivered", "vehicle", id, "plane", req.PlaneID, "meals", carried.Total())
	ok(w, "food delivered to plane %s", req.PlaneID)
}

type orderRequest struct {
	FlightID string        `json:"flightId"`
	Menu     model.Payload `json:"menu"`
}

func (a *API) putOrder(w http.ResponseWriter, r *http.Request) {
	if a.orders == nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s fleet takes no orders", a.kind))
		return
	}

	var req orderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.FlightID == "" || len(req.Menu) == 0 {
		writeError(w, http.StatusBadRequest, "flightId and menu are required")
		return
	}
	if err := req.Menu.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a.orders.Put(req.FlightID, req.Menu)
	log.Info("Menu order stored", "flight", req.FlightID, "meals", req.Menu.Total())
	ok(w, "order for flight %s stored", req.FlightID)
}

type moveRequest struct {
	To string `json:"to_location"`
}

func (a *API) testMove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req moveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.To == "" {
		writeError(w, http.StatusBadRequest, "to_location is required")
		return
	}

	v, err := a.vehicles.Acquire(id, "test-move")
	switch {
	case errors.Is(err, pool.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("vehicle %s not found", id))
		return
	case errors.Is(err, pool.ErrBusy):
		writeError(w, http.StatusConflict, fmt.Sprintf("vehicle %s is busy", id))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer func() {
		if err := a.vehicles.Release(id); err != nil {
			log.Error(err, "Failed to release vehicle after test move", "vehicle", id)
		}
	}()

	if err := a.mover.Traverse(r.Context(), id, v.Location, req.To); err != nil {
		log.Error(err, "Test move failed", "vehicle", id, "to", req.To)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	ok(w, "%s moved to %s", id, req.To)
}
