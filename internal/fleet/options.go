package fleet

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Rus1K7/Airport/internal/fleet/core/model"
)

// FleetOptions describes the vehicles this process owns.
type FleetOptions struct {
	// Kind selects the vehicle behaviour: catering or followme.
	Kind string `json:"kind" mapstructure:"kind"`

	// VehicleType is the type reported to ground control with every hop.
	VehicleType string `json:"vehicle-type" mapstructure:"vehicle-type"`

	// Vehicles lists the vehicles as ID@BASE. When empty, Size vehicles are
	// created at the kind's default base.
	Vehicles []string `json:"vehicles" mapstructure:"vehicles"`
	Size     int      `json:"size" mapstructure:"size"`

	// Capacity overrides the kind's default payload capacity when positive.
	Capacity int `json:"capacity" mapstructure:"capacity"`

	// RegisterOnStart places the vehicles on the ground control map at startup.
	RegisterOnStart bool `json:"register-on-start" mapstructure:"register-on-start"`
}

func NewFleetOptions() *FleetOptions {
	return &FleetOptions{
		Kind:            string(model.KindCatering),
		VehicleType:     "car",
		Size:            2,
		RegisterOnStart: true,
	}
}

func (o *FleetOptions) Validate() []error {
	errs := []error{}

	if _, err := model.ParseKind(o.Kind); err != nil {
		errs = append(errs, fmt.Errorf("fleet.kind: %w", err))
	}
	if o.VehicleType == "" {
		errs = append(errs, fmt.Errorf("fleet.vehicle-type must not be empty"))
	}
	if len(o.Vehicles) == 0 && o.Size <= 0 {
		errs = append(errs, fmt.Errorf("fleet.size must be positive when fleet.vehicles is empty"))
	}
	if o.Capacity < 0 {
		errs = append(errs, fmt.Errorf("fleet.capacity must not be negative"))
	}
	if _, err := o.parseVehicles(model.KindCatering); err != nil {
		errs = append(errs, err)
	}

	return errs
}

func (o *FleetOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Kind, "fleet.kind", o.Kind, "Vehicle kind of this fleet: catering or followme.")
	fs.StringVar(&o.VehicleType, "fleet.vehicle-type", o.VehicleType, "Vehicle type sent to ground control.")
	fs.StringSliceVar(&o.Vehicles, "fleet.vehicles", o.Vehicles, "Vehicles as ID@BASE, e.g. CT-1@CS-1,CT-2@CS-2.")
	fs.IntVar(&o.Size, "fleet.size", o.Size, "Number of vehicles to create when --fleet.vehicles is empty.")
	fs.IntVar(&o.Capacity, "fleet.capacity", o.Capacity, "Payload capacity per vehicle (0 = kind default).")
	fs.BoolVar(&o.RegisterOnStart, "fleet.register-on-start", o.RegisterOnStart, "Register the vehicles with ground control at startup.")
}

// Build returns the fleet kind and its vehicles.
func (o *FleetOptions) Build() (model.Kind, []*model.Vehicle, error) {
	kind, err := model.ParseKind(o.Kind)
	if err != nil {
		return "", nil, err
	}

	vehicles, err := o.parseVehicles(kind)
	if err != nil {
		return "", nil, err
	}
	if len(vehicles) == 0 {
		profile := kind.Profile()
		for i := 1; i <= o.Size; i++ {
			vehicles = append(vehicles, model.NewVehicle(fmt.Sprintf("%s-%d", profile.IDPrefix, i), kind, profile.BaseLocation))
		}
	}

	if o.Capacity > 0 && kind.Cargo() {
		for _, v := range vehicles {
			v.Capacity = o.Capacity
		}
	}
	return kind, vehicles, nil
}

func (o *FleetOptions) parseVehicles(kind model.Kind) ([]*model.Vehicle, error) {
	vehicles := make([]*model.Vehicle, 0, len(o.Vehicles))
	seen := map[string]bool{}
	for _, entry := range o.Vehicles {
		id, base, found := strings.Cut(strings.TrimSpace(entry), "@")
		if !found || id == "" || base == "" {
			return nil, fmt.Errorf("fleet.vehicles: %q is not ID@BASE", entry)
		}
		if seen[id] {
			return nil, fmt.Errorf("fleet.vehicles: duplicate vehicle %s", id)
		}
		seen[id] = true
		vehicles = append(vehicles, model.NewVehicle(id, kind, base))
	}
	return vehicles, nil
}
