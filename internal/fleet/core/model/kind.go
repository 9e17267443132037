package model

import "fmt"

// Kind is the tagged variant that selects a vehicle's behaviour.
type Kind string

const (
	// KindCatering is a cargo vehicle that loads meals and delivers them to a plane.
	KindCatering Kind = "catering"
	// KindFollowMe escorts a plane from the runway to its parking and carries nothing.
	KindFollowMe Kind = "followme"
)

// Profile holds the per-kind defaults.
type Profile struct {
	IDPrefix     string
	BaseLocation string
	Capacity     int
	Cargo        bool
	RoutePrefix  string
	Queue        string
}

var profiles = map[Kind]Profile{
	KindCatering: {
		IDPrefix:     "CT",
		BaseLocation: "CS-1",
		Capacity:     100,
		Cargo:        true,
		RoutePrefix:  "catering-trucks",
		Queue:        "tasks.catering",
	},
	KindFollowMe: {
		IDPrefix:     "FM",
		BaseLocation: "FS-1",
		Cargo:        false,
		RoutePrefix:  "followme-cars",
		Queue:        "tasks.followMe",
	},
}

// ParseKind validates s as a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := profiles[k]; !ok {
		return "", fmt.Errorf("unknown vehicle kind %q, must be %q or %q", s, KindCatering, KindFollowMe)
	}
	return k, nil
}

// Profile returns the defaults for k. Unknown kinds get a zero Profile.
func (k Kind) Profile() Profile {
	return profiles[k]
}

// Cargo reports whether vehicles of this kind carry a payload.
func (k Kind) Cargo() bool {
	return profiles[k].Cargo
}

func (k Kind) String() string {
	return string(k)
}
