package options

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*MovementOptions)(nil)

// Backoff policies understood by the movement coordinator.
var backoffPolicies = []string{"constant", "exponential"}

// MovementOptions tunes how vehicles wait for move permission.
type MovementOptions struct {
	// PermissionInterval is the wait after a denied permission request, and
	// the first wait of an exponential policy.
	PermissionInterval time.Duration `json:"permission-interval" mapstructure:"permission-interval"`

	// MaxPermissionAttempts caps permission requests per hop. Zero waits forever.
	MaxPermissionAttempts int `json:"max-permission-attempts" mapstructure:"max-permission-attempts"`

	BackoffPolicy string        `json:"backoff-policy" mapstructure:"backoff-policy"`
	MaxInterval   time.Duration `json:"max-interval" mapstructure:"max-interval"`
}

func NewMovementOptions() *MovementOptions {
	return &MovementOptions{
		PermissionInterval: 5 * time.Second,
		BackoffPolicy:      "constant",
		MaxInterval:        time.Minute,
	}
}

func (o *MovementOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.PermissionInterval <= 0 {
		errors = append(errors, fmt.Errorf("movement.permission-interval must be positive"))
	}
	if o.MaxPermissionAttempts < 0 {
		errors = append(errors, fmt.Errorf("movement.max-permission-attempts must not be negative"))
	}
	if !slices.Contains(backoffPolicies, o.BackoffPolicy) {
		errors = append(errors, fmt.Errorf("movement.backoff-policy must be one of %v", backoffPolicies))
	}
	if o.BackoffPolicy == "exponential" && o.MaxInterval < o.PermissionInterval {
		errors = append(errors, fmt.Errorf("movement.max-interval must not be below movement.permission-interval"))
	}

	return errors
}

func (o *MovementOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.DurationVar(&o.PermissionInterval, flagName("movement.permission-interval", prefixes), o.PermissionInterval, "Wait between move permission requests.")
	fs.IntVar(&o.MaxPermissionAttempts, flagName("movement.max-permission-attempts", prefixes), o.MaxPermissionAttempts, "Permission requests per hop before the task fails (0 = unbounded).")
	fs.StringVar(&o.BackoffPolicy, flagName("movement.backoff-policy", prefixes), o.BackoffPolicy, "Permission retry policy: constant or exponential.")
	fs.DurationVar(&o.MaxInterval, flagName("movement.max-interval", prefixes), o.MaxInterval, "Longest wait of the exponential policy.")
}
