package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*ClientOptions)(nil)

// ClientOptions configures an outbound HTTP client for one collaborator.
// The same type is registered several times under different prefixes.
type ClientOptions struct {
	// BaseURL of the collaborator, without the API version segment.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// Timeout bounds every request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// Optional clients may be left without a base URL.
	optional bool
	name     string
}

// NewClientOptions returns options for the collaborator name.
func NewClientOptions(name, baseURL string) *ClientOptions {
	return &ClientOptions{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
		name:    name,
	}
}

// Optional marks the client as one that may be disabled with an empty base URL.
func (o *ClientOptions) Optional() *ClientOptions {
	o.optional = true
	return o
}

// Enabled reports whether a base URL is configured.
func (o *ClientOptions) Enabled() bool {
	return o != nil && o.BaseURL != ""
}

func (o *ClientOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.BaseURL == "" {
		if !o.optional {
			errors = append(errors, fmt.Errorf("%s.base-url is required", o.name))
		}
		return errors
	}
	if err := ValidateURL(o.BaseURL, "http", "https"); err != nil {
		errors = append(errors, fmt.Errorf("%s.base-url: %w", o.name, err))
	}
	if o.Timeout <= 0 {
		errors = append(errors, fmt.Errorf("%s.timeout must be positive", o.name))
	}

	return errors
}

// AddFlags registers "<prefix>.base-url" and "<prefix>.timeout". Without a
// prefix the collaborator name is used.
func (o *ClientOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	if len(prefixes) == 0 {
		prefixes = []string{o.name}
	}
	fs.StringVar(&o.BaseURL, flagName("base-url", prefixes), o.BaseURL, fmt.Sprintf("Base URL of the %s service.", o.name))
	fs.DurationVar(&o.Timeout, flagName("timeout", prefixes), o.Timeout, fmt.Sprintf("Request timeout for calls to the %s service.", o.name))
}
