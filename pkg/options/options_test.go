package options

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"0.0.0.0:8080", false},
		{":9090", false},
		{"localhost:1", false},
		{"localhost", true},
		{"host:port", true},
		{"host:70000", true},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%q) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
			}
		})
	}
}

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    *ClientOptions
		wantErr int
	}{
		{"valid", NewClientOptions("ground-control", "http://gc.local"), 0},
		{"required but empty", NewClientOptions("supervisor", ""), 1},
		{"optional and empty", NewClientOptions("plane", "").Optional(), 0},
		{"wrong scheme", NewClientOptions("check-in", "ftp://ci.local"), 1},
		{"zero timeout", &ClientOptions{BaseURL: "http://x.local", name: "x"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.opts.Validate()); got != tt.wantErr {
				t.Errorf("Validate() returned %d errors, want %d", got, tt.wantErr)
			}
		})
	}
}

func TestClientOptionsFlagPrefix(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o := NewClientOptions("supervisor", "http://hs.local")
	o.AddFlags(fs)

	if err := fs.Parse([]string{"--supervisor.base-url=http://other.local", "--supervisor.timeout=3s"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if o.BaseURL != "http://other.local" {
		t.Errorf("BaseURL = %q", o.BaseURL)
	}
	if o.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", o.Timeout)
	}
}

func TestAmqpOptionsValidate(t *testing.T) {
	o := NewAmqpOptions()
	if errs := o.Validate(); len(errs) != 0 {
		t.Fatalf("defaults invalid: %v", errs)
	}

	o.URL = "http://rabbit.local"
	o.Prefetch = -1
	if got := len(o.Validate()); got != 2 {
		t.Errorf("Validate() returned %d errors, want 2", got)
	}
}

func TestAmqpOptionsNonDurableQueue(t *testing.T) {
	o := NewAmqpOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	if !o.Durable {
		t.Fatal("queues are not durable by default")
	}
	if err := fs.Parse([]string{"--amqp.durable=false"}); err != nil {
		t.Fatal(err)
	}
	if cfg := o.ToConfig("tasks.followMe"); cfg.Durable || cfg.Queue != "tasks.followMe" {
		t.Errorf("ToConfig() = queue %q durable %v, want tasks.followMe non-durable", cfg.Queue, cfg.Durable)
	}
}

func TestMovementOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *MovementOptions)
		want   int
	}{
		{name: "defaults", mutate: func(*MovementOptions) {}},
		{name: "exponential", mutate: func(o *MovementOptions) { o.BackoffPolicy = "exponential" }},
		{name: "unknown policy", mutate: func(o *MovementOptions) { o.BackoffPolicy = "linear" }, want: 1},
		{name: "zero interval", mutate: func(o *MovementOptions) { o.PermissionInterval = 0 }, want: 1},
		{name: "negative cap", mutate: func(o *MovementOptions) { o.MaxPermissionAttempts = -1 }, want: 1},
		{
			name: "max below interval",
			mutate: func(o *MovementOptions) {
				o.BackoffPolicy = "exponential"
				o.MaxInterval = time.Second
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewMovementOptions()
			tt.mutate(o)
			if got := len(o.Validate()); got != tt.want {
				t.Errorf("Validate() returned %d errors, want %d: %v", got, tt.want, o.Validate())
			}
		})
	}
}

func TestMovementOptionsFlags(t *testing.T) {
	o := NewMovementOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	if err := fs.Parse([]string{"--movement.max-permission-attempts=12", "--movement.permission-interval=2s"}); err != nil {
		t.Fatal(err)
	}
	if o.MaxPermissionAttempts != 12 || o.PermissionInterval != 2*time.Second {
		t.Errorf("parsed options = %+v", o)
	}
}
