package options

import (
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/Rus1K7/Airport/internal/fleet"
	"github.com/Rus1K7/Airport/pkg/app"
	"github.com/Rus1K7/Airport/pkg/log"
	"github.com/Rus1K7/Airport/pkg/options"
)

// ServerOptions holds every setting of the ground vehicle service.
type ServerOptions struct {
	Fleet    *fleet.FleetOptions      `json:"fleet" mapstructure:"fleet"`
	Http     *options.HttpOptions     `json:"http" mapstructure:"http"`
	Amqp     *options.AmqpOptions     `json:"amqp" mapstructure:"amqp"`
	Mqtt     *options.MqttOptions     `json:"mqtt" mapstructure:"mqtt"`
	S3       *options.S3Options       `json:"s3" mapstructure:"s3"`
	Movement *options.MovementOptions `json:"movement" mapstructure:"movement"`

	GroundControl *options.ClientOptions `json:"ground-control" mapstructure:"ground-control"`
	Supervisor    *options.ClientOptions `json:"supervisor" mapstructure:"supervisor"`
	CheckIn       *options.ClientOptions `json:"check-in" mapstructure:"check-in"`
	Plane         *options.ClientOptions `json:"plane" mapstructure:"plane"`

	Log *log.Options `json:"log" mapstructure:"log"`
}

var (
	_ app.NamedFlagSetOptions = (*ServerOptions)(nil)
	_ app.LogOptionsGetter    = (*ServerOptions)(nil)
)

func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		Fleet:         fleet.NewFleetOptions(),
		Http:          options.NewHttpOptions(),
		Amqp:          options.NewAmqpOptions(),
		Mqtt:          options.NewMqttOptions(),
		S3:            options.NewS3Options(),
		Movement:      options.NewMovementOptions(),
		GroundControl: options.NewClientOptions("ground-control", "http://localhost:8081"),
		Supervisor:    options.NewClientOptions("supervisor", "http://localhost:8082"),
		CheckIn:       options.NewClientOptions("check-in", "").Optional(),
		Plane:         options.NewClientOptions("plane", "").Optional(),
		Log:           log.NewOptions(),
	}
}

func (o *ServerOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.Fleet.AddFlags(fss.FlagSet("fleet"))
	o.Movement.AddFlags(fss.FlagSet("movement"))
	o.Http.AddFlags(fss.FlagSet("http"))
	o.Amqp.AddFlags(fss.FlagSet("amqp"))
	o.Mqtt.AddFlags(fss.FlagSet("mqtt"))
	o.S3.AddFlags(fss.FlagSet("s3"))

	clients := fss.FlagSet("collaborators")
	o.GroundControl.AddFlags(clients)
	o.Supervisor.AddFlags(clients)
	o.CheckIn.AddFlags(clients)
	o.Plane.AddFlags(clients)

	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *ServerOptions) Complete() error {
	return nil
}

func (o *ServerOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.Fleet.Validate()...)
	errs = append(errs, o.Movement.Validate()...)
	errs = append(errs, o.Http.Validate()...)
	errs = append(errs, o.Amqp.Validate()...)
	errs = append(errs, o.Mqtt.Validate()...)
	errs = append(errs, o.S3.Validate()...)
	errs = append(errs, o.GroundControl.Validate()...)
	errs = append(errs, o.Supervisor.Validate()...)
	errs = append(errs, o.CheckIn.Validate()...)
	errs = append(errs, o.Plane.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *ServerOptions) LogOptions() *log.Options {
	return o.Log
}

func (o *ServerOptions) Config() (*fleet.Config, error) {
	return &fleet.Config{
		FleetOptions:    o.Fleet,
		HttpOptions:     o.Http,
		AmqpOptions:     o.Amqp,
		MqttOptions:     o.Mqtt,
		S3Options:       o.S3,
		MovementOptions: o.Movement,
		GroundControl:   o.GroundControl,
		Supervisor:      o.Supervisor,
		CheckIn:         o.CheckIn,
		Plane:           o.Plane,
	}, nil
}
