package app

import (
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/Rus1K7/Airport/cmd/ground-vehicle/app/options"
	"github.com/Rus1K7/Airport/pkg/app"
)

const (
	commandName = "ground-vehicle"
	commandDesc = `The ground vehicle service owns one fleet of airport vehicles, either
catering trucks or follow-me cars. It takes tasks from the fleet's queue,
drives each vehicle hop by hop under ground control permission and reports
task progress to the handling supervisor.`
)

func NewApp() *app.App {
	opts := options.NewServerOptions()
	application := app.NewApp(
		commandName,
		"Launch an airport ground vehicle fleet",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithWatchConfig(),
		app.WithEnvFile(".env"),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		srv, err := cfg.NewFleetServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create fleet server: %w", err)
		}

		return srv.Run(ctx)
	}
}
