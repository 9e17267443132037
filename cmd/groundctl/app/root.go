// Package app implements groundctl, the operator CLI of the ground vehicle service.
package app

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rus1K7/Airport/internal/fleet/core/model"
)

const envPrefix = "GROUNDCTL"

// globalOptions are shared by every subcommand.
type globalOptions struct {
	Server  string
	Kind    string
	Output  string
	Timeout time.Duration
}

func (g *globalOptions) kind() (model.Kind, error) {
	return model.ParseKind(g.Kind)
}

// NewCommand returns the groundctl root command. Persistent flags may also be
// set through GROUNDCTL_* environment variables.
func NewCommand() *cobra.Command {
	g := &globalOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "groundctl",
		Short:         "Operate airport ground vehicles",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			g.Server = v.GetString("server")
			g.Kind = v.GetString("kind")
			g.Output = v.GetString("output")
			g.Timeout = v.GetDuration("timeout")
			return nil
		},
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	fs := cmd.PersistentFlags()
	fs.StringVar(&g.Server, "server", "http://localhost:8080", "Base URL of the ground vehicle service.")
	fs.StringVar(&g.Kind, "kind", string(model.KindCatering), "Fleet kind: catering or followme.")
	fs.StringVarP(&g.Output, "output", "o", outputTable, "Output format: table, json or yaml.")
	fs.DurationVar(&g.Timeout, "timeout", 10*time.Second, "Timeout of each request.")

	cmd.AddCommand(
		newVehiclesCommand(g),
		newTasksCommand(g),
		newTelemetryCommand(),
	)
	return cmd
}
