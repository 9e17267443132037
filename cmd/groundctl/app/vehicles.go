package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/pkg/httpclient"
	"github.com/Rus1K7/Airport/pkg/options"
)

// vehicleClient calls the vehicle endpoints of one fleet.
type vehicleClient struct {
	c *httpclient.Client
}

type result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func newVehicleClient(g *globalOptions) (*vehicleClient, error) {
	kind, err := g.kind()
	if err != nil {
		return nil, err
	}
	opts := options.NewClientOptions("ground-vehicle", g.Server)
	opts.Timeout = g.Timeout
	if errs := opts.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}

	c, err := httpclient.New("ground-vehicle", opts, "/v1/"+kind.Profile().RoutePrefix)
	if err != nil {
		return nil, err
	}
	return &vehicleClient{c: c}, nil
}

func (v *vehicleClient) List(ctx context.Context) ([]model.Vehicle, error) {
	var out []model.Vehicle
	if err := v.c.Do(ctx, "list", http.MethodGet, "", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (v *vehicleClient) Get(ctx context.Context, id string) (model.Vehicle, error) {
	var out model.Vehicle
	if err := v.c.Do(ctx, "get", http.MethodGet, id, nil, nil, &out); err != nil {
		if httpclient.IsStatus(err, http.StatusNotFound) {
			return model.Vehicle{}, fmt.Errorf("vehicle %s not found", id)
		}
		return model.Vehicle{}, err
	}
	return out, nil
}

func (v *vehicleClient) Move(ctx context.Context, id, to string) (string, error) {
	var out result
	body := map[string]string{"to_location": to}
	if err := v.c.Do(ctx, "test_move", http.MethodPost, id+"/test-move", nil, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func newVehiclesCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vehicles",
		Aliases: []string{"vehicle", "v"},
		Short:   "Inspect and move the vehicles of a fleet",
	}
	cmd.AddCommand(
		newVehiclesListCommand(g),
		newVehiclesGetCommand(g),
		newVehiclesMoveCommand(g),
	)
	return cmd
}

func newVehiclesListCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the vehicles of the fleet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutput(g.Output); err != nil {
				return err
			}
			client, err := newVehicleClient(g)
			if err != nil {
				return err
			}
			vehicles, err := client.List(cmd.Context())
			if err != nil {
				return err
			}
			return printVehicles(cmd.OutOrStdout(), g.Output, vehicles)
		},
	}
}

func newVehiclesGetCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one vehicle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(g.Output); err != nil {
				return err
			}
			client, err := newVehicleClient(g)
			if err != nil {
				return err
			}
			v, err := client.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printVehicles(cmd.OutOrStdout(), g.Output, []model.Vehicle{v})
		},
	}
}

func newVehiclesMoveCommand(g *globalOptions) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "move ID --to NODE",
		Short: "Drive an idle vehicle to a node under ground control",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newVehicleClient(g)
			if err != nil {
				return err
			}
			msg, err := client.Move(cmd.Context(), args[0], to)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return err
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Destination node.")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
