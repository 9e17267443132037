// Package groundcontrol is the HTTP client for the Ground Control service,
// which plans routes and arbitrates every hop on the airport map.
package groundcontrol

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/pkg/httpclient"
	"github.com/Rus1K7/Airport/pkg/options"
)

const service = "ground-control"

var _ core.TrafficAuthority = (*Client)(nil)

type Client struct {
	http *httpclient.Client
}

func New(opts *options.ClientOptions) (*Client, error) {
	hc, err := httpclient.New(service, opts, "/v1")
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

type pathResponse struct {
	Path []string `json:"path"`
}

func (c *Client) Path(ctx context.Context, vehicleID, from, to string) ([]string, error) {
	q := url.Values{}
	q.Set("guid", vehicleID)
	q.Set("from", from)
	q.Set("to", to)

	var resp pathResponse
	if err := c.http.Do(ctx, "path", http.MethodGet, "map/path", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Path, nil
}

type permissionResponse struct {
	Allowed bool `json:"allowed"`
}

func (c *Client) MovePermission(ctx context.Context, req core.MoveRequest) (bool, error) {
	q := url.Values{}
	q.Set("guid", req.VehicleID)
	q.Set("vehicleType", req.VehicleType)
	q.Set("from", req.From)
	q.Set("to", req.To)

	var resp permissionResponse
	if err := c.http.Do(ctx, "move_permission", http.MethodGet, "vehicles/move_permission", q, nil, &resp); err != nil {
		return false, err
	}
	return resp.Allowed, nil
}

func (c *Client) Move(ctx context.Context, req core.MoveRequest) error {
	return c.http.Do(ctx, "move", http.MethodPost, "vehicles/move", nil, req, nil)
}

func (c *Client) Arrived(ctx context.Context, req core.MoveRequest) error {
	return c.http.Do(ctx, "arrived", http.MethodPost, "vehicles/arrived", nil, req, nil)
}

type initRequest struct {
	Vehicles []string `json:"vehicles"`
	Nodes    []string `json:"nodes"`
}

func (c *Client) Register(ctx context.Context, vehicleIDs, nodes []string) error {
	return c.http.Do(ctx, "init", http.MethodPost, "vehicles/init", nil, initRequest{Vehicles: vehicleIDs, Nodes: nodes}, nil)
}
