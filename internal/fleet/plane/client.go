// Package plane tells an escorted plane which point to taxi to next.
package plane

import (
	"context"
	"net/http"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/pkg/httpclient"
	"github.com/Rus1K7/Airport/pkg/options"
)

var _ core.EscortTarget = (*Client)(nil)

type Client struct {
	http *httpclient.Client
}

func New(opts *options.ClientOptions) (*Client, error) {
	hc, err := httpclient.New("plane", opts, "/v1")
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

type followRequest struct {
	GUID  string `json:"guid"`
	Point string `json:"point"`
}

// Follow asks the plane to follow vehicleID to point.
func (c *Client) Follow(ctx context.Context, vehicleID, point string) error {
	return c.http.Do(ctx, "follow", http.MethodPost, "follow", nil, followRequest{GUID: vehicleID, Point: point}, nil)
}
