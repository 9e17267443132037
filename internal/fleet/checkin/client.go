// Package checkin provides the meal orders a catering truck loads for a flight.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/pkg/httpclient"
	"github.com/Rus1K7/Airport/pkg/options"
)

// ErrNoOrder means the provider has no menu for the flight.
var ErrNoOrder = errors.New("no menu order for flight")

var _ core.PayloadProvider = (*Client)(nil)

// Client asks the Check-In service for a flight's menu summary.
type Client struct {
	http *httpclient.Client
}

func New(opts *options.ClientOptions) (*Client, error) {
	hc, err := httpclient.New("checkin", opts, "/v1")
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

type menuResponse struct {
	FlightID    string        `json:"flightId"`
	Menu        model.Payload `json:"menu"`
	MenuSummary model.Payload `json:"menuSummary"`
}

func (c *Client) Menu(ctx context.Context, flightID string) (model.Payload, error) {
	if flightID == "" {
		return nil, fmt.Errorf("%w: empty flight id", ErrNoOrder)
	}

	var resp menuResponse
	path := "checkin/flights/" + url.PathEscape(flightID) + "/menu"
	if err := c.http.Do(ctx, "menu", http.MethodGet, path, nil, nil, &resp); err != nil {
		if httpclient.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w %s: %w", ErrNoOrder, flightID, err)
		}
		return nil, err
	}

	menu := resp.Menu
	if menu == nil {
		menu = resp.MenuSummary
	}
	if menu == nil {
		return nil, fmt.Errorf("%w %s: empty response", ErrNoOrder, flightID)
	}
	return menu, nil
}
