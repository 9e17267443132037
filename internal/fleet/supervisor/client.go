// Package supervisor notifies the Handling Supervisor, the owner of every task.
package supervisor

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/pkg/httpclient"
	"github.com/Rus1K7/Airport/pkg/options"
)

var _ core.Supervisor = (*Client)(nil)

type Client struct {
	http *httpclient.Client
}

func New(opts *options.ClientOptions) (*Client, error) {
	hc, err := httpclient.New("supervisor", opts, "/v1")
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

type assignRequest struct {
	CarID string `json:"carId"`
}

type stateRequest struct {
	State        model.TaskState `json:"state"`
	StateMessage string          `json:"stateMessage"`
}

func (c *Client) Assign(ctx context.Context, taskID, vehicleID string) error {
	return c.http.Do(ctx, "assign", http.MethodPut, taskPath(taskID, "assign"), nil, assignRequest{CarID: vehicleID}, nil)
}

func (c *Client) UpdateState(ctx context.Context, taskID string, state model.TaskState, message string) error {
	return c.http.Do(ctx, "update_state", http.MethodPut, taskPath(taskID), nil, stateRequest{State: state, StateMessage: message}, nil)
}

func (c *Client) Complete(ctx context.Context, taskID string) error {
	return c.http.Do(ctx, "complete", http.MethodPut, taskPath(taskID, "complete"), nil, nil, nil)
}

func taskPath(taskID string, rest ...string) string {
	p := "tasks/" + url.PathEscape(taskID)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}
