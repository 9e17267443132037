// Package movement drives a vehicle hop by hop along a ground control route.
package movement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/utils/clock"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
	"github.com/Rus1K7/Airport/internal/pkg/metrics"
	"github.com/Rus1K7/Airport/pkg/log"
)

var (
	// ErrNoRoute means ground control returned no usable route.
	ErrNoRoute = errors.New("no route")
	// ErrMoveRejected means the begin-move call failed.
	ErrMoveRejected = errors.New("move rejected")
	// ErrArrivalRejected means the arrival confirmation failed.
	ErrArrivalRejected = errors.New("arrival rejected")
	// ErrPermissionStuck means permission for a hop was refused MaxPermissionAttempts times.
	ErrPermissionStuck = errors.New("move permission never granted")
)

// LocationStore records confirmed vehicle positions.
type LocationStore interface {
	SetLocation(vehicleID, node string) error
}

// Hook observes the hops of one traversal. Either field may be nil.
type Hook struct {
	// BeforeMove runs once permission is granted and before the move starts.
	// Errors are logged and do not stop the traversal.
	BeforeMove func(ctx context.Context, req core.MoveRequest) error

	// Arrived runs after the hop is confirmed and recorded.
	Arrived func(ctx context.Context, hop model.Hop)
}

// Config tunes a Coordinator.
type Config struct {
	Kind        model.Kind
	VehicleType string

	// Backoff paces permission requests. Defaults to Constant{5s}.
	Backoff Backoff

	// MaxPermissionAttempts caps permission requests per hop. Zero is unbounded.
	MaxPermissionAttempts int

	Clock clock.Clock
}

// Coordinator moves vehicles under ground control arbitration.
type Coordinator struct {
	authority core.TrafficAuthority
	store     LocationStore
	notifier  core.Notifier
	cfg       Config
}

// NewCoordinator returns a Coordinator. notifier may be nil.
func NewCoordinator(authority core.TrafficAuthority, store LocationStore, notifier core.Notifier, cfg Config) *Coordinator {
	if cfg.Backoff == nil {
		cfg.Backoff = Constant{Interval: 5 * time.Second}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	if cfg.VehicleType == "" {
		cfg.VehicleType = "car"
	}
	if notifier == nil {
		notifier = core.NopNotifier{}
	}

	return &Coordinator{
		authority: authority,
		store:     store,
		notifier:  notifier,
		cfg:       cfg,
	}
}

// Traverse moves vehicleID from from to to. The vehicle's location is updated
// after every confirmed hop, so on failure it reflects the last node reached.
func (c *Coordinator) Traverse(ctx context.Context, vehicleID, from, to string, hooks ...Hook) (err error) {
	if from == to {
		return nil
	}

	logger := log.FromContext(ctx).WithValues("vehicle", vehicleID, "from", from, "to", to)
	start := c.cfg.Clock.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failed"
		}
		metrics.TraversalDuration.WithLabelValues(c.cfg.Kind.String(), outcome).Observe(c.cfg.Clock.Since(start).Seconds())
	}()

	route, err := c.authority.Path(ctx, vehicleID, from, to)
	if err != nil {
		return fmt.Errorf("%w: %s -> %s: %w", ErrNoRoute, from, to, err)
	}
	if err := validateRoute(route, from, to); err != nil {
		return err
	}

	logger.Info("Route received", "route", route)

	for i := 1; i < len(route); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		req := core.MoveRequest{
			VehicleID:   vehicleID,
			VehicleType: c.cfg.VehicleType,
			From:        route[i-1],
			To:          route[i],
		}
		if err := c.hop(ctx, logger, req, hooks); err != nil {
			return err
		}
	}

	logger.Info("Traversal complete", "hops", len(route)-1)
	return nil
}

func (c *Coordinator) hop(ctx context.Context, logger log.Logger, req core.MoveRequest, hooks []Hook) error {
	if err := c.awaitPermission(ctx, logger, req); err != nil {
		return err
	}

	for _, h := range hooks {
		if h.BeforeMove == nil {
			continue
		}
		if err := h.BeforeMove(ctx, req); err != nil {
			logger.Error(err, "Hop hook failed", "hopFrom", req.From, "hopTo", req.To)
		}
	}

	if err := c.authority.Move(ctx, req); err != nil {
		return fmt.Errorf("%w: %s -> %s: %w", ErrMoveRejected, req.From, req.To, err)
	}
	if err := c.authority.Arrived(ctx, req); err != nil {
		return fmt.Errorf("%w: %s -> %s: %w", ErrArrivalRejected, req.From, req.To, err)
	}

	if err := c.store.SetLocation(req.VehicleID, req.To); err != nil {
		return fmt.Errorf("record location of %s: %w", req.VehicleID, err)
	}
	metrics.HopsTotal.WithLabelValues(c.cfg.Kind.String()).Inc()
	logger.Debug("Hop confirmed", "hopFrom", req.From, "hopTo", req.To)

	hop := model.Hop{VehicleID: req.VehicleID, From: req.From, To: req.To, At: c.cfg.Clock.Now()}
	if err := c.notifier.PublishPosition(ctx, hop); err != nil {
		logger.Warn("Failed to publish position", "error", err)
	}
	for _, h := range hooks {
		if h.Arrived != nil {
			h.Arrived(ctx, hop)
		}
	}
	return nil
}

// awaitPermission polls ground control until the hop is granted.
func (c *Coordinator) awaitPermission(ctx context.Context, logger log.Logger, req core.MoveRequest) error {
	for attempt := 1; ; attempt++ {
		allowed, err := c.authority.MovePermission(ctx, req)
		if err == nil && allowed {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		metrics.PermissionDenials.WithLabelValues(c.cfg.Kind.String()).Inc()
		if limit := c.cfg.MaxPermissionAttempts; limit > 0 && attempt >= limit {
			return fmt.Errorf("%w: %s -> %s after %d attempts", ErrPermissionStuck, req.From, req.To, attempt)
		}

		wait := c.cfg.Backoff.Next(attempt)
		if err != nil {
			logger.Error(err, "Move permission request failed", "hopFrom", req.From, "hopTo", req.To, "attempt", attempt, "retryIn", wait)
		} else {
			logger.Info("Move permission denied", "hopFrom", req.From, "hopTo", req.To, "attempt", attempt, "retryIn", wait)
		}

		if err := Sleep(ctx, c.cfg.Clock, wait); err != nil {
			return err
		}
	}
}

func validateRoute(route []string, from, to string) error {
	switch {
	case len(route) < 2:
		return fmt.Errorf("%w: %s -> %s: route has %d nodes", ErrNoRoute, from, to, len(route))
	case route[0] != from:
		return fmt.Errorf("%w: route starts at %s, vehicle is at %s", ErrNoRoute, route[0], from)
	case route[len(route)-1] != to:
		return fmt.Errorf("%w: route ends at %s, destination is %s", ErrNoRoute, route[len(route)-1], to)
	}
	return nil
}
