package checkin

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/Rus1K7/Airport/internal/fleet/core"
	"github.com/Rus1K7/Airport/internal/fleet/core/model"
)

var _ core.PayloadProvider = (*OrderBook)(nil)

// OrderBook holds menu orders pushed by Check-In, one per flight.
type OrderBook struct {
	mu     sync.RWMutex
	orders map[string]model.Payload
}

func NewOrderBook() *OrderBook {
	return &OrderBook{orders: make(map[string]model.Payload)}
}

// Put stores or replaces the order for flightID.
func (b *OrderBook) Put(flightID string, menu model.Payload) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[flightID] = maps.Clone(menu)
}

func (b *OrderBook) Menu(_ context.Context, flightID string) (model.Payload, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	menu, ok := b.orders[flightID]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNoOrder, flightID)
	}
	return maps.Clone(menu), nil
}

// Len is the number of stored orders.
func (b *OrderBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}

// Chain asks each provider in turn and moves on only when one has no order.
type Chain []core.PayloadProvider

func (c Chain) Menu(ctx context.Context, flightID string) (model.Payload, error) {
	err := fmt.Errorf("%w %s", ErrNoOrder, flightID)
	for _, p := range c {
		menu, perr := p.Menu(ctx, flightID)
		if perr == nil {
			return menu, nil
		}
		if !errors.Is(perr, ErrNoOrder) {
			return nil, perr
		}
		err = perr
	}
	return nil, err
}
