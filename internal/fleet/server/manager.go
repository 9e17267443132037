// Package server runs the primary adapters of the fleet service.
package server

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Rus1K7/Airport/pkg/log"
)

// Server is a long-running adapter. Start blocks until ctx ends or the
// server fails.
type Server interface {
	Start(ctx context.Context) error
}

// Manager runs servers together. The first failure stops all of them.
type Manager struct {
	servers []Server
}

func NewManager(servers ...Server) *Manager {
	return &Manager{servers: servers}
}

func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, srv := range m.servers {
		srv := srv
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	log.Info("All servers starting", "count", len(m.servers))
	return g.Wait()
}
