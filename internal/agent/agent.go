// ? lifecycle orchestration only
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/strct-org/ytblocker/internal/errs"
)

const opRun errs.Op = "agent.Run"

// Service is a long-running component. Start blocks until ctx is cancelled
// or the service fails.
type Service interface {
	Start(ctx context.Context) error
}

// Named attaches a name to a service for logs and errors.
type Named struct {
	Name    string
	Service Service
}

type Agent struct {
	services []Named
}

func New(services ...Named) *Agent {
	return &Agent{services: services}
}

// Run starts every service and waits for all of them. The first failure
// cancels the rest and is returned. A service that returns nil before ctx is
// done also ends the run, so a replay that runs dry stops the process.
func (a *Agent) Run(ctx context.Context) error {
	slog.Info("agent: starting services", "count", len(a.services))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, svc := range a.services {
		g.Go(func() error {
			defer cancel()
			slog.Info("agent: service starting", "service", svc.Name)
			if err := svc.Service.Start(gctx); err != nil {
				slog.Error("agent: service failed", "service", svc.Name, "err", err)
				return errs.E(opRun, err, fmt.Sprintf("service %s", svc.Name))
			}
			slog.Info("agent: service stopped", "service", svc.Name)
			return nil
		})
	}

	err := g.Wait()
	slog.Info("agent: all services stopped")
	return err
}
