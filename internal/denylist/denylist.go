// Package denylist hands blocked domains to the DNS-level blocker.
package denylist

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/strct-org/ytblocker/internal/errs"
	"github.com/strct-org/ytblocker/internal/platform/executil"
)

const opPiholeAdd errs.Op = "denylist.Pihole.Add"

// Sink accepts one domain per call.
type Sink interface {
	Add(ctx context.Context, domain string) error
}

// processRunner is satisfied by executil.Real, DevRunner and Mock.
type processRunner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Pihole appends domains to the Pi-hole denylist with "<tool> -b <domain>".
// The command is run once per domain and never retried.
type Pihole struct {
	tool    string
	runner  processRunner
	timeout time.Duration
}

// NewPihole is the base constructor; pass executil.Real{} in production.
func NewPihole(tool string, runner processRunner, timeout time.Duration) *Pihole {
	return &Pihole{tool: tool, runner: runner, timeout: timeout}
}

// NewDefault wires the real OS runner, or a runner that only logs the
// command when dryRun is set.
func NewDefault(tool string, timeout time.Duration, dryRun bool) *Pihole {
	if dryRun {
		return NewPihole(tool, executil.NewDevRunner(tool), timeout)
	}
	return NewPihole(tool, executil.Real{}, timeout)
}

func (p *Pihole) Add(ctx context.Context, domain string) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	out, err := p.runner.CombinedOutput(ctx, p.tool, "-b", domain)
	if err != nil {
		msg := domain
		if o := strings.TrimSpace(string(out)); o != "" {
			msg += ": " + o
		}
		return errs.E(opPiholeAdd, errs.KindSystem, err, msg)
	}
	return nil
}

// Recorder keeps every domain in memory, in call order.
type Recorder struct {
	mu      sync.Mutex
	domains []string
}

func (r *Recorder) Add(_ context.Context, domain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.domains = append(r.domains, domain)
	return nil
}

// Domains returns a copy of what was added so far.
func (r *Recorder) Domains() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.domains...)
}
