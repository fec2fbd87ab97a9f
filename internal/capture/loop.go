// Package capture runs the receive → parse → classify → block pipeline.
//
// The loop is synchronous: a frame is fully handled, denylist commands
// included, before the next one is read, so a single buffer is reused for
// every frame and nothing downstream keeps a reference into it.
package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/strct-org/ytblocker/internal/adrule"
	"github.com/strct-org/ytblocker/internal/errs"
	"github.com/strct-org/ytblocker/internal/metrics"
	"github.com/strct-org/ytblocker/internal/packet"
)

const opRun errs.Op = "capture.Loop.Run"

// sink is the enforcement side; denylist.Pihole satisfies it.
type sink interface {
	Add(ctx context.Context, domain string) error
}

// eventWriter is the block log; *eventlog.Log satisfies it.
type eventWriter interface {
	Write(t time.Time, msg string) error
}

// Loop wires a frame source to the denylist.
type Loop struct {
	src     Source
	sink    sink
	events  eventWriter
	metrics *metrics.Collector
	now     func() time.Time
	buf     []byte
}

// Option customises a Loop.
type Option func(*Loop)

// WithMetrics counts frames into c.
func WithMetrics(c *metrics.Collector) Option {
	return func(l *Loop) { l.metrics = c }
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// New returns a Loop with a receive buffer of packet.MaxFrameLen bytes.
func New(src Source, s sink, events eventWriter, opts ...Option) *Loop {
	l := &Loop{
		src:    src,
		sink:   s,
		events: events,
		now:    time.Now,
		buf:    make([]byte, packet.MaxFrameLen),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start implements agent.Service.
func (l *Loop) Start(ctx context.Context) error {
	return l.Run(ctx)
}

// Run reads frames until the source fails, runs dry or ctx ends. Only a
// source failure is returned; per-frame problems never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("capture: loop started")
	for {
		n, err := l.src.ReadFrame(ctx, l.buf)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				slog.Info("capture: loop stopped")
				return nil
			case errors.Is(err, io.EOF):
				slog.Info("capture: source exhausted")
				return nil
			default:
				l.logEvent("Could not fetch packet")
				return errs.E(opRun, err)
			}
		}
		l.HandleFrame(ctx, l.buf[:n])
	}
}

// HandleFrame runs one frame through the pipeline and reports whether it was
// blocked. frame is not retained.
func (l *Loop) HandleFrame(ctx context.Context, frame []byte) bool {
	l.metrics.IncFrames()

	h, err := packet.ParseFrame(frame)
	if err != nil {
		l.drop(err)
		return false
	}
	if !h.IsDNS() {
		return false
	}
	l.metrics.IncDNSFrames()

	raw, err := packet.ExtractName(frame, h)
	if err != nil {
		l.drop(err)
		return false
	}

	name := packet.Normalize(raw)
	if !adrule.IsAd(name) {
		return false
	}

	variant, err := adrule.Variant(name)
	if err != nil {
		l.metrics.IncAssertions()
		slog.Error("capture: ad host without a variant, frame skipped",
			"err", err,
			"kind", errs.KindOf(err),
			"name", name,
		)
		return false
	}

	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		describeQuery(frame[h.End():])
	}

	l.metrics.IncAdsBlocked()
	l.block(ctx, name)
	l.block(ctx, variant)
	return true
}

func (l *Loop) block(ctx context.Context, domain string) {
	ts := l.now()
	if err := l.sink.Add(ctx, domain); err != nil {
		l.metrics.IncSinkErrors()
		slog.Warn("capture: denylist add failed", "domain", domain, "err", err)
	}
	if err := l.events.Write(ts, "Blocking ad: "+domain); err != nil {
		l.metrics.IncLogFailures()
		slog.Error("capture: event log write failed", "err", err)
	}
	slog.Info("capture: blocking ad", "domain", domain)
}

func (l *Loop) drop(err error) {
	switch errs.KindOf(err) {
	case errs.KindTruncatedFrame:
		l.metrics.IncDropped(metrics.ReasonTruncatedFrame)
	case errs.KindEmptyName:
		l.metrics.IncDropped(metrics.ReasonEmptyName)
	}
	slog.Debug("capture: frame dropped", "err", err)
}

func (l *Loop) logEvent(msg string) {
	if err := l.events.Write(l.now(), msg); err != nil {
		slog.Error("capture: event log write failed", "err", err)
	}
}
