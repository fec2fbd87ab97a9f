// Package metrics counts what the capture loop sees and serves the counters,
// together with pprof, on a loopback address.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ytblocker"

// Drop reasons used as the "reason" label.
const (
	ReasonTruncatedFrame = "truncated_frame"
	ReasonEmptyName      = "empty_name"
)

// Collector owns the counters. A nil *Collector is valid and counts nothing,
// which keeps tests that don't care about metrics free of setup.
type Collector struct {
	Frames      prometheus.Counter
	DNSFrames   prometheus.Counter
	Dropped     *prometheus.CounterVec
	AdsBlocked  prometheus.Counter
	SinkErrors  prometheus.Counter
	Assertions  prometheus.Counter
	LogFailures prometheus.Counter
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "UDP frames received from the capture source.",
		}),
		DNSFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dns_frames_total",
			Help:      "Frames with source or destination port 53.",
		}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_frames_total",
			Help:      "Frames dropped before classification, by reason.",
		}, []string{"reason"}),
		AdsBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ads_blocked_total",
			Help:      "Ad hosts handed to the denylist (each counts its variant too).",
		}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "denylist_errors_total",
			Help:      "Denylist invocations that returned an error.",
		}),
		Assertions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assertion_failures_total",
			Help:      "Internal invariant violations while deriving a variant.",
		}),
		LogFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_log_errors_total",
			Help:      "Event log writes that failed.",
		}),
	}
	reg.MustRegister(c.Frames, c.DNSFrames, c.Dropped, c.AdsBlocked, c.SinkErrors, c.Assertions, c.LogFailures)
	return c
}

func (c *Collector) IncFrames() {
	if c != nil {
		c.Frames.Inc()
	}
}

func (c *Collector) IncDNSFrames() {
	if c != nil {
		c.DNSFrames.Inc()
	}
}

func (c *Collector) IncDropped(reason string) {
	if c != nil {
		c.Dropped.WithLabelValues(reason).Inc()
	}
}

func (c *Collector) IncAdsBlocked() {
	if c != nil {
		c.AdsBlocked.Inc()
	}
}

func (c *Collector) IncSinkErrors() {
	if c != nil {
		c.SinkErrors.Inc()
	}
}

func (c *Collector) IncAssertions() {
	if c != nil {
		c.Assertions.Inc()
	}
}

func (c *Collector) IncLogFailures() {
	if c != nil {
		c.LogFailures.Inc()
	}
}
