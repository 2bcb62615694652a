// Package metrics records store activity as Prometheus series.
package metrics

import (
	"io"
	"strings"
	"time"

	"octoterm/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collector implements store.Observer.
type Collector struct {
	registry *prometheus.Registry

	actions        *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	effects        *prometheus.CounterVec
	inflight       prometheus.Gauge
}

var _ store.Observer = (*Collector)(nil)

// New creates a collector on its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "octoterm",
				Subsystem: "store",
				Name:      "actions_total",
				Help:      "Total number of actions reduced.",
			},
			[]string{"action"},
		),
		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "octoterm",
				Subsystem: "store",
				Name:      "reduce_duration_seconds",
				Help:      "Time spent in the reducer per action.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs to ~160ms
			},
			[]string{"action"},
		),
		effects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "octoterm",
				Subsystem: "effects",
				Name:      "events_total",
				Help:      "Effect lifecycle events by purpose.",
			},
			[]string{"purpose", "event"},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "octoterm",
				Subsystem: "effects",
				Name:      "inflight",
				Help:      "Effects currently running.",
			},
		),
	}
	c.registry.MustRegister(c.actions, c.actionDuration, c.effects, c.inflight)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ActionProcessed(action string, d time.Duration) {
	c.actions.WithLabelValues(action).Inc()
	c.actionDuration.WithLabelValues(action).Observe(d.Seconds())
}

func (c *Collector) EffectStarted(id store.EffectID) {
	c.effects.WithLabelValues(purpose(id), "started").Inc()
	c.inflight.Inc()
}

// EffectCancelled only counts; the cancelled run still reports EffectFinished.
func (c *Collector) EffectCancelled(id store.EffectID) {
	c.effects.WithLabelValues(purpose(id), "cancelled").Inc()
}

func (c *Collector) EffectFinished(id store.EffectID) {
	c.effects.WithLabelValues(purpose(id), "finished").Inc()
	c.inflight.Dec()
}

// WriteText dumps every series in the Prometheus text format.
func (c *Collector) WriteText(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// purpose strips the per-element prefix so label cardinality stays bounded:
// "12/repodetail.readme" becomes "repodetail.readme".
func purpose(id store.EffectID) string {
	s := string(id)
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}
