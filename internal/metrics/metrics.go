// Package metrics counts install activity with Prometheus collectors.
//
// uvm is a short lived CLI, so nothing is served over HTTP; the collected
// values can be written to a node_exporter textfile instead.
package metrics

import (
	"sync"
	"time"

	"github.com/ImSingee/go-ex/ee"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ImSingee/uvm/internal/installer"
)

const (
	Namespace = "uvm"

	ComponentLabel = "component"
	StateLabel     = "state"
)

// Metrics implements installer.Observer.
type Metrics struct {
	Registry *prometheus.Registry

	// Transitions counts component state transitions. [component, state].
	Transitions *prometheus.CounterVec
	// Installed counts components that reached the registered state. [component].
	Installed *prometheus.CounterVec
	// Failures counts components that failed. [component].
	Failures *prometheus.CounterVec
	// Duration of a component from fetching to registered or failed.
	Duration *prometheus.HistogramVec
	// Installations is the number of installations found by the last scan.
	Installations prometheus.Gauge

	mu      sync.Mutex
	started map[startKey]time.Time
	now     func() time.Time
}

type startKey struct {
	run       string
	component int
}

var _ installer.Observer = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "install",
			Name:      "transitions_total",
			Help:      "Number of component state transitions.",
		}, []string{ComponentLabel, StateLabel}),
		Installed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "install",
			Name:      "components_total",
			Help:      "Number of components installed.",
		}, []string{ComponentLabel}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "install",
			Name:      "failures_total",
			Help:      "Number of components that failed to install.",
		}, []string{ComponentLabel}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "install",
			Name:      "component_duration_seconds",
			Help:      "Time spent installing a component.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{ComponentLabel}),
		Installations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "index",
			Name:      "installations",
			Help:      "Number of installations found by the last scan.",
		}),
		started: make(map[startKey]time.Time),
		now:     time.Now,
	}

	m.Registry.MustRegister(m.Transitions, m.Installed, m.Failures, m.Duration, m.Installations)
	return m
}

func (m *Metrics) OnTransition(e installer.Event) {
	component := e.Component.String()
	m.Transitions.WithLabelValues(component, e.State.String()).Inc()

	key := startKey{run: e.RunID, component: e.Component.ID()}

	switch e.State {
	case installer.StateFetching:
		m.mu.Lock()
		m.started[key] = m.now()
		m.mu.Unlock()
	case installer.StateRegistered, installer.StateFailed:
		if e.State == installer.StateRegistered {
			m.Installed.WithLabelValues(component).Inc()
		} else {
			m.Failures.WithLabelValues(component).Inc()
		}

		m.mu.Lock()
		start, ok := m.started[key]
		delete(m.started, key)
		m.mu.Unlock()
		if ok {
			m.Duration.WithLabelValues(component).Observe(m.now().Sub(start).Seconds())
		}
	}
}

// ObserveScan records the size of the index after a scan.
func (m *Metrics) ObserveScan(installations int) {
	m.Installations.Set(float64(installations))
}

// WriteToTextfile writes every metric in the text exposition format.
func (m *Metrics) WriteToTextfile(filename string) error {
	if err := prometheus.WriteToTextfile(filename, m.Registry); err != nil {
		return ee.Wrapf(err, "cannot write metrics to %s", filename)
	}
	return nil
}
