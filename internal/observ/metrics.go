package observ

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Metrics counts span resolutions and diagnostic placements. Each Metrics
// owns its registry so several runs in one process do not collide.
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	placements  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheEvents *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg, or on a fresh registry when reg is nil.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spanres_resolutions_total",
				Help: "Span handle resolutions by outcome",
			},
			[]string{"outcome"},
		),
		placements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spanres_diagnostic_placements_total",
				Help: "Materialized diagnostics by placement",
			},
			[]string{"placement"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spanres_resolution_duration_seconds",
				Help:    "Time spent resolving one span handle",
				Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 1e-2},
			},
			[]string{"outcome"},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spanres_cache_events_total",
				Help: "Diagnostic cache lookups by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.resolutions, m.placements, m.duration, m.cacheEvents)
	return m
}

// Registry exposes the registry for scraping or gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveResolution records one resolution. outcome is a failure kind name
// ("ok", "unresolvable", "desugared", "step").
func (m *Metrics) ObserveResolution(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObservePlacement records how a diagnostic's primary location was obtained.
func (m *Metrics) ObservePlacement(placement string) {
	if m == nil {
		return
	}
	m.placements.WithLabelValues(placement).Inc()
}

// ObserveCache records a cache lookup result ("hit", "miss", "stale", "skew").
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(result).Inc()
}

// Counts gathers the counters into a flat map keyed "name{label=value}".
// Histograms contribute their sample count under "name_count{...}".
func (m *Metrics) Counts() (map[string]float64, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	out := make(map[string]float64)
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			key := fam.GetName() + labelString(metric.GetLabel())
			switch fam.GetType() {
			case dto.MetricType_COUNTER:
				out[key] = metric.GetCounter().GetValue()
			case dto.MetricType_HISTOGRAM:
				out[fam.GetName()+"_count"+labelString(metric.GetLabel())] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return out, nil
}

// WriteText writes the counters as sorted "key value" lines.
func (m *Metrics) WriteText(w io.Writer) error {
	counts, err := m.Counts()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s %g\n", k, counts[k]); err != nil {
			return err
		}
	}
	return nil
}

func labelString(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}
