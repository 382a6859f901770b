// Package prometheus adapts the statsd.Sink interface onto a Prometheus registry so the
// same metric calls feed both a StatsD agent and a /metrics scrape endpoint.
package prometheus

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yoii-livecomm/socialauth/internal/observability/statsd"
)

// Sink lazily creates one vector per metric name. The label set is fixed by the first
// observation; later observations fill missing labels with "" and drop unknown ones.
type Sink struct {
	namespace string
	reg       *prom.Registry
	logger    *slog.Logger

	mu         sync.Mutex
	counters   map[string]*prom.CounterVec
	gauges     map[string]*prom.GaugeVec
	histograms map[string]*prom.HistogramVec
	labels     map[string][]string
}

var _ statsd.Sink = (*Sink)(nil)

// New returns a sink with its own registry, preloaded with Go runtime and process collectors.
func New(namespace string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prom.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Sink{
		namespace:  sanitize(namespace),
		reg:        reg,
		logger:     logger.With("component", "prometheus"),
		counters:   make(map[string]*prom.CounterVec),
		gauges:     make(map[string]*prom.GaugeVec),
		histograms: make(map[string]*prom.HistogramVec),
		labels:     make(map[string][]string),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (s *Sink) Handler() http.Handler {
	return promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{Registry: s.reg})
}

// Registry exposes the underlying registry for additional collectors.
func (s *Sink) Registry() *prom.Registry { return s.reg }

// Count adds value to the counter <name>_total.
func (s *Sink) Count(name string, value int64, tags map[string]string) {
	if value < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sanitize(name) + "_total"
	vec, ok := s.counters[key]
	if !ok {
		vec = prom.NewCounterVec(prom.CounterOpts{
			Namespace: s.namespace,
			Name:      key,
			Help:      "Count of " + name + " events.",
		}, s.labelNames(key, tags))
		if !s.register(key, vec) {
			return
		}
		s.counters[key] = vec
	}
	vec.With(s.labelValues(key, tags)).Add(float64(value))
}

func (s *Sink) Gauge(name string, value float64, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sanitize(name)
	vec, ok := s.gauges[key]
	if !ok {
		vec = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: s.namespace,
			Name:      key,
			Help:      "Current value of " + name + ".",
		}, s.labelNames(key, tags))
		if !s.register(key, vec) {
			return
		}
		s.gauges[key] = vec
	}
	vec.With(s.labelValues(key, tags)).Set(value)
}

// Timing observes value in seconds on the histogram <name>_seconds.
func (s *Sink) Timing(name string, value time.Duration, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sanitize(name) + "_seconds"
	vec, ok := s.histograms[key]
	if !ok {
		vec = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: s.namespace,
			Name:      key,
			Help:      "Duration of " + name + ".",
			// Interactive logins sit between a fraction of a second and the flow timeout.
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, s.labelNames(key, tags))
		if !s.register(key, vec) {
			return
		}
		s.histograms[key] = vec
	}
	vec.With(s.labelValues(key, tags)).Observe(value.Seconds())
}

func (s *Sink) register(key string, c prom.Collector) bool {
	if err := s.reg.Register(c); err != nil {
		s.logger.Warn("metric registration failed", "metric", key, "error", err)
		delete(s.labels, key)
		return false
	}
	return true
}

func (s *Sink) labelNames(key string, tags map[string]string) []string {
	names := make([]string, 0, len(tags))
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		if n := sanitize(k); n != "" && !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	s.labels[key] = names
	return names
}

func (s *Sink) labelValues(key string, tags map[string]string) prom.Labels {
	names := s.labels[key]
	out := make(prom.Labels, len(names))
	for _, n := range names {
		out[n] = ""
	}
	for k, v := range tags {
		if n := sanitize(k); n != "" {
			if _, known := out[n]; known {
				out[n] = v
			}
		}
	}
	return out
}

// sanitize maps an arbitrary dotted metric or tag name onto [a-zA-Z0-9_].
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
