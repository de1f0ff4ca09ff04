package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// MetricsRegistry holds all registered metrics.
type MetricsRegistry struct {
	mu       sync.RWMutex
	counters map[string]*Counter
	gauges   map[string]*Gauge
	histos   map[string]*Histogram
}

// Counter is a monotonically increasing metric.
type Counter struct {
	name   string
	help   string
	labels map[string]string
	value  float64
	mu     sync.Mutex
}

// Gauge is a metric that can go up or down.
type Gauge struct {
	name   string
	help   string
	labels map[string]string
	value  float64
	mu     sync.Mutex
}

// Histogram tracks distribution of values.
type Histogram struct {
	name    string
	help    string
	labels  map[string]string
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
	mu      sync.Mutex
}

// NewMetricsRegistry creates a new metrics registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		counters: make(map[string]*Counter),
		gauges:   make(map[string]*Gauge),
		histos:   make(map[string]*Histogram),
	}
}

// NewCounter creates and registers a counter.
func (r *MetricsRegistry) NewCounter(name, help string, labels map[string]string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Counter{name: name, help: help, labels: labels}
	r.counters[name] = c
	return c
}

// NewGauge creates and registers a gauge.
func (r *MetricsRegistry) NewGauge(name, help string, labels map[string]string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	g := &Gauge{name: name, help: help, labels: labels}
	r.gauges[name] = g
	return g
}

// NewHistogram creates and registers a histogram.
func (r *MetricsRegistry) NewHistogram(name, help string, labels map[string]string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	if buckets == nil {
		buckets = DefaultBuckets()
	}

	h := &Histogram{
		name:    name,
		help:    help,
		labels:  labels,
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
	r.histos[name] = h
	return h
}

// DefaultBuckets returns default histogram buckets for latency.
func DefaultBuckets() []float64 {
	return []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
}

// Inc increments a counter by 1.
func (c *Counter) Inc() {
	c.Add(1)
}

// Add adds a value to the counter.
func (c *Counter) Add(v float64) {
	c.mu.Lock()
	c.value += v
	c.mu.Unlock()
}

// Value returns the counter value.
func (c *Counter) Value() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set sets the gauge value.
func (g *Gauge) Set(v float64) {
	g.mu.Lock()
	g.value = v
	g.mu.Unlock()
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc() {
	g.Add(1)
}

// Dec decrements the gauge by 1.
func (g *Gauge) Dec() {
	g.Add(-1)
}

// Add adds a value to the gauge.
func (g *Gauge) Add(v float64) {
	g.mu.Lock()
	g.value += v
	g.mu.Unlock()
}

// Value returns the gauge value.
func (g *Gauge) Value() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.value
}

// Observe records a value in the histogram.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += v
	h.count++

	for i, bound := range h.buckets {
		if v <= bound {
			h.counts[i]++
		}
	}
}

// ObserveDuration records a duration in the histogram.
func (h *Histogram) ObserveDuration(start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

// Handler returns an HTTP handler for Prometheus metrics.
func (r *MetricsRegistry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.WritePrometheus(w)
	})
}

// WritePrometheus writes metrics in Prometheus text format.
func (r *MetricsRegistry) WritePrometheus(w http.ResponseWriter) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.counters {
		c.mu.Lock()
		writeMetric(w, c.name, "counter", c.help, c.labels, c.value)
		c.mu.Unlock()
	}

	for _, g := range r.gauges {
		g.mu.Lock()
		writeMetric(w, g.name, "gauge", g.help, g.labels, g.value)
		g.mu.Unlock()
	}

	for _, h := range r.histos {
		h.mu.Lock()
		writeHistogram(w, h)
		h.mu.Unlock()
	}
}

func writeMetric(w http.ResponseWriter, name, metricType, help string, labels map[string]string, value float64) {
	w.Write([]byte("# HELP " + name + " " + help + "\n"))
	w.Write([]byte("# TYPE " + name + " " + metricType + "\n"))
	w.Write([]byte(name + formatLabels(labels) + " "))
	w.Write([]byte(formatFloat(value) + "\n"))
}

func writeHistogram(w http.ResponseWriter, h *Histogram) {
	w.Write([]byte("# HELP " + h.name + " " + h.help + "\n"))
	w.Write([]byte("# TYPE " + h.name + " histogram\n"))

	var cumulative uint64
	for i, bound := range h.buckets {
		cumulative += h.counts[i]
		labels := copyLabels(h.labels)
		labels["le"] = formatFloat(bound)
		w.Write([]byte(h.name + "_bucket" + formatLabels(labels) + " "))
		w.Write([]byte(strconv.FormatUint(cumulative, 10) + "\n"))
	}

	labels := copyLabels(h.labels)
	labels["le"] = "+Inf"
	w.Write([]byte(h.name + "_bucket" + formatLabels(labels) + " "))
	w.Write([]byte(strconv.FormatUint(h.count, 10) + "\n"))

	w.Write([]byte(h.name + "_sum" + formatLabels(h.labels) + " "))
	w.Write([]byte(formatFloat(h.sum) + "\n"))
	w.Write([]byte(h.name + "_count" + formatLabels(h.labels) + " "))
	w.Write([]byte(strconv.FormatUint(h.count, 10) + "\n"))
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	result := "{"
	first := true
	for k, v := range labels {
		if !first {
			result += ","
		}
		result += k + "=\"" + v + "\""
		first = false
	}
	result += "}"
	return result
}

func copyLabels(labels map[string]string) map[string]string {
	if labels == nil {
		return make(map[string]string)
	}
	result := make(map[string]string, len(labels))
	for k, v := range labels {
		result[k] = v
	}
	return result
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ServiceMetrics contains all ragstore-specific metrics.
type ServiceMetrics struct {
	Registry *MetricsRegistry

	// Upsert metrics
	UpsertRequestsTotal *Counter
	UpsertDuration      *Histogram
	ItemsWrittenTotal   *Counter
	ItemsSkippedTotal   *Counter

	// Query metrics
	QueryRequestsTotal  *Counter
	QueryDuration       *Histogram
	RecordsScannedTotal *Counter
	StaleRecordsTotal   *Counter

	// Embedding metrics
	EmbedRequestsTotal *Counter
	EmbedErrorsTotal   *Counter
	EmbedDuration      *Histogram

	// Store metrics
	StoreErrorsTotal *Counter
}

// NewServiceMetrics creates the ragstore metrics set.
func NewServiceMetrics() *ServiceMetrics {
	r := NewMetricsRegistry()

	return &ServiceMetrics{
		Registry: r,

		UpsertRequestsTotal: r.NewCounter("ragstore_upsert_requests_total", "Total upsert requests", nil),
		UpsertDuration:      r.NewHistogram("ragstore_upsert_duration_seconds", "Upsert request duration", nil, nil),
		ItemsWrittenTotal:   r.NewCounter("ragstore_items_written_total", "Total items written", nil),
		ItemsSkippedTotal:   r.NewCounter("ragstore_items_skipped_total", "Total items skipped (empty text or embed failure)", nil),

		QueryRequestsTotal:  r.NewCounter("ragstore_query_requests_total", "Total query requests", nil),
		QueryDuration:       r.NewHistogram("ragstore_query_duration_seconds", "Query request duration", nil, nil),
		RecordsScannedTotal: r.NewCounter("ragstore_records_scanned_total", "Total records scanned during queries", nil),
		StaleRecordsTotal:   r.NewCounter("ragstore_stale_records_total", "Total stale or malformed records skipped", nil),

		EmbedRequestsTotal: r.NewCounter("ragstore_embed_requests_total", "Total embedding provider calls", nil),
		EmbedErrorsTotal:   r.NewCounter("ragstore_embed_errors_total", "Total embedding provider errors", nil),
		EmbedDuration:      r.NewHistogram("ragstore_embed_duration_seconds", "Embedding call duration", nil, nil),

		StoreErrorsTotal: r.NewCounter("ragstore_store_errors_total", "Total item store errors", nil),
	}
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *ServiceMetrics) Handler() http.Handler {
	return m.Registry.Handler()
}

// RecordUpsert records an upsert request.
func (m *ServiceMetrics) RecordUpsert(duration time.Duration, written, skipped int, err error) {
	m.UpsertRequestsTotal.Inc()
	m.UpsertDuration.Observe(duration.Seconds())
	m.ItemsWrittenTotal.Add(float64(written))
	m.ItemsSkippedTotal.Add(float64(skipped))
	if err != nil {
		m.StoreErrorsTotal.Inc()
	}
}

// RecordQuery records a query request.
func (m *ServiceMetrics) RecordQuery(duration time.Duration, scanned, stale int) {
	m.QueryRequestsTotal.Inc()
	m.QueryDuration.Observe(duration.Seconds())
	m.RecordsScannedTotal.Add(float64(scanned))
	m.StaleRecordsTotal.Add(float64(stale))
}

// RecordEmbed records an embedding provider call.
func (m *ServiceMetrics) RecordEmbed(duration time.Duration, err error) {
	m.EmbedRequestsTotal.Inc()
	m.EmbedDuration.Observe(duration.Seconds())
	if err != nil {
		m.EmbedErrorsTotal.Inc()
	}
}
