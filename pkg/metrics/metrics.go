// Package metrics counts live connections, events, renders and demo
// fetches, and exposes them in the Prometheus text format.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds the server metrics.
type Metrics struct {
	namespace string

	LiveConnections *Gauge
	LiveJoins       *Counter
	LiveEvents      *CounterVec
	LivePanics      *Counter

	Renders        *Counter
	RenderDuration *Histogram
	DiffBytes      *Histogram

	Fetches       *CounterVec
	FetchDuration *Histogram
}

// New creates a metrics set whose names start with namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		namespace: namespace,

		LiveConnections: NewGauge("live_connections", "Open live view connections."),
		LiveJoins:       NewCounter("live_joins_total", "Live views joined."),
		LiveEvents:      NewCounterVec("live_events_total", "Browser events handled.", "event"),
		LivePanics:      NewCounter("live_panics_total", "Panics recovered in components."),

		Renders:        NewCounter("renders_total", "Live view renders."),
		RenderDuration: NewHistogram("render_duration_seconds", "Render duration."),
		DiffBytes:      NewHistogram("diff_bytes", "Size of the slots sent per diff."),

		Fetches:       NewCounterVec("demo_fetches_total", "Demo fetches by outcome.", "outcome"),
		FetchDuration: NewHistogram("demo_fetch_duration_seconds", "Demo fetch duration."),
	}
}

// Handler serves the metrics.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		m.WriteTo(w)
	})
}

// WriteTo writes every metric in the Prometheus text format.
func (m *Metrics) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	m.writeGauge(cw, m.LiveConnections)
	m.writeCounter(cw, m.LiveJoins)
	m.writeCounterVec(cw, m.LiveEvents)
	m.writeCounter(cw, m.LivePanics)
	m.writeCounter(cw, m.Renders)
	m.writeSummary(cw, m.RenderDuration)
	m.writeSummary(cw, m.DiffBytes)
	m.writeCounterVec(cw, m.Fetches)
	m.writeSummary(cw, m.FetchDuration)

	return cw.n, cw.err
}

func (m *Metrics) name(s string) string {
	if m.namespace == "" {
		return s
	}
	return m.namespace + "_" + s
}

func (m *Metrics) header(w io.Writer, name, help, typ string) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, typ)
}

func (m *Metrics) writeCounter(w io.Writer, c *Counter) {
	name := m.name(c.name)
	m.header(w, name, c.help, "counter")
	fmt.Fprintf(w, "%s %d\n", name, c.load())
}

func (m *Metrics) writeGauge(w io.Writer, g *Gauge) {
	name := m.name(g.name)
	m.header(w, name, g.help, "gauge")
	fmt.Fprintf(w, "%s %d\n", name, g.load())
}

func (m *Metrics) writeCounterVec(w io.Writer, cv *CounterVec) {
	name := m.name(cv.name)
	m.header(w, name, cv.help, "counter")

	values := cv.Values()
	labels := make([]string, 0, len(values))
	for l := range values {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	for _, l := range labels {
		fmt.Fprintf(w, "%s{%s=%q} %d\n", name, cv.label, l, int64(values[l]))
	}
}

func (m *Metrics) writeSummary(w io.Writer, h *Histogram) {
	name := m.name(h.name)
	m.header(w, name, h.help, "summary")
	s := h.Stats()
	fmt.Fprintf(w, "%s_sum %g\n%s_count %d\n", name, s.Sum, name, s.Count)
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	if cw.err != nil {
		return 0, cw.err
	}
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	cw.err = err
	return n, err
}

// Counter only goes up.
type Counter struct {
	name  string
	help  string
	value atomic.Int64
}

// NewCounter creates a counter.
func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

func (c *Counter) Inc()            { c.value.Add(1) }
func (c *Counter) Add(delta int64) { c.value.Add(delta) }
func (c *Counter) load() int64     { return c.value.Load() }

// Value returns the current count.
func (c *Counter) Value() float64 {
	return float64(c.value.Load())
}

// Gauge goes up and down.
type Gauge struct {
	name  string
	help  string
	value atomic.Int64
}

// NewGauge creates a gauge.
func NewGauge(name, help string) *Gauge {
	return &Gauge{name: name, help: help}
}

func (g *Gauge) Inc()        { g.value.Add(1) }
func (g *Gauge) Dec()        { g.value.Add(-1) }
func (g *Gauge) Set(v int64) { g.value.Store(v) }
func (g *Gauge) load() int64 { return g.value.Load() }

// Value returns the current value.
func (g *Gauge) Value() float64 {
	return float64(g.value.Load())
}

// CounterVec is a counter per value of one label.
type CounterVec struct {
	name   string
	help   string
	label  string
	mu     sync.RWMutex
	values map[string]*Counter
}

// NewCounterVec creates a counter vector.
func NewCounterVec(name, help, label string) *CounterVec {
	return &CounterVec{
		name:   name,
		help:   help,
		label:  label,
		values: make(map[string]*Counter),
	}
}

// WithLabel returns the counter of value.
func (cv *CounterVec) WithLabel(value string) *Counter {
	cv.mu.RLock()
	c, ok := cv.values[value]
	cv.mu.RUnlock()
	if ok {
		return c
	}

	cv.mu.Lock()
	defer cv.mu.Unlock()
	if c, ok := cv.values[value]; ok {
		return c
	}
	c = NewCounter(cv.name, cv.help)
	cv.values[value] = c
	return c
}

// Inc increments the counter of label.
func (cv *CounterVec) Inc(label string) {
	cv.WithLabel(label).Inc()
}

// Values returns every counter by label.
func (cv *CounterVec) Values() map[string]float64 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()

	out := make(map[string]float64, len(cv.values))
	for label, c := range cv.values {
		out[label] = c.Value()
	}
	return out
}

// Histogram keeps the count, sum and bounds of observed values.
type Histogram struct {
	name  string
	help  string
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

// NewHistogram creates a histogram.
func NewHistogram(name, help string) *Histogram {
	return &Histogram{name: name, help: help}
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 || v < h.min {
		h.min = v
	}
	if h.count == 0 || v > h.max {
		h.max = v
	}
	h.count++
	h.sum += v
}

// ObserveDuration records d in seconds.
func (h *Histogram) ObserveDuration(d time.Duration) {
	h.Observe(d.Seconds())
}

// Since records the time elapsed since start.
func (h *Histogram) Since(start time.Time) {
	h.ObserveDuration(time.Since(start))
}

// HistogramStats is a snapshot of a histogram.
type HistogramStats struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Avg   float64
}

// Stats returns a snapshot.
func (h *Histogram) Stats() HistogramStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := HistogramStats{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	if h.count > 0 {
		s.Avg = h.sum / float64(h.count)
	}
	return s
}

// Default is the metrics set of the server.
var Default = New("metasite")

// Fetch outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeRateLimited = "rate_limited"
	OutcomeError       = "error"
)

func ConnectionOpened() {
	Default.LiveConnections.Inc()
	Default.LiveJoins.Inc()
}

func ConnectionClosed() {
	Default.LiveConnections.Dec()
}

func EventHandled(event string) {
	Default.LiveEvents.Inc(event)
}

func PanicRecovered() {
	Default.LivePanics.Inc()
}

// RecordRender records one render and the bytes it sent.
func RecordRender(d time.Duration, diffBytes int) {
	Default.Renders.Inc()
	Default.RenderDuration.ObserveDuration(d)
	if diffBytes > 0 {
		Default.DiffBytes.Observe(float64(diffBytes))
	}
}

// RecordFetch records a demo fetch.
func RecordFetch(outcome string, d time.Duration) {
	Default.Fetches.Inc(outcome)
	Default.FetchDuration.ObserveDuration(d)
}
