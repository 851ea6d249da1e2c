package api

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"wordsmith/internal/version"
)

// Metrics collects request and vocabulary metrics in Prometheus text format
type Metrics struct {
	queriesTotal      *Counter
	suggestionsTotal  *Counter
	wordsTotal        *Counter
	promotionsTotal   *Counter
	errorsTotal       *Counter
	queryDuration     *Histogram
	habitWords        *Gauge
	dictionaryWords   *Gauge
	trackedWords      *Gauge
	pendingRecordings *Gauge

	startTime time.Time
}

// Counter is a monotonically increasing counter
type Counter struct {
	name   string
	help   string
	labels []string
	values sync.Map // map[string]*uint64
}

// Histogram tracks distributions of values
type Histogram struct {
	name    string
	help    string
	buckets []float64

	mu     sync.Mutex
	sum    float64
	count  uint64
	counts []uint64 // per bucket, last is +Inf
}

// Gauge is a value that can go up and down
type Gauge struct {
	name  string
	help  string
	value atomic.Uint64 // float64 bits
}

// NewMetrics creates the collector
func NewMetrics() *Metrics {
	return &Metrics{
		queriesTotal: &Counter{
			name:   "wordsmith_queries_total",
			help:   "Completion queries by answering vocabulary",
			labels: []string{"source"},
		},
		suggestionsTotal: &Counter{
			name:   "wordsmith_suggestions_total",
			help:   "Suggestions returned by vocabulary",
			labels: []string{"source"},
		},
		wordsTotal: &Counter{
			name: "wordsmith_words_recorded_total",
			help: "Completed words recorded",
		},
		promotionsTotal: &Counter{
			name: "wordsmith_promotions_total",
			help: "Recordings that left the word in the habit vocabulary",
		},
		errorsTotal: &Counter{
			name:   "wordsmith_errors_total",
			help:   "Errors by code",
			labels: []string{"code"},
		},
		queryDuration: newHistogram("wordsmith_query_duration_seconds",
			"Completion query latency",
			[]float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}),
		habitWords:        &Gauge{name: "wordsmith_habit_words", help: "Words in the habit vocabulary"},
		dictionaryWords:   &Gauge{name: "wordsmith_dictionary_words", help: "Words in the dictionary"},
		trackedWords:      &Gauge{name: "wordsmith_tracked_words", help: "Words with a recorded frequency"},
		pendingRecordings: &Gauge{name: "wordsmith_pending_recordings", help: "Words queued for recording"},
		startTime:         time.Now(),
	}
}

func newHistogram(name, help string, buckets []float64) *Histogram {
	return &Histogram{
		name:    name,
		help:    help,
		buckets: buckets,
		counts:  make([]uint64, len(buckets)+1),
	}
}

// WritePrometheus writes every metric in the text exposition format
func (m *Metrics) WritePrometheus(w io.Writer) {
	fmt.Fprintf(w, "# HELP wordsmith_info Build information\n")
	fmt.Fprintf(w, "# TYPE wordsmith_info gauge\n")
	fmt.Fprintf(w, "wordsmith_info{version=%q} 1\n\n", version.Version)

	fmt.Fprintf(w, "# HELP wordsmith_uptime_seconds Time since the server started\n")
	fmt.Fprintf(w, "# TYPE wordsmith_uptime_seconds counter\n")
	fmt.Fprintf(w, "wordsmith_uptime_seconds %.3f\n\n", time.Since(m.startTime).Seconds())

	for _, c := range []*Counter{m.queriesTotal, m.suggestionsTotal, m.wordsTotal, m.promotionsTotal, m.errorsTotal} {
		c.write(w)
	}
	m.queryDuration.write(w)
	for _, g := range []*Gauge{m.habitWords, m.dictionaryWords, m.trackedWords, m.pendingRecordings} {
		g.write(w)
	}
}

// Inc adds one
func (c *Counter) Inc(labelValues ...string) {
	c.Add(1, labelValues...)
}

// Add adds delta
func (c *Counter) Add(delta uint64, labelValues ...string) {
	key := c.labelsToKey(labelValues)
	val, _ := c.values.LoadOrStore(key, new(uint64))
	atomic.AddUint64(val.(*uint64), delta)
}

// Value returns the current count for the label values
func (c *Counter) Value(labelValues ...string) uint64 {
	val, ok := c.values.Load(c.labelsToKey(labelValues))
	if !ok {
		return 0
	}
	return atomic.LoadUint64(val.(*uint64))
}

func (c *Counter) labelsToKey(values []string) string {
	if len(c.labels) == 0 || len(values) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(c.labels))
	for i, label := range c.labels {
		if i < len(values) {
			pairs = append(pairs, fmt.Sprintf("%s=%q", label, values[i]))
		}
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func (c *Counter) write(w io.Writer) {
	fmt.Fprintf(w, "# HELP %s %s\n", c.name, c.help)
	fmt.Fprintf(w, "# TYPE %s counter\n", c.name)

	var keys []string
	c.values.Range(func(key, _ interface{}) bool {
		keys = append(keys, key.(string))
		return true
	})
	sort.Strings(keys)

	for _, key := range keys {
		val, _ := c.values.Load(key)
		fmt.Fprintf(w, "%s%s %d\n", c.name, key, atomic.LoadUint64(val.(*uint64)))
	}
	fmt.Fprintln(w)
}

// Observe records one value
func (h *Histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sum += value
	h.count++

	idx := len(h.buckets)
	for i, bound := range h.buckets {
		if value <= bound {
			idx = i
			break
		}
	}
	h.counts[idx]++
}

func (h *Histogram) write(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	fmt.Fprintf(w, "# HELP %s %s\n", h.name, h.help)
	fmt.Fprintf(w, "# TYPE %s histogram\n", h.name)

	var cumulative uint64
	for i, bound := range h.buckets {
		cumulative += h.counts[i]
		fmt.Fprintf(w, "%s_bucket{le=\"%g\"} %d\n", h.name, bound, cumulative)
	}
	cumulative += h.counts[len(h.buckets)]
	fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", h.name, cumulative)
	fmt.Fprintf(w, "%s_sum %.6f\n", h.name, h.sum)
	fmt.Fprintf(w, "%s_count %d\n\n", h.name, h.count)
}

// Set replaces the gauge value
func (g *Gauge) Set(value float64) {
	g.value.Store(math.Float64bits(value))
}

// Value returns the gauge value
func (g *Gauge) Value() float64 {
	return math.Float64frombits(g.value.Load())
}

func (g *Gauge) write(w io.Writer) {
	fmt.Fprintf(w, "# HELP %s %s\n", g.name, g.help)
	fmt.Fprintf(w, "# TYPE %s gauge\n", g.name)
	fmt.Fprintf(w, "%s %g\n\n", g.name, g.Value())
}

// handleMetrics handles the /metrics endpoint
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	stats := s.engine.Stats()
	s.metrics.habitWords.Set(float64(stats.HabitWords))
	s.metrics.dictionaryWords.Set(float64(stats.DictionaryWords))
	s.metrics.trackedWords.Set(float64(stats.TrackedWords))
	if s.recorder != nil {
		s.metrics.pendingRecordings.Set(float64(s.recorder.pending()))
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	s.metrics.WritePrometheus(w)
}
