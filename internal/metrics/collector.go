// Package metrics provides a lightweight, Prometheus-compatible metrics
// collector. It renders text/plain in Prometheus exposition format without
// pulling in the full prometheus/client_golang dependency.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Collector is the global metrics collector.
var Collector = NewCollector()

// MetricsCollector aggregates counters, gauges, and histograms.
type MetricsCollector struct {
	mu         sync.Mutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
	startTime  time.Time
}

// NewCollector creates an empty collector.
func NewCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
		startTime:  time.Now(),
	}
}

// Counter is a monotonically increasing counter.
type Counter struct {
	name  string
	help  string
	value atomic.Int64
}

func (c *Counter) Inc()         { c.value.Add(1) }
func (c *Counter) Add(n int64)  { c.value.Add(n) }
func (c *Counter) Value() int64 { return c.value.Load() }

// Gauge is a value that can go up and down.
type Gauge struct {
	name  string
	help  string
	value atomic.Int64
}

func (g *Gauge) Set(v int64)  { g.value.Store(v) }
func (g *Gauge) Inc()         { g.value.Add(1) }
func (g *Gauge) Dec()         { g.value.Add(-1) }
func (g *Gauge) Value() int64 { return g.value.Load() }

// Histogram tracks the distribution of observed values.
type Histogram struct {
	name    string
	help    string
	mu      sync.Mutex
	count   int64
	sum     float64
	buckets []histBucket
}

type histBucket struct {
	le    float64
	count int64
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += v
	for i := range h.buckets {
		if v <= h.buckets[i].le {
			h.buckets[i].count++
		}
	}
}

// Counter returns or creates a counter with the given name.
func (c *MetricsCollector) Counter(name, help string) *Counter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctr, ok := c.counters[name]; ok {
		return ctr
	}
	ctr := &Counter{name: name, help: help}
	c.counters[name] = ctr
	return ctr
}

// Gauge returns or creates a gauge with the given name.
func (c *MetricsCollector) Gauge(name, help string) *Gauge {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.gauges[name]; ok {
		return g
	}
	g := &Gauge{name: name, help: help}
	c.gauges[name] = g
	return g
}

// Histogram returns or creates a histogram with the given bucket bounds.
func (c *MetricsCollector) Histogram(name, help string, buckets []float64) *Histogram {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h, ok := c.histograms[name]; ok {
		return h
	}
	sort.Float64s(buckets)
	hb := make([]histBucket, len(buckets))
	for i, b := range buckets {
		hb[i] = histBucket{le: b}
	}
	h := &Histogram{name: name, help: help, buckets: hb}
	c.histograms[name] = h
	return h
}

// Handler renders the metrics in Prometheus text format.
func (c *MetricsCollector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		var sb strings.Builder
		fmt.Fprintf(&sb, "# HELP ticketbot_uptime_seconds Time since start in seconds\n")
		fmt.Fprintf(&sb, "# TYPE ticketbot_uptime_seconds gauge\n")
		fmt.Fprintf(&sb, "ticketbot_uptime_seconds %d\n\n", int64(time.Since(c.startTime).Seconds()))

		c.mu.Lock()
		counters := sortedKeys(c.counters)
		gauges := sortedKeys(c.gauges)
		histograms := sortedKeys(c.histograms)
		c.mu.Unlock()

		for _, name := range counters {
			ctr := c.counters[name]
			fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, ctr.help, name, name, ctr.Value())
		}
		for _, name := range gauges {
			g := c.gauges[name]
			fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s gauge\n%s %d\n", name, g.help, name, name, g.Value())
		}
		for _, name := range histograms {
			h := c.histograms[name]
			h.mu.Lock()
			fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s histogram\n", name, h.help, name)
			for _, b := range h.buckets {
				fmt.Fprintf(&sb, "%s_bucket{le=\"%g\"} %d\n", name, b.le, b.count)
			}
			fmt.Fprintf(&sb, "%s_count %d\n%s_sum %f\n", name, h.count, name, h.sum)
			h.mu.Unlock()
		}

		fmt.Fprint(w, sb.String())
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Pre-defined metrics used across the application.
var (
	MessagesTotal      = Collector.Counter("ticketbot_messages_total", "Total inbound events seen")
	RoutedTotal        = Collector.Counter("ticketbot_routed_total", "Messages matched to a category with keywords present")
	RoutingMisses      = Collector.Counter("ticketbot_routing_misses_total", "Messages ignored: no category or keywords missing")
	FormsShown         = Collector.Counter("ticketbot_forms_shown_total", "Forms sent to users")
	TicketsAuto        = Collector.Counter("ticketbot_tickets_auto_total", "Tickets created from pasted tables")
	TicketsManual      = Collector.Counter("ticketbot_tickets_manual_total", "Tickets created from form submissions")
	SheetWriteFailures = Collector.Counter("ticketbot_sheet_write_failures_total", "Spreadsheet append failures")
	PendingLinks       = Collector.Gauge("ticketbot_pending_links", "Cached deep links awaiting form submission")

	SheetWriteLatency = Collector.Histogram("ticketbot_sheet_write_seconds", "Spreadsheet append latency in seconds",
		[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10})
)
