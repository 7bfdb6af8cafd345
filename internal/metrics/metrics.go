// Package metrics collects counters for the discovery pipeline.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector collects and aggregates pipeline metrics.
type Collector struct {
	// Counters
	probesTotal    atomic.Int64
	probeFailures  atomic.Int64
	pagesLocated   atomic.Int64
	aiLookups      atomic.Int64
	endpointsTotal atomic.Int64
	duplicates     atomic.Int64

	// Response time tracking
	responseTimesSum atomic.Int64
	responseTimesNum atomic.Int64

	// Per-strategy endpoint breakdown
	strategyCounts map[string]*atomic.Int64
	strategyMu     sync.RWMutex

	// Status code breakdown
	statusCodes map[int]*atomic.Int64
	statusMu    sync.RWMutex

	startTime time.Time
}

// New creates a new metrics collector.
func New() *Collector {
	return &Collector{
		strategyCounts: make(map[string]*atomic.Int64),
		statusCodes:    make(map[int]*atomic.Int64),
		startTime:      time.Now(),
	}
}

// RecordProbe records a candidate probe and its outcome.
func (c *Collector) RecordProbe(statusCode int, d time.Duration, failed bool) {
	c.probesTotal.Add(1)
	if failed {
		c.probeFailures.Add(1)
	}

	c.responseTimesSum.Add(d.Milliseconds())
	c.responseTimesNum.Add(1)

	if statusCode > 0 {
		c.statusMu.Lock()
		if c.statusCodes[statusCode] == nil {
			c.statusCodes[statusCode] = &atomic.Int64{}
		}
		c.statusCodes[statusCode].Add(1)
		c.statusMu.Unlock()
	}
}

// RecordPageLocated records a successfully located documentation page.
func (c *Collector) RecordPageLocated() {
	c.pagesLocated.Add(1)
}

// RecordAILookup records an AI fallback invocation.
func (c *Collector) RecordAILookup() {
	c.aiLookups.Add(1)
}

// RecordEndpoints records endpoints produced by a strategy.
func (c *Collector) RecordEndpoints(strategy string, count int) {
	c.endpointsTotal.Add(int64(count))

	c.strategyMu.Lock()
	if c.strategyCounts[strategy] == nil {
		c.strategyCounts[strategy] = &atomic.Int64{}
	}
	c.strategyCounts[strategy].Add(int64(count))
	c.strategyMu.Unlock()
}

// RecordDuplicate records a record dropped by de-duplication.
func (c *Collector) RecordDuplicate() {
	c.duplicates.Add(1)
}

// Snapshot is a point-in-time view of the collected metrics.
type Snapshot struct {
	ProbesTotal     int64            `json:"probes_total"`
	ProbeFailures   int64            `json:"probe_failures"`
	PagesLocated    int64            `json:"pages_located"`
	AILookups       int64            `json:"ai_lookups"`
	EndpointsTotal  int64            `json:"endpoints_total"`
	Duplicates      int64            `json:"duplicates"`
	AvgResponseMS   int64            `json:"avg_response_ms"`
	ByStrategy      map[string]int64 `json:"by_strategy"`
	ByStatusCode    map[int]int64    `json:"by_status_code"`
	UptimeSeconds   float64          `json:"uptime_seconds"`
}

// Snapshot returns the current metric values.
func (c *Collector) Snapshot() Snapshot {
	snap := Snapshot{
		ProbesTotal:    c.probesTotal.Load(),
		ProbeFailures:  c.probeFailures.Load(),
		PagesLocated:   c.pagesLocated.Load(),
		AILookups:      c.aiLookups.Load(),
		EndpointsTotal: c.endpointsTotal.Load(),
		Duplicates:     c.duplicates.Load(),
		ByStrategy:     make(map[string]int64),
		ByStatusCode:   make(map[int]int64),
		UptimeSeconds:  time.Since(c.startTime).Seconds(),
	}

	if n := c.responseTimesNum.Load(); n > 0 {
		snap.AvgResponseMS = c.responseTimesSum.Load() / n
	}

	c.strategyMu.RLock()
	for k, v := range c.strategyCounts {
		snap.ByStrategy[k] = v.Load()
	}
	c.strategyMu.RUnlock()

	c.statusMu.RLock()
	for k, v := range c.statusCodes {
		snap.ByStatusCode[k] = v.Load()
	}
	c.statusMu.RUnlock()

	return snap
}
