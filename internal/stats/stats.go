// Package stats tracks session statistics for the assistant.
package stats

import (
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/flynn-ai/deskpilot/internal/intent"
)

// Collector collects and tracks command statistics. Safe for concurrent use.
type Collector struct {
	mu            sync.Mutex
	startTime     time.Time
	commandCount  int64
	errorCount    int64
	unrecognized  int64
	totalDuration int64 // nanoseconds
	byIntent      map[intent.Intent]int64
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		byIntent:  make(map[intent.Intent]int64),
	}
}

// Stats represents session statistics at a point in time.
type Stats struct {
	// System resources
	MemoryStats MemoryStats `json:"memory" yaml:"memory"`
	Goroutines  int         `json:"goroutines" yaml:"goroutines"`
	Uptime      string      `json:"uptime" yaml:"uptime"`

	// Command metrics
	CommandCount      int64        `json:"command_count" yaml:"command_count"`
	ErrorCount        int64        `json:"error_count" yaml:"error_count"`
	UnrecognizedCount int64        `json:"unrecognized_count" yaml:"unrecognized_count"`
	AvgLatencyMs      float64      `json:"avg_latency_ms" yaml:"avg_latency_ms"`
	ByIntent          []IntentStat `json:"by_intent" yaml:"by_intent"`
}

// IntentStat is the number of commands dispatched for one intent.
type IntentStat struct {
	Intent intent.Intent `json:"intent" yaml:"intent"`
	Count  int64         `json:"count" yaml:"count"`
}

// MemoryStats represents memory usage statistics.
type MemoryStats struct {
	HeapAllocMB float64 `json:"heap_alloc_mb" yaml:"heap_alloc_mb"`
	HeapSysMB   float64 `json:"heap_sys_mb" yaml:"heap_sys_mb"`
	NumGC       uint32  `json:"num_gc" yaml:"num_gc"`
}

// Collect returns current statistics.
func (c *Collector) Collect() *Stats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.mu.Lock()
	defer c.mu.Unlock()

	avgLatency := float64(0)
	if c.commandCount > 0 {
		avgLatency = float64(c.totalDuration) / float64(c.commandCount) / 1e6 // nanos to millis
	}

	byIntent := make([]IntentStat, 0, len(c.byIntent))
	for i, n := range c.byIntent {
		byIntent = append(byIntent, IntentStat{Intent: i, Count: n})
	}
	sort.Slice(byIntent, func(a, b int) bool {
		if byIntent[a].Count != byIntent[b].Count {
			return byIntent[a].Count > byIntent[b].Count
		}
		return byIntent[a].Intent < byIntent[b].Intent
	})

	return &Stats{
		MemoryStats: MemoryStats{
			HeapAllocMB: bytesToMB(int64(m.HeapAlloc)),
			HeapSysMB:   bytesToMB(int64(m.HeapSys)),
			NumGC:       m.NumGC,
		},
		Goroutines:        runtime.NumGoroutine(),
		Uptime:            time.Since(c.startTime).Round(time.Second).String(),
		CommandCount:      c.commandCount,
		ErrorCount:        c.errorCount,
		UnrecognizedCount: c.unrecognized,
		AvgLatencyMs:      avgLatency,
		ByIntent:          byIntent,
	}
}

// RecordCommand records a dispatched command. failed marks commands that
// ended in an error result.
func (c *Collector) RecordCommand(i intent.Intent, duration time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.commandCount++
	c.totalDuration += duration.Nanoseconds()
	c.byIntent[i]++
	if i == intent.Unknown {
		c.unrecognized++
	}
	if failed {
		c.errorCount++
	}
}

// StartTime returns when the collector started.
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// GetMetrics returns the raw counters.
func (c *Collector) GetMetrics() (commands, errors int64, totalDuration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandCount, c.errorCount, time.Duration(c.totalDuration)
}

// bytesToMB converts bytes to megabytes.
func bytesToMB(b int64) float64 {
	return float64(b) / 1024 / 1024
}
