// Package profiler provides lightweight runtime monitoring for the fire
// detection loop: per-stage operation timers, custom metric collectors, and
// periodic console reports. It is thread-safe and adds negligible overhead
// at webcam frame rates.
package profiler

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"
)

// MetricsCollector is implemented by components (e.g. the fire classifier)
// that want their counters included in periodic reports.
type MetricsCollector interface {
	CollectMetrics() map[string]float64
}

// Options configures the runtime profiler.
type Options struct {
	// ReportInterval is how often a status report is printed (default 2s).
	ReportInterval time.Duration
}

// stageTimer accumulates timing statistics for one named pipeline stage.
type stageTimer struct {
	total time.Duration
	min   time.Duration
	max   time.Duration
	count int64
}

// metric accumulates statistics for one named gauge.
type metric struct {
	last  float64
	min   float64
	max   float64
	sum   float64
	count int64
}

// RuntimeProfiler tracks pipeline stage timings alongside system stats.
type RuntimeProfiler struct {
	reportInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	running    bool
	startTime  time.Time
	stages     map[string]*stageTimer
	metrics    map[string]*metric
	collectors []MetricsCollector
}

// New creates a runtime profiler. Zero option fields get defaults.
func New(opts Options) *RuntimeProfiler {
	if opts.ReportInterval == 0 {
		opts.ReportInterval = 2 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		stages:         make(map[string]*stageTimer),
		metrics:        make(map[string]*metric),
	}
}

// AddCollector registers a metrics collector to be polled at report time.
func (rp *RuntimeProfiler) AddCollector(c MetricsCollector) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.collectors = append(rp.collectors, c)
}

// StartStage begins timing a named stage and returns a function that stops
// the timer when called.
//
// Usage:
//
//	stop := prof.StartStage("segment")
//	mask := seg.Apply(hsv)
//	stop()
func (rp *RuntimeProfiler) StartStage(name string) func() {
	start := time.Now()
	return func() {
		rp.recordStage(name, time.Since(start))
	}
}

func (rp *RuntimeProfiler) recordStage(name string, d time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	t, ok := rp.stages[name]
	if !ok {
		t = &stageTimer{min: d, max: d}
		rp.stages[name] = t
	}
	t.total += d
	t.count++
	if d < t.min {
		t.min = d
	}
	if d > t.max {
		t.max = d
	}
}

// Record stores a custom gauge value.
func (rp *RuntimeProfiler) Record(name string, value float64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.record(name, value)
}

func (rp *RuntimeProfiler) record(name string, value float64) {
	m, ok := rp.metrics[name]
	if !ok {
		m = &metric{min: value, max: value}
		rp.metrics[name] = m
	}
	m.last = value
	m.sum += value
	m.count++
	if value < m.min {
		m.min = value
	}
	if value > m.max {
		m.max = value
	}
}

// Start launches the periodic report goroutine. Safe to call once.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	if rp.running {
		return
	}
	rp.running = true
	rp.startTime = time.Now()

	rp.wg.Add(1)
	go func() {
		defer rp.wg.Done()
		ticker := time.NewTicker(rp.reportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-rp.ctx.Done():
				return
			case <-ticker.C:
				rp.report()
			}
		}
	}()
}

// Stop terminates the report goroutine and waits for it to exit.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	rp.mu.Unlock()

	rp.cancel()
	rp.wg.Wait()
}

// report polls collectors and prints one status block.
func (rp *RuntimeProfiler) report() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	for _, c := range rp.collectors {
		for name, value := range c.CollectMetrics() {
			rp.record(name, value)
		}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	fmt.Printf("--- profiler: uptime %s | heap %.1f MB | goroutines %d ---\n",
		time.Since(rp.startTime).Round(time.Second),
		float64(ms.HeapAlloc)/1024/1024, runtime.NumGoroutine())

	names := make([]string, 0, len(rp.stages))
	for name := range rp.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := rp.stages[name]
		avg := time.Duration(int64(t.total) / t.count)
		fmt.Printf("    stage %-12s avg=%s min=%s max=%s n=%d\n",
			name, avg.Round(time.Microsecond), t.min.Round(time.Microsecond),
			t.max.Round(time.Microsecond), t.count)
	}

	names = names[:0]
	for name := range rp.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m := rp.metrics[name]
		fmt.Printf("    metric %-20s last=%.2f min=%.2f max=%.2f\n",
			name, m.last, m.min, m.max)
	}
}
