package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metric names used across the service
const (
	CounterOrdersCreated        = "orders_created"
	CounterOrdersCompleted      = "orders_completed"
	CounterOrdersCancelled      = "orders_cancelled"
	CounterScenarioDirect       = "scenario_direct_fulfillment"
	CounterScenarioWarehouse    = "scenario_warehouse_order"
	CounterScenarioPartial      = "scenario_partial_fulfillment"
	CounterScenarioProduction   = "scenario_production_planning"
	CounterCollaboratorFailures = "collaborator_failures"
	CounterWebhookDeliveries    = "webhook_deliveries"
	CounterStaleSupplyOrders    = "stale_supply_orders"
	TimerFulfillment            = "fulfillment"
)

// Metrics is an in-process metrics collector
type Metrics struct {
	mu       sync.RWMutex
	counters map[string]*int64
	timers   map[string]*timer
}

type timer struct {
	count       int64
	totalTimeMs int64
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Default returns the process-wide metrics collector
func Default() *Metrics {
	once.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

// New creates a metrics collector
func New() *Metrics {
	return &Metrics{
		counters: make(map[string]*int64),
		timers:   make(map[string]*timer),
	}
}

// Increment adds one to a counter
func (m *Metrics) Increment(name string) {
	m.IncrementBy(name, 1)
}

// IncrementBy adds delta to a counter
func (m *Metrics) IncrementBy(name string, delta int64) {
	atomic.AddInt64(m.counter(name), delta)
}

// RecordDuration records one timed operation
func (m *Metrics) RecordDuration(name string, d time.Duration) {
	t := m.timer(name)
	atomic.AddInt64(&t.count, 1)
	atomic.AddInt64(&t.totalTimeMs, d.Milliseconds())
}

// Snapshot returns a point-in-time view of all metrics
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]interface{}, len(m.counters)+len(m.timers))
	for name, v := range m.counters {
		out[name] = atomic.LoadInt64(v)
	}
	for name, t := range m.timers {
		count := atomic.LoadInt64(&t.count)
		total := atomic.LoadInt64(&t.totalTimeMs)
		avg := float64(0)
		if count > 0 {
			avg = float64(total) / float64(count)
		}
		out[name+"_count"] = count
		out[name+"_avg_ms"] = avg
	}
	return out
}

func (m *Metrics) counter(name string) *int64 {
	m.mu.RLock()
	v, ok := m.counters[name]
	m.mu.RUnlock()
	if ok {
		return v
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok = m.counters[name]; ok {
		return v
	}
	v = new(int64)
	m.counters[name] = v
	return v
}

func (m *Metrics) timer(name string) *timer {
	m.mu.RLock()
	t, ok := m.timers[name]
	m.mu.RUnlock()
	if ok {
		return t
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok = m.timers[name]; ok {
		return t
	}
	t = &timer{}
	m.timers[name] = t
	return t
}
