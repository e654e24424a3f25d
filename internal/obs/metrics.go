// Package obs carries the gateway's observability: the rolling metrics
// core, Prometheus export, cost estimation, and usage persistence.
package obs

import (
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// bucket holds one second of counters.
type bucket struct {
	requests     int64
	inputTokens  int64
	outputTokens int64
}

// Snapshot is a point-in-time view of the derived metrics.
type Snapshot struct {
	RPM            int64   `json:"rpm"`
	TPM            int64   `json:"tpm"`
	TPS            int64   `json:"tps"`
	TTPSInstant    float64 `json:"ttpsInstant"`
	TTPSAvg        float64 `json:"ttpsAvg"`
	TotalRequests  int64   `json:"totalRequests"`
	TotalInTokens  int64   `json:"totalInputTokens"`
	TotalOutTokens int64   `json:"totalOutputTokens"`
	ActiveRequests int64   `json:"activeRequests"`
	TotalErrors    int64   `json:"totalErrors"`
}

// Metrics is a rolling-60-second ring of per-second buckets plus cumulative
// totals. Recording is lock-free; rotation runs on a background ticker.
type Metrics struct {
	ring   [ringSize]bucket
	cursor atomic.Int64

	totalRequests  atomic.Int64
	totalInTokens  atomic.Int64
	totalOutTokens atomic.Int64
	activeRequests atomic.Int64
	totalErrors    atomic.Int64

	mu          sync.Mutex
	subscribers []chan Snapshot
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewMetrics starts the rotation and publish loops.
func NewMetrics() *Metrics {
	m := &Metrics{stop: make(chan struct{})}
	go m.rotateLoop()
	go m.publishLoop()
	return m
}

// Close stops the background loops.
func (m *Metrics) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *Metrics) rotateLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			next := (m.cursor.Load() + 1) % ringSize
			b := &m.ring[next]
			atomic.StoreInt64(&b.requests, 0)
			atomic.StoreInt64(&b.inputTokens, 0)
			atomic.StoreInt64(&b.outputTokens, 0)
			m.cursor.Store(next)
		case <-m.stop:
			return
		}
	}
}

// RequestStarted bumps the active-request gauge.
func (m *Metrics) RequestStarted() {
	m.activeRequests.Add(1)
}

// RequestFinished records one completed request in the current second.
func (m *Metrics) RequestFinished(inputTokens, outputTokens int) {
	m.activeRequests.Add(-1)
	b := &m.ring[m.cursor.Load()]
	atomic.AddInt64(&b.requests, 1)
	atomic.AddInt64(&b.inputTokens, int64(inputTokens))
	atomic.AddInt64(&b.outputTokens, int64(outputTokens))
	m.totalRequests.Add(1)
	m.totalInTokens.Add(int64(inputTokens))
	m.totalOutTokens.Add(int64(outputTokens))
}

// RequestFailed records a failed request.
func (m *Metrics) RequestFailed() {
	m.activeRequests.Add(-1)
	m.totalErrors.Add(1)
	m.totalRequests.Add(1)
	b := &m.ring[m.cursor.Load()]
	atomic.AddInt64(&b.requests, 1)
}

// Snapshot derives the exported rates from the ring.
func (m *Metrics) Snapshot() Snapshot {
	var rpm, tpm int64
	cursor := m.cursor.Load()
	for i := 0; i < ringSize; i++ {
		b := &m.ring[i]
		rpm += atomic.LoadInt64(&b.requests)
		tpm += atomic.LoadInt64(&b.inputTokens) + atomic.LoadInt64(&b.outputTokens)
	}

	// The last fully completed second sits one slot behind the cursor.
	last := &m.ring[(cursor+ringSize-1)%ringSize]
	tps := atomic.LoadInt64(&last.requests)
	instant := float64(atomic.LoadInt64(&last.inputTokens) + atomic.LoadInt64(&last.outputTokens))

	return Snapshot{
		RPM:            rpm,
		TPM:            tpm,
		TPS:            tps,
		TTPSInstant:    instant,
		TTPSAvg:        float64(tpm) / ringSize,
		TotalRequests:  m.totalRequests.Load(),
		TotalInTokens:  m.totalInTokens.Load(),
		TotalOutTokens: m.totalOutTokens.Load(),
		ActiveRequests: m.activeRequests.Load(),
		TotalErrors:    m.totalErrors.Load(),
	}
}

// Subscribe returns a channel receiving snapshots at roughly 3 Hz. Slow
// consumers drop snapshots rather than block the publisher.
func (m *Metrics) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel returned by Subscribe.
func (m *Metrics) Unsubscribe(ch <-chan Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			return
		}
	}
}

func (m *Metrics) publishLoop() {
	ticker := time.NewTicker(333 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			if len(m.subscribers) == 0 {
				m.mu.Unlock()
				continue
			}
			snap := m.Snapshot()
			for _, ch := range m.subscribers {
				select {
				case ch <- snap:
				default:
				}
			}
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}
