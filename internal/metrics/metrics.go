package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// GatewayStats counts calls made to the payment gateway.
// Failures are exchanges that produced no response; HTTPErrors are 4xx/5xx answers.
type GatewayStats struct {
	Requests   Counter
	Failures   Counter
	HTTPErrors Counter
	latencyNS  Counter
}

func (s *GatewayStats) Observe(d time.Duration) {
	if d > 0 {
		s.latencyNS.Add(uint64(d))
	}
}

type Snapshot struct {
	Requests     uint64  `json:"requests"`
	Failures     uint64  `json:"failures"`
	HTTPErrors   uint64  `json:"http_errors"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
}

func (s *GatewayStats) Snapshot() Snapshot {
	snap := Snapshot{
		Requests:   s.Requests.Load(),
		Failures:   s.Failures.Load(),
		HTTPErrors: s.HTTPErrors.Load(),
	}
	if snap.Requests > 0 {
		snap.AvgLatencyMS = float64(s.latencyNS.Load()) / float64(snap.Requests) / float64(time.Millisecond)
	}
	return snap
}

// Viva is the process-wide gateway counter set.
var Viva GatewayStats
