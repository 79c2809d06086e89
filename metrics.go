package credauth

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricLoginAuthenticated counts fully successful logins.
	MetricLoginAuthenticated MetricID = iota
	// MetricLoginInvalid counts failed verifications.
	MetricLoginInvalid
	// MetricLoginNoPassword counts logins routed to the password-set flow.
	MetricLoginNoPassword
	// MetricLoginDefaultPassword counts logins flagged for mandatory rotation.
	MetricLoginDefaultPassword
	// MetricLoginUnauthorized counts verified logins lacking authorization.
	MetricLoginUnauthorized
	// MetricLoginStoreFailure counts store faults during login.
	MetricLoginStoreFailure
	// MetricPasswordSet counts successful password-set operations.
	MetricPasswordSet
	// MetricPasswordSetRejected counts password-set validation rejections.
	MetricPasswordSetRejected
	// MetricEntropyFallback counts salts generated by the degraded random source.
	MetricEntropyFallback
	// MetricKDFSoftware counts derivations routed to the software backend.
	MetricKDFSoftware
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the engine's atomic counters. All methods are safe on a nil
// receiver so disabled metrics cost a single branch.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics returns a counter set, inert unless cfg enables it.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
