package metrics

import (
	"sync/atomic"
	"time"
)

const (
	// BucketCount is the number of latency buckets, +Inf included.
	BucketCount   = 8
	cacheLineSize = 64
)

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

type histogram struct {
	buckets [BucketCount]uint64
}

// Set is a fixed-size group of counters and histograms indexed by int IDs.
type Set struct {
	enabled       bool
	enableLatency bool
	counters      []paddedCounter
	histograms    []histogram
	latencyIDs    map[int]struct{}
}

// Snapshot is a point-in-time copy of a [Set].
type Snapshot struct {
	Counters   map[int]uint64
	Histograms map[int][]uint64
}

// New returns a Set with n counter slots. latencyIDs names the IDs that
// also record histograms.
func New(n int, enabled, latency bool, latencyIDs ...int) *Set {
	s := &Set{
		enabled:       enabled,
		enableLatency: enabled && latency,
		counters:      make([]paddedCounter, n),
		histograms:    make([]histogram, n),
		latencyIDs:    make(map[int]struct{}, len(latencyIDs)),
	}
	for _, id := range latencyIDs {
		s.latencyIDs[id] = struct{}{}
	}
	return s
}

func (s *Set) Enabled() bool { return s != nil && s.enabled }

func (s *Set) LatencyEnabled() bool { return s != nil && s.enableLatency }

// Inc adds one to counter id.
func (s *Set) Inc(id int) {
	if s == nil || !s.enabled || id < 0 || id >= len(s.counters) {
		return
	}
	atomic.AddUint64(&s.counters[id].value, 1)
}

// Observe records d in histogram id when id is a latency metric.
func (s *Set) Observe(id int, d time.Duration) {
	if s == nil || !s.enableLatency || id < 0 || id >= len(s.histograms) {
		return
	}
	if _, ok := s.latencyIDs[id]; !ok {
		return
	}
	atomic.AddUint64(&s.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns counter id.
func (s *Set) Value(id int) uint64 {
	if s == nil || id < 0 || id >= len(s.counters) {
		return 0
	}
	return atomic.LoadUint64(&s.counters[id].value)
}

// Snapshot copies every counter and the enabled histograms.
func (s *Set) Snapshot() Snapshot {
	if s == nil || !s.enabled {
		return Snapshot{
			Counters:   map[int]uint64{},
			Histograms: map[int][]uint64{},
		}
	}

	out := Snapshot{
		Counters:   make(map[int]uint64, len(s.counters)),
		Histograms: make(map[int][]uint64, len(s.latencyIDs)),
	}
	for id := range s.counters {
		out.Counters[id] = atomic.LoadUint64(&s.counters[id].value)
	}
	if s.enableLatency {
		for id := range s.latencyIDs {
			buckets := make([]uint64, BucketCount)
			for i := 0; i < BucketCount; i++ {
				buckets[i] = atomic.LoadUint64(&s.histograms[id].buckets[i])
			}
			out.Histograms[id] = buckets
		}
	}
	return out
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
