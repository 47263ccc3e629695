// Package metrics keeps in-process latency figures for collection mutations.
package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// DefaultMaxSamples bounds a histogram created with a non-positive size.
const DefaultMaxSamples = 10000

// Histogram tracks a bounded window of durations in milliseconds.
type Histogram struct {
	mu      sync.RWMutex
	samples []float64
	maxSize int
	total   int
}

// Summary is a point-in-time view of a histogram.
type Summary struct {
	Count  int     `json:"count"`
	MeanMs float64 `json:"meanMs"`
	P50Ms  float64 `json:"p50Ms"`
	P95Ms  float64 `json:"p95Ms"`
	MaxMs  float64 `json:"maxMs"`
}

// NewHistogram creates a histogram keeping at most maxSize samples.
// Once full, the oldest fifth is dropped.
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = DefaultMaxSamples
	}
	return &Histogram{
		samples: make([]float64, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record adds a duration sample.
func (h *Histogram) Record(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.samples = append(h.samples, float64(d.Microseconds())/1000.0)
	h.total++
	if len(h.samples) > h.maxSize {
		h.samples = h.samples[max(h.maxSize/5, 1):]
	}
}

// Count returns the number of samples ever recorded, including trimmed ones.
func (h *Histogram) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// Percentile returns the interpolated value at p (0-100) over the window.
func (h *Histogram) Percentile(p float64) float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return percentile(sortedCopy(h.samples), p)
}

// Summary computes count, mean, p50, p95 and max in one pass over the window.
func (h *Histogram) Summary() Summary {
	h.mu.RLock()
	sorted := sortedCopy(h.samples)
	total := h.total
	h.mu.RUnlock()

	s := Summary{Count: total}
	if len(sorted) == 0 {
		return s
	}

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	s.MeanMs = sum / float64(len(sorted))
	s.P50Ms = percentile(sorted, 50)
	s.P95Ms = percentile(sorted, 95)
	s.MaxMs = sorted[len(sorted)-1]
	return s
}

// Reset clears all samples.
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = h.samples[:0]
	h.total = 0
}

func sortedCopy(samples []float64) []float64 {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	return sorted
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	fraction := index - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[upper]*fraction
}
