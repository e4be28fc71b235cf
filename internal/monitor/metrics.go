package monitor

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/pipedeck/pipedeck/models"
)

// metricsCapacity bounds the rolling sample buffer. Eviction is purely
// count-based FIFO; history queries apply their own time cutoff on top.
const metricsCapacity = 100

// Per-field sampling bounds and jitter, matching the dashboard's original
// tuning.
var (
	cpuBounds     = metricBounds{min: 40, max: 90, volatility: 5}
	memoryBounds  = metricBounds{min: 50, max: 95, volatility: 3}
	diskBounds    = metricBounds{min: 60, max: 85, volatility: 2}
	networkBounds = metricBounds{min: 20, max: 80, volatility: 8}
)

type metricBounds struct {
	min, max   int
	volatility float64
}

// runCollector appends one sample per interval until Close is called.
func (s *Service) runCollector(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-t.C:
			s.appendMetric(sampleMetrics(now))
		}
	}
}

func (s *Service) appendMetric(m models.SystemMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, m)
	if len(s.metrics) > metricsCapacity {
		s.metrics = s.metrics[len(s.metrics)-metricsCapacity:]
	}
}

func sampleMetrics(now time.Time) models.SystemMetrics {
	return models.SystemMetrics{
		CPU:       realisticMetric(cpuBounds),
		Memory:    realisticMetric(memoryBounds),
		Disk:      realisticMetric(diskBounds),
		Network:   realisticMetric(networkBounds),
		Timestamp: now,
	}
}

// realisticMetric draws uniformly over [min,max], layers on zero-mean
// jitter scaled by volatility, and clamps back into range. Deliberately not
// an autoregressive walk: the uniform term dominates by design.
func realisticMetric(b metricBounds) int {
	base := rand.Float64()*float64(b.max-b.min) + float64(b.min)
	trend := (rand.Float64() - 0.5) * b.volatility
	v := base + trend
	if v < float64(b.min) {
		v = float64(b.min)
	}
	if v > float64(b.max) {
		v = float64(b.max)
	}
	return int(math.Round(v))
}
