package monitor

import (
	"testing"
	"time"

	"github.com/pipedeck/pipedeck/models"
)

func TestRealisticMetricStaysInBounds(t *testing.T) {
	for _, b := range []metricBounds{cpuBounds, memoryBounds, diskBounds, networkBounds} {
		for i := 0; i < 1000; i++ {
			v := realisticMetric(b)
			if v < b.min || v > b.max {
				t.Fatalf("sample %d outside [%d, %d]", v, b.min, b.max)
			}
		}
	}
}

func TestSampleMetricsPopulatesAllFields(t *testing.T) {
	now := time.Now()
	m := sampleMetrics(now)
	if !m.Timestamp.Equal(now) {
		t.Fatalf("timestamp = %v, want %v", m.Timestamp, now)
	}
	if m.CPU < cpuBounds.min || m.CPU > cpuBounds.max {
		t.Fatalf("cpu %d outside bounds", m.CPU)
	}
	if m.Memory < memoryBounds.min || m.Memory > memoryBounds.max {
		t.Fatalf("memory %d outside bounds", m.Memory)
	}
	if m.Disk < diskBounds.min || m.Disk > diskBounds.max {
		t.Fatalf("disk %d outside bounds", m.Disk)
	}
	if m.Network < networkBounds.min || m.Network > networkBounds.max {
		t.Fatalf("network %d outside bounds", m.Network)
	}
}

func TestAppendMetricEvictsOldestBeyondCapacity(t *testing.T) {
	svc := New(testConfig("web"), &fakeProvider{})
	defer svc.Close()

	base := time.Now()
	for i := 0; i < metricsCapacity+20; i++ {
		svc.appendMetric(models.SystemMetrics{CPU: i, Timestamp: base.Add(time.Duration(i) * time.Second)})
	}

	history := svc.MetricsHistory(24)
	if len(history) != metricsCapacity {
		t.Fatalf("buffer length = %d, want %d", len(history), metricsCapacity)
	}
	// Oldest 20 samples were evicted.
	if history[0].CPU != 20 {
		t.Fatalf("oldest surviving sample CPU = %d, want 20", history[0].CPU)
	}
	if history[len(history)-1].CPU != metricsCapacity+19 {
		t.Fatalf("newest sample CPU = %d", history[len(history)-1].CPU)
	}
}

func TestCurrentMetricsNilBeforeFirstSample(t *testing.T) {
	svc := New(testConfig("web"), &fakeProvider{})
	defer svc.Close()

	if m := svc.CurrentMetrics(); m != nil {
		t.Fatalf("expected nil before first sample, got %+v", m)
	}

	svc.appendMetric(models.SystemMetrics{CPU: 55, Timestamp: time.Now()})
	m := svc.CurrentMetrics()
	if m == nil || m.CPU != 55 {
		t.Fatalf("unexpected current sample: %+v", m)
	}
}

func TestMetricsHistoryAppliesCutoff(t *testing.T) {
	svc := New(testConfig("web"), &fakeProvider{})
	defer svc.Close()

	now := time.Now()
	svc.appendMetric(models.SystemMetrics{CPU: 1, Timestamp: now.Add(-3 * time.Hour)})
	svc.appendMetric(models.SystemMetrics{CPU: 2, Timestamp: now.Add(-30 * time.Minute)})
	svc.appendMetric(models.SystemMetrics{CPU: 3, Timestamp: now})

	got := svc.MetricsHistory(1)
	if len(got) != 2 {
		t.Fatalf("expected 2 samples inside the window, got %d", len(got))
	}
	if got[0].CPU != 2 || got[1].CPU != 3 {
		t.Fatalf("wrong samples survived the cutoff: %+v", got)
	}
}
