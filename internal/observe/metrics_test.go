package observe

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		t.Fatalf("metric %s not found", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s is %T, want Sum[int64]", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordCycle(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordCycle(ctx, 40*time.Millisecond, 3)
	m.RecordCycle(ctx, 60*time.Millisecond, 2)

	rm := collect(t, reader)
	if got := sumValue(t, rm, "vocalpath.cycles"); got != 2 {
		t.Errorf("cycles = %d, want 2", got)
	}
	if got := sumValue(t, rm, "vocalpath.detections"); got != 5 {
		t.Errorf("detections = %d, want 5", got)
	}

	hist, ok := findMetric(rm, "vocalpath.cycle.duration").Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatal("cycle duration is not a float histogram")
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 2 {
		t.Errorf("unexpected histogram points %+v", hist.DataPoints)
	}
}

func TestCountersWithAttributes(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordPhrase(ctx, "steps")
	m.RecordPhrase(ctx, "steps")
	m.RecordPhrase(ctx, "found")
	m.RecordTransition(ctx, "stopped", "running")
	m.RecordInferenceError(ctx, "yolo")
	m.RecordSideTask(ctx, "identified")
	m.RecordFramesDropped(ctx, 4)
	m.RecordFramesDropped(ctx, 0)

	rm := collect(t, reader)
	phrases := findMetric(rm, "vocalpath.phrases").Data.(metricdata.Sum[int64])
	if len(phrases.DataPoints) != 2 {
		t.Errorf("expected one series per kind, got %d", len(phrases.DataPoints))
	}
	if got := sumValue(t, rm, "vocalpath.phrases"); got != 3 {
		t.Errorf("phrases = %d, want 3", got)
	}
	if got := sumValue(t, rm, "vocalpath.frames.dropped"); got != 4 {
		t.Errorf("frames dropped = %d, want 4", got)
	}
	for _, name := range []string{"vocalpath.transitions", "vocalpath.inference.errors", "vocalpath.side_tasks"} {
		if got := sumValue(t, rm, name); got != 1 {
			t.Errorf("%s = %d, want 1", name, got)
		}
	}
}

func TestActiveSessions(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.AddActiveSessions(ctx, 1)
	m.AddActiveSessions(ctx, 1)
	m.AddActiveSessions(ctx, -1)

	if got := sumValue(t, collect(t, reader), "vocalpath.active_sessions"); got != 1 {
		t.Errorf("active sessions = %d, want 1", got)
	}
}
