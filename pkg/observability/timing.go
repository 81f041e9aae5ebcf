package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation and reports it to metrics and, when set, a
// logger at Debug.
type Timer struct {
	operation string
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
	tags      []Tag
}

// StartTimer starts timing operation.
func StartTimer(operation string) *Timer {
	return &Timer{operation: operation, start: time.Now(), metrics: NoopMetrics{}}
}

// WithLogger logs the duration when the timer stops.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics records the duration and outcome.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	if metrics != nil {
		t.metrics = metrics
	}
	return t
}

// WithTags labels the recorded metrics.
func (t *Timer) WithTags(tags ...Tag) *Timer {
	t.tags = append(t.tags, tags...)
	return t
}

// Stop records a successful run.
func (t *Timer) Stop() time.Duration {
	return t.StopWithError(nil)
}

// StopWithError records the run and counts it as failed when err is set.
func (t *Timer) StopWithError(err error) time.Duration {
	d := time.Since(t.start)
	tags := append(t.tags[:len(t.tags):len(t.tags)], T("operation", t.operation))

	t.metrics.Timing(MetricOperationDuration, d, tags...)
	t.metrics.Counter(MetricOperationTotal, 1, tags...)
	if err != nil {
		t.metrics.Counter(MetricOperationErrors, 1, tags...)
	}

	if t.logger != nil {
		args := []any{OperationKey, t.operation, DurationKey, d.Milliseconds()}
		if err != nil {
			args = append(args, ErrorKey, err)
		}
		t.logger.Debug("operation finished", args...)
	}
	return d
}
