package report

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names
const (
	MetricStepRuns     = "sessioncli.report.runs"
	MetricStepDuration = "sessioncli.report.duration"
	MetricStepRows     = "sessioncli.report.rows"
)

// stepMetrics holds the instruments recorded once per step
type stepMetrics struct {
	runs     metric.Int64Counter
	duration metric.Float64Histogram
	rows     metric.Int64Counter
}

func newStepMetrics(meter metric.Meter) (*stepMetrics, error) {
	runs, err := meter.Int64Counter(MetricStepRuns,
		metric.WithDescription("Report step executions by outcome"),
		metric.WithUnit("{run}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricStepRuns, err)
	}

	duration, err := meter.Float64Histogram(MetricStepDuration,
		metric.WithDescription("Report step execution time"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricStepDuration, err)
	}

	rows, err := meter.Int64Counter(MetricStepRows,
		metric.WithDescription("Rows or points produced by report steps"),
		metric.WithUnit("{row}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", MetricStepRows, err)
	}

	return &stepMetrics{runs: runs, duration: duration, rows: rows}, nil
}

func (m *stepMetrics) record(ctx context.Context, stepID string, status StepStatus, elapsed time.Duration, rows int) {
	step := attribute.String("report", stepID)

	m.runs.Add(ctx, 1, metric.WithAttributes(step, attribute.String("status", string(status))))
	if status == StepStatusSkipped {
		return
	}
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(step))
	if rows > 0 {
		m.rows.Add(ctx, int64(rows), metric.WithAttributes(step))
	}
}
