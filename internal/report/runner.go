package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"sessioncli/internal/config"
	reporterrors "sessioncli/internal/errors"
	"sessioncli/internal/infrastructure"
)

// RunnerOptions configure a Runner. Zero values mean every step, no
// tracing and no metrics.
type RunnerOptions struct {
	// Order fixes execution order; defaults to config.ReportOrder
	Order []string
	// Enabled selects steps; nil runs all
	Enabled func(id string) bool

	Tracer trace.Tracer
	Meter  metric.Meter
	Logger *slog.Logger
}

// Runner executes report steps one after another. A failing step never
// prevents the next one from running.
type Runner struct {
	registry *Registry
	order    []string
	enabled  func(id string) bool
	tracer   trace.Tracer
	metrics  *stepMetrics
	logger   *slog.Logger
}

// NewRunner creates a runner over registry
func NewRunner(registry *Registry, opts RunnerOptions) (*Runner, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	order := opts.Order
	if order == nil {
		order = config.ReportOrder
	}
	enabled := opts.Enabled
	if enabled == nil {
		enabled = func(string) bool { return true }
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	meter := opts.Meter
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(infrastructure.InstrumentationName)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := newStepMetrics(meter)
	if err != nil {
		return nil, err
	}

	return &Runner{
		registry: registry,
		order:    order,
		enabled:  enabled,
		tracer:   tracer,
		metrics:  metrics,
		logger:   infrastructure.WithComponent(logger, "report"),
	}, nil
}

// RunResult holds the state of every step of one run
type RunResult struct {
	RunID  string
	States []*StepState
}

// State returns the state of the given step, or nil
func (r *RunResult) State(id string) *StepState {
	for _, s := range r.States {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Failed returns the number of failed steps
func (r *RunResult) Failed() int {
	n := 0
	for _, s := range r.States {
		if s.GetStatus() == StepStatusFailed {
			n++
		}
	}
	return n
}

// Run executes the selected steps in order. The returned error is an
// *errors.ErrorList of *StepError, or nil when every step that ran
// succeeded.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	result := &RunResult{RunID: infrastructure.GetRunID(ctx)}

	steps, err := r.registry.Ordered(r.order)
	if err != nil {
		return result, err
	}

	ctx, span := r.tracer.Start(ctx, "report.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", result.RunID),
			attribute.Int("run.steps", len(steps)),
		),
	)
	defer span.End()

	r.logger.InfoContext(ctx, "run_start", slog.Int("steps", len(steps)))
	start := time.Now()

	var errs reporterrors.ErrorList
	for _, step := range steps {
		state := NewStepState(step.ID(), step.Name())
		result.States = append(result.States, state)

		if !r.enabled(step.ID()) {
			state.Skip("not selected")
			r.metrics.record(ctx, step.ID(), StepStatusSkipped, 0, 0)
			r.logger.DebugContext(ctx, "stage_skipped", slog.String("step", step.ID()))
			continue
		}

		if err := r.runStep(ctx, step, state); err != nil {
			errs.Add(err)
		}
	}

	failed := result.Failed()
	span.SetAttributes(attribute.Int("run.failed", failed))
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d of %d steps failed", failed, len(steps)))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	r.logger.InfoContext(ctx, "run_complete",
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)))

	return result, errs.ErrorOrNil()
}

// runStep executes one step inside its own span. Panics are turned into
// step failures.
func (r *Runner) runStep(ctx context.Context, step Step, state *StepState) (stepErr *StepError) {
	ctx, span := r.tracer.Start(ctx, "report.step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
	defer span.End()

	r.logger.InfoContext(ctx, "stage_start", slog.String("step", step.ID()))
	state.Start()

	defer func() {
		if p := recover(); p != nil {
			stepErr = r.finish(ctx, span, step, state, fmt.Errorf("panic: %v", p))
		}
	}()

	var err error
	if err = ctx.Err(); err == nil {
		err = step.Execute(ctx, state)
	}
	return r.finish(ctx, span, step, state, err)
}

func (r *Runner) finish(ctx context.Context, span trace.Span, step Step, state *StepState, err error) *StepError {
	if err != nil {
		state.Fail(err)
	} else {
		state.Complete()
	}

	elapsed := state.Duration()
	rows := state.GetRows()
	r.metrics.record(ctx, step.ID(), state.GetStatus(), elapsed, rows)
	span.SetAttributes(attribute.Int("step.rows", rows))

	if err == nil {
		span.SetStatus(codes.Ok, "")
		r.logger.InfoContext(ctx, "stage_complete",
			slog.String("step", step.ID()),
			slog.Int("rows", rows),
			slog.Any("outputs", state.GetOutputs()),
			slog.Duration("duration", elapsed))
		return nil
	}

	stepErr := NewStepError(step.ID(), err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.type", string(stepErr.ErrorType())))
	r.logger.ErrorContext(ctx, "stage_error",
		slog.String("step", step.ID()),
		slog.String("error_type", string(stepErr.ErrorType())),
		slog.String("error", err.Error()),
		slog.Duration("duration", elapsed))
	return stepErr
}
