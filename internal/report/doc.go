// Package report runs the five session reports as registered steps.
//
// A Registry holds the steps; a Runner executes them in a fixed order,
// tracks a StepState per step, and records a span plus run, duration and
// row metrics for each. A failing step is recorded as a StepError and the
// remaining steps still run; the run returns every failure as one
// errors.ErrorList.
package report
