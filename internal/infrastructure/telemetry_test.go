package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessioncli/internal/config"
)

func TestInitializeTelemetry_MetricsFile(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "sessionreports.prom")

	tel, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName: "test",
		MetricsFile: metricsFile,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	counter, err := tel.Meter.Int64Counter("test_reports")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	// Tracing disabled still yields a usable tracer
	_, span := tel.Tracer.Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())

	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "test_reports_total")
}

func TestInitializeTelemetry_TraceFile(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "trace.json")

	tel, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName:    "test",
		TracingEnabled: true,
		TraceFile:      traceFile,
	}, nil)
	require.NoError(t, err)

	_, span := tel.Tracer.Start(context.Background(), "report.test")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "report.test")
}

func TestInitializeTelemetry_BadTraceFile(t *testing.T) {
	_, err := InitializeTelemetry(config.TelemetryConfig{
		ServiceName:    "test",
		TracingEnabled: true,
		TraceFile:      filepath.Join(t.TempDir(), "missing", "dir", "trace.json"),
	}, nil)
	require.Error(t, err)
}
