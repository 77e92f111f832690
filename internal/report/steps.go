package report

import (
	"context"
	"fmt"
	"io"
	"os"

	"sessioncli/internal/chart"
	"sessioncli/internal/config"
	"sessioncli/internal/exporter"
	"sessioncli/pkg/contracts/domain"
)

// RowCountTitle heads the daily counts printed to stdout
const RowCountTitle = "Row Count of each column on every day"

// Analyzer computes the five reports. *analysis.Analyzer implements it.
type Analyzer interface {
	FilterSessions(ctx context.Context) ([]domain.UserSession, error)
	DailyFlagCounts(ctx context.Context) ([]domain.DailyFlagCount, error)
	ColumnRatios(ctx context.Context) (*domain.RatioTable, error)
	VisitorSeries(ctx context.Context) (*domain.VisitorSeries, error)
	ExpandPayload(ctx context.Context) ([]domain.PayloadRow, error)
}

// Dependencies are what the report steps read from and write to
type Dependencies struct {
	Analyzer Analyzer
	Exporter *exporter.ReportExporter
	Viewer   chart.Viewer

	Chart     config.ChartConfig
	ChartPath string // empty means the chart is not persisted

	PrintRowCount bool
	Stdout        io.Writer
}

// NewDefaultRegistry registers the five report steps in execution order
func NewDefaultRegistry(deps Dependencies) (*Registry, error) {
	if deps.Analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	if deps.Exporter == nil {
		return nil, fmt.Errorf("exporter is required")
	}
	if deps.Viewer == nil {
		deps.Viewer = chart.NoneViewer{}
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}

	registry := NewRegistry()
	steps := []Step{
		NewUserSessionsStep(deps.Analyzer, deps.Exporter),
		NewRowCountStep(deps.Analyzer, deps.Exporter, deps.PrintRowCount, deps.Stdout),
		NewColumnRatioStep(deps.Analyzer, deps.Exporter),
		NewVisitorsChartStep(deps.Analyzer, deps.Viewer, deps.Chart, deps.ChartPath),
		NewEventPayloadStep(deps.Analyzer, deps.Exporter),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// UserSessionsStep writes the filtered experiment sessions
type UserSessionsStep struct {
	BaseStep
	analyzer Analyzer
	exporter *exporter.ReportExporter
}

// NewUserSessionsStep creates the user_sessions step
func NewUserSessionsStep(analyzer Analyzer, exp *exporter.ReportExporter) *UserSessionsStep {
	return &UserSessionsStep{
		BaseStep: NewBaseStep(config.ReportUserSessions, "User session export"),
		analyzer: analyzer,
		exporter: exp,
	}
}

// Execute filters the sessions and writes UserSessionData.csv
func (s *UserSessionsStep) Execute(ctx context.Context, state *StepState) error {
	rows, err := s.analyzer.FilterSessions(ctx)
	if err != nil {
		return err
	}
	path, err := s.exporter.ExportUserSessions(rows)
	if err != nil {
		return err
	}
	state.SetRows(len(rows))
	state.AddOutput(path)
	return nil
}

// RowCountStep writes, and optionally prints, the daily flag counts
type RowCountStep struct {
	BaseStep
	analyzer Analyzer
	exporter *exporter.ReportExporter
	print    bool
	out      io.Writer
}

// NewRowCountStep creates the row_count step
func NewRowCountStep(analyzer Analyzer, exp *exporter.ReportExporter, print bool, out io.Writer) *RowCountStep {
	return &RowCountStep{
		BaseStep: NewBaseStep(config.ReportRowCount, "Daily flag counts"),
		analyzer: analyzer,
		exporter: exp,
		print:    print,
		out:      out,
	}
}

// Execute counts flags per day and writes RowCount.csv
func (s *RowCountStep) Execute(ctx context.Context, state *StepState) error {
	counts, err := s.analyzer.DailyFlagCounts(ctx)
	if err != nil {
		return err
	}
	path, err := s.exporter.ExportRowCount(counts)
	if err != nil {
		return err
	}
	state.SetRows(len(counts))
	state.AddOutput(path)

	if s.print {
		if err := exporter.PrintTable(s.out, RowCountTitle, exporter.RowCountTable(counts)); err != nil {
			return fmt.Errorf("failed to print row counts: %w", err)
		}
	}
	return nil
}

// ColumnRatioStep writes the summary table with its ratio row
type ColumnRatioStep struct {
	BaseStep
	analyzer Analyzer
	exporter *exporter.ReportExporter
}

// NewColumnRatioStep creates the column_ratio step
func NewColumnRatioStep(analyzer Analyzer, exp *exporter.ReportExporter) *ColumnRatioStep {
	return &ColumnRatioStep{
		BaseStep: NewBaseStep(config.ReportColumnRatio, "Column ratio"),
		analyzer: analyzer,
		exporter: exp,
	}
}

// Execute computes the ratios and writes ColumnRatio.csv
func (s *ColumnRatioStep) Execute(ctx context.Context, state *StepState) error {
	table, err := s.analyzer.ColumnRatios(ctx)
	if err != nil {
		return err
	}
	path, err := s.exporter.ExportColumnRatio(table)
	if err != nil {
		return err
	}
	state.SetRows(len(table.Rows))
	state.AddOutput(path)
	return nil
}

// VisitorsChartStep renders the visitor bar chart and hands it to a viewer
type VisitorsChartStep struct {
	BaseStep
	analyzer Analyzer
	viewer   chart.Viewer
	opts     chart.Options
	savePath string
}

// NewVisitorsChartStep creates the visitors_chart step
func NewVisitorsChartStep(analyzer Analyzer, viewer chart.Viewer, cfg config.ChartConfig, savePath string) *VisitorsChartStep {
	return &VisitorsChartStep{
		BaseStep: NewBaseStep(config.ReportVisitorsChart, "Visitors chart"),
		analyzer: analyzer,
		viewer:   viewer,
		opts:     chart.Options{Width: cfg.Width, Height: cfg.Height},
		savePath: savePath,
	}
}

// Execute builds the series, renders it, optionally saves it and shows it
func (s *VisitorsChartStep) Execute(ctx context.Context, state *StepState) error {
	series, err := s.analyzer.VisitorSeries(ctx)
	if err != nil {
		return err
	}
	state.SetRows(len(series.Points))

	png, err := chart.RenderBarChart(series, s.opts)
	if err != nil {
		return err
	}

	if s.savePath != "" {
		if err := chart.Save(s.savePath, png); err != nil {
			return fmt.Errorf("failed to save chart: %w", err)
		}
		state.AddOutput(s.savePath)
	}

	return s.viewer.Show(ctx, png)
}

// EventPayloadStep expands the first event's payload into key/value rows
type EventPayloadStep struct {
	BaseStep
	analyzer Analyzer
	exporter *exporter.ReportExporter
}

// NewEventPayloadStep creates the event_payload step
func NewEventPayloadStep(analyzer Analyzer, exp *exporter.ReportExporter) *EventPayloadStep {
	return &EventPayloadStep{
		BaseStep: NewBaseStep(config.ReportEventPayload, "Event payload expansion"),
		analyzer: analyzer,
		exporter: exp,
	}
}

// Execute parses the payload and writes event_data.csv. A parse failure
// writes nothing.
func (s *EventPayloadStep) Execute(ctx context.Context, state *StepState) error {
	rows, err := s.analyzer.ExpandPayload(ctx)
	if err != nil {
		return err
	}
	path, err := s.exporter.ExportPayload(rows)
	if err != nil {
		return err
	}
	state.SetRows(len(rows))
	state.AddOutput(path)
	return nil
}
