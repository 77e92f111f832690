package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"sessioncli/internal/analysis"
	"sessioncli/internal/chart"
	"sessioncli/internal/config"
	reporterrors "sessioncli/internal/errors"
	"sessioncli/internal/exporter"
	"sessioncli/internal/infrastructure"
	"sessioncli/internal/report"
	"sessioncli/internal/validation"
	"sessioncli/internal/workbook"
	"sessioncli/pkg/contracts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliFlags are the command-line overrides applied on top of the loaded config
type cliFlags struct {
	input      string
	outDir     string
	configFile string
	viewer     string
	only       string
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet("sessionreports", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := &cliFlags{}
	fs.StringVar(&f.input, "input", "", "workbook (.xlsx) containing user_data, session_data, session_sum and event_data")
	fs.StringVar(&f.outDir, "out", "", "output directory for the CSV reports (defaults to the current directory)")
	fs.StringVar(&f.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&f.viewer, "viewer", "", "chart viewer: system, browser or none")
	fs.StringVar(&f.only, "only", "", "comma-separated report ids to run (default all)")
	fs.BoolVar(&f.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch fs.NArg() {
	case 0:
	case 1:
		if f.input != "" {
			return nil, fmt.Errorf("input given both as -input and as an argument")
		}
		f.input = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected at most one input argument, got %d", fs.NArg())
	}
	return f, nil
}

// apply overlays the flags onto cfg
func (f *cliFlags) apply(cfg *config.Config) {
	if f.input != "" {
		cfg.Input.Source = config.SourceXLSX
		cfg.Input.Path = f.input
	}
	if f.outDir != "" {
		cfg.Paths.OutputDir = f.outDir
	}
	if f.viewer != "" {
		cfg.Chart.Viewer = f.viewer
	}
	if f.only != "" {
		var ids []string
		for _, id := range strings.Split(f.only, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		cfg.Reports.Only = ids
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	if flags.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	flags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	logs, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "error: failed to initialize logger:", err)
		return 1
	}
	defer logs.Close()
	logger := logs.Logger
	slog.SetDefault(logger)

	ctx = infrastructure.EnsureRunID(ctx)
	paths.LogPathResolution(logger)

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to initialize telemetry", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	logger.InfoContext(ctx, "Starting session reports",
		slog.String("version", config.AppVersion),
		slog.String("source", cfg.Input.Source),
		slog.String("input", inputName(cfg.Input)),
		slog.String("output_dir", paths.OutputDir),
		slog.Int64("experiment", cfg.Reports.Experiment),
		slog.String("date_from", cfg.Reports.DateFrom),
		slog.String("date_to", cfg.Reports.DateTo))

	validator := validation.NewFileValidator(logger)
	if cfg.Input.Source == config.SourceXLSX {
		if err := validator.ValidateWorkbook(cfg.Input.Path); err != nil {
			logger.ErrorContext(ctx, "Input validation failed", slog.String("error", err.Error()))
			return 1
		}
	}
	if err := validator.ValidateOutputDirectory(paths.OutputDir); err != nil {
		logger.ErrorContext(ctx, "Output validation failed", slog.String("error", err.Error()))
		return 1
	}

	dataset, err := workbook.LoadFile(ctx, cfg.Input, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to open input", slog.String("error", err.Error()))
		return 1
	}

	opts, err := analysis.OptionsFromConfig(cfg.Reports)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid report options", slog.String("error", err.Error()))
		return 1
	}
	analyzer := analysis.NewAnalyzer(dataset, opts, logger)

	viewer, err := chart.NewViewer(cfg.Chart, logger)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid chart viewer", slog.String("error", err.Error()))
		return 1
	}

	csvWriter := exporter.NewCSVWriter(paths, logger)
	registry, err := report.NewDefaultRegistry(report.Dependencies{
		Analyzer:      analyzer,
		Exporter:      exporter.NewReportExporter(csvWriter, paths),
		Viewer:        viewer,
		Chart:         cfg.Chart,
		ChartPath:     paths.ChartPNG,
		PrintRowCount: cfg.Reports.PrintRowCount,
		Stdout:        stdout,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to register reports", slog.String("error", err.Error()))
		return 1
	}

	runner, err := report.NewRunner(registry, report.RunnerOptions{
		Enabled: cfg.Reports.Enabled,
		Tracer:  telemetry.Tracer,
		Meter:   telemetry.Meter,
		Logger:  logger,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create runner", slog.String("error", err.Error()))
		return 1
	}

	result, runErr := runner.Run(ctx)
	if err := printSummary(stdout, dataset, result); err != nil {
		logger.Warn("Failed to print summary", slog.String("error", err.Error()))
	}

	if runErr != nil {
		var list *reporterrors.ErrorList
		if errors.As(runErr, &list) {
			for _, e := range list.Errors {
				var stepErr *report.StepError
				if errors.As(e, &stepErr) {
					logger.ErrorContext(ctx, "Report failed",
						slog.String("step", stepErr.Step),
						slog.String("error_type", string(stepErr.ErrorType())),
						slog.String("error", stepErr.Cause.Error()))
				}
			}
		} else {
			logger.ErrorContext(ctx, "Run failed", slog.String("error", runErr.Error()))
		}
		return 1
	}

	logger.InfoContext(ctx, "All reports completed", slog.String("run_id", result.RunID))
	return 0
}

func inputName(in config.InputConfig) string {
	if in.Source == config.SourceGSheet {
		return in.SpreadsheetID
	}
	return in.Path
}

// sheetStatus reports whether a sheet was loaded; Err is nil for loaded sheets
type sheetStatus interface {
	Err(sheet string) error
}

// printSummary writes one line per sheet with its load outcome and one
// line per step with its outcome
func printSummary(out io.Writer, sheets sheetStatus, result *report.RunResult) error {
	if sheets != nil {
		loaded := exporter.Table{Headers: []string{"sheet", "status", "detail"}}
		for _, name := range config.SheetOrder {
			status, detail := "loaded", ""
			if err := sheets.Err(name); err != nil {
				status, detail = "failed", err.Error()
			}
			loaded.Records = append(loaded.Records, []string{name, status, detail})
		}
		fmt.Fprintln(out)
		if err := exporter.PrintTable(out, "Sheets", loaded); err != nil {
			return err
		}
	}
	if result == nil {
		return nil
	}
	table := exporter.Table{Headers: []string{"report", "status", "rows", "duration", "detail"}}
	for _, s := range result.States {
		detail := strings.Join(s.GetOutputs(), " ")
		if s.Error != nil {
			detail = s.Error.Error()
		} else if s.Message != "" {
			detail = s.Message
		}
		table.Records = append(table.Records, []string{
			s.ID,
			string(s.GetStatus()),
			strconv.Itoa(s.GetRows()),
			s.Duration().Round(time.Millisecond).String(),
			detail,
		})
	}
	fmt.Fprintln(out)
	return exporter.PrintTable(out, "Summary", table)
}
