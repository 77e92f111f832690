package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file the reports write.
// This is the single source of truth for output locations.
type Paths struct {
	OutputDir string
	LogsDir   string

	UserSessionCSV string
	RowCountCSV    string
	ColumnRatioCSV string
	EventDataCSV   string

	// ChartPNG is empty unless the chart should be persisted
	ChartPNG string
}

// ResolvePaths returns the output paths for cfg. Relative directories are
// resolved against the current working directory.
func ResolvePaths(cfg *Config) (*Paths, error) {
	outputDir, err := filepath.Abs(cfg.Paths.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %w", cfg.Paths.OutputDir, err)
	}

	paths := &Paths{
		OutputDir:      outputDir,
		UserSessionCSV: filepath.Join(outputDir, UserSessionFileName),
		RowCountCSV:    filepath.Join(outputDir, RowCountFileName),
		ColumnRatioCSV: filepath.Join(outputDir, ColumnRatioFileName),
		EventDataCSV:   filepath.Join(outputDir, EventDataFileName),
	}

	if cfg.Logging.Output != "console" && cfg.Logging.FilePath != "" {
		logFile, err := filepath.Abs(cfg.Logging.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve log file %s: %w", cfg.Logging.FilePath, err)
		}
		paths.LogsDir = filepath.Dir(logFile)
	}

	if cfg.Chart.SavePath != "" {
		chartPath, err := filepath.Abs(cfg.Chart.SavePath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve chart path %s: %w", cfg.Chart.SavePath, err)
		}
		paths.ChartPNG = chartPath
	}

	return paths, nil
}

// EnsureDirectories creates the output and log directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.OutputDir}
	if p.LogsDir != "" {
		directories = append(directories, p.LogsDir)
	}
	if p.ChartPNG != "" {
		directories = append(directories, filepath.Dir(p.ChartPNG))
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetReportPath returns the full path for a report file name
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved output paths",
		slog.String("output_dir", p.OutputDir),
		slog.String("user_sessions", p.UserSessionCSV),
		slog.String("row_count", p.RowCountCSV),
		slog.String("column_ratio", p.ColumnRatioCSV),
		slog.String("event_data", p.EventDataCSV),
		slog.String("chart_png", p.ChartPNG))
}
