package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Reports   ReportsConfig   `yaml:"reports" envconfig:"REPORTS"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Chart     ChartConfig     `yaml:"chart" envconfig:"CHART"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig selects where the four source sheets are read from
type InputConfig struct {
	Source          string `yaml:"source" envconfig:"SOURCE" validate:"oneof=xlsx gsheet"`
	Path            string `yaml:"path" envconfig:"WORKBOOK" validate:"required_if=Source xlsx"`
	SpreadsheetID   string `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID" validate:"required_if=Source gsheet"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
}

// ReportsConfig holds the report filter parameters
type ReportsConfig struct {
	Experiment    int64    `yaml:"experiment" envconfig:"EXPERIMENT" validate:"gt=0"`
	DateFrom      string   `yaml:"date_from" envconfig:"DATE_FROM" validate:"required,datetime=2006-01-02"`
	DateTo        string   `yaml:"date_to" envconfig:"DATE_TO" validate:"required,datetime=2006-01-02"`
	Only          []string `yaml:"only" envconfig:"ONLY" validate:"dive,oneof=user_sessions row_count column_ratio visitors_chart event_payload"`
	PrintRowCount bool     `yaml:"print_row_count" envconfig:"PRINT_ROW_COUNT"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
}

// ChartConfig controls visitor chart rendering and display
type ChartConfig struct {
	Viewer     string        `yaml:"viewer" envconfig:"VIEWER" validate:"oneof=system browser none"`
	SavePath   string        `yaml:"save_path" envconfig:"SAVE_PATH"`
	Width      int           `yaml:"width" envconfig:"WIDTH" validate:"gte=200"`
	Height     int           `yaml:"height" envconfig:"HEIGHT" validate:"gte=150"`
	DisplayFor time.Duration `yaml:"display_for" envconfig:"DISPLAY_FOR" validate:"gte=0"`
	Headless   bool          `yaml:"headless" envconfig:"HEADLESS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output     string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath   string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	MaxSizeMB  int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" envconfig:"MAX_BACKUPS" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS" validate:"gte=0"`
}

// TelemetryConfig controls the optional trace and metrics files
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	TraceFile      string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile    string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. An empty configFile falls
// back to the well-known locations. Load does not validate; callers apply
// their command-line overrides first and then call Validate.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	// No default tags on the struct: envconfig only touches fields whose
	// variables are set, so file values survive.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML file values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"sessionreports.yaml",
		"configs/sessionreports.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Validate checks struct constraints and the cross-field rules the tags
// cannot express.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	from, to, err := c.Reports.DateRange()
	if err != nil {
		return err
	}
	if to.Before(from) {
		return fmt.Errorf("invalid configuration: reports.date_to %s is before reports.date_from %s",
			c.Reports.DateTo, c.Reports.DateFrom)
	}

	return nil
}

// DateRange returns the inclusive event date range
func (r ReportsConfig) DateRange() (time.Time, time.Time, error) {
	from, err := time.Parse(DateLayout, r.DateFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid reports.date_from: %w", err)
	}
	to, err := time.Parse(DateLayout, r.DateTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid reports.date_to: %w", err)
	}
	return from, to, nil
}

// Enabled reports whether the report with the given id should run
func (r ReportsConfig) Enabled(id string) bool {
	if len(r.Only) == 0 {
		return true
	}
	for _, only := range r.Only {
		if only == id {
			return true
		}
	}
	return false
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Source: SourceXLSX,
		},
		Reports: ReportsConfig{
			Experiment:    DefaultExperiment,
			DateFrom:      DefaultDateFrom,
			DateTo:        DefaultDateTo,
			PrintRowCount: true,
		},
		Paths: PathsConfig{
			OutputDir: ".",
		},
		Chart: ChartConfig{
			Viewer:     ViewerSystem,
			Width:      DefaultChartWidth,
			Height:     DefaultChartHeight,
			DisplayFor: DefaultChartDisplayFor,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     "console",
			FilePath:   "logs/sessionreports.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "sessionreports",
		},
	}
}
