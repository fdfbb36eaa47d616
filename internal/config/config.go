package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Layout    LayoutConfig    `yaml:"layout" envconfig:"LAYOUT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	History   HistoryConfig   `yaml:"history" envconfig:"HISTORY"`
}

// PathsConfig contains file system locations. Relative paths are resolved
// against BaseDir (the working directory when empty).
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	RawRoot      string `yaml:"raw_root" envconfig:"RAW_ROOT"`
	OutputRoot   string `yaml:"output_root" envconfig:"OUTPUT_ROOT"`
	TemplateFile string `yaml:"template_file" envconfig:"TEMPLATE_FILE"`
	BlankSource  string `yaml:"blank_source" envconfig:"BLANK_SOURCE"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// LayoutConfig describes the analysis template and blank workbook layout
type LayoutConfig struct {
	DataSheet           string   `yaml:"data_sheet" envconfig:"DATA_SHEET"`
	TemplateHeaderRow   int      `yaml:"template_header_row" envconfig:"TEMPLATE_HEADER_ROW"`
	ResultSheets        []string `yaml:"result_sheets" envconfig:"RESULT_SHEETS"`
	MetadataKeyColumn   string   `yaml:"metadata_key_column" envconfig:"METADATA_KEY_COLUMN"`
	MetadataValueColumn string   `yaml:"metadata_value_column" envconfig:"METADATA_VALUE_COLUMN"`
	MetadataStartRow    int      `yaml:"metadata_start_row" envconfig:"METADATA_START_ROW"`
	BlankColumn         string   `yaml:"blank_column" envconfig:"BLANK_COLUMN"`
	BlankStartRow       int      `yaml:"blank_start_row" envconfig:"BLANK_START_ROW"`
	RowKeyColumn        string   `yaml:"row_key_column" envconfig:"ROW_KEY_COLUMN"`
	BlankHeader         string   `yaml:"blank_header" envconfig:"BLANK_HEADER"`
	BlankHeaderRow      int      `yaml:"blank_header_row" envconfig:"BLANK_HEADER_ROW"`
	RawExtension        string   `yaml:"raw_extension" envconfig:"RAW_EXTENSION"`
	ReportExtension     string   `yaml:"report_extension" envconfig:"REPORT_EXTENSION"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig controls tracing and run metrics
type TelemetryConfig struct {
	Environment     string `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter   string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"` // "stdout" or "none"
	EnableMetrics   bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	MetricsTextfile string `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
}

// HistoryConfig controls the run ledger
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	DBPath  string `yaml:"db_path" envconfig:"DB_PATH"`
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment (highest precedence). A .env file in the working directory
// is loaded into the environment first when present. An empty configFile
// searches the usual locations.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		if cfg.Paths.BaseDir == "" {
			cfg.Paths.BaseDir = filepath.Dir(configFile)
		}
	}

	// Only variables that are set override; unset ones leave file/default values alone
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the first config file found in the common locations
func getConfigFilePath() string {
	locations := []string{
		"inpcalc.yaml",
		"configs/inpcalc.yaml",
		"../configs/inpcalc.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// validate validates the configuration
func (c *Config) validate() error {
	required := map[string]string{
		"paths.raw_root":      c.Paths.RawRoot,
		"paths.output_root":   c.Paths.OutputRoot,
		"paths.template_file": c.Paths.TemplateFile,
		"paths.blank_source":  c.Paths.BlankSource,
		"layout.data_sheet":   c.Layout.DataSheet,
		"layout.blank_header": c.Layout.BlankHeader,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", name)
		}
	}

	if len(c.Layout.ResultSheets) == 0 {
		return fmt.Errorf("at least one result sheet must be specified")
	}

	columns := map[string]string{
		"layout.metadata_key_column":   c.Layout.MetadataKeyColumn,
		"layout.metadata_value_column": c.Layout.MetadataValueColumn,
		"layout.blank_column":          c.Layout.BlankColumn,
		"layout.row_key_column":        c.Layout.RowKeyColumn,
	}
	for name, col := range columns {
		if _, err := excelize.ColumnNameToNumber(col); err != nil {
			return fmt.Errorf("%s: invalid column %q", name, col)
		}
	}

	rows := map[string]int{
		"layout.template_header_row": c.Layout.TemplateHeaderRow,
		"layout.metadata_start_row":  c.Layout.MetadataStartRow,
		"layout.blank_start_row":     c.Layout.BlankStartRow,
		"layout.blank_header_row":    c.Layout.BlankHeaderRow,
	}
	for name, row := range rows {
		if row < 1 {
			return fmt.Errorf("%s must be >= 1, got %d", name, row)
		}
	}

	c.Layout.RawExtension = strings.TrimPrefix(c.Layout.RawExtension, ".")
	c.Layout.ReportExtension = strings.TrimPrefix(c.Layout.ReportExtension, ".")
	if c.Layout.RawExtension == "" || c.Layout.ReportExtension == "" {
		return fmt.Errorf("raw and report extensions must be set")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	if c.Logging.Format != "json" {
		// Only JSON logs are supported
		c.Logging.Format = "json"
	}

	switch c.Telemetry.TraceExporter {
	case "stdout", "none":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Telemetry.TraceExporter)
	}

	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path must be set when history is enabled")
	}

	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			RawRoot:      DefaultRawRoot,
			OutputRoot:   DefaultOutputRoot,
			TemplateFile: DefaultTemplateFile,
			BlankSource:  DefaultBlankSource,
			LogsDir:      DefaultLogsDir,
		},
		Layout: LayoutConfig{
			DataSheet:           DefaultDataSheet,
			TemplateHeaderRow:   DefaultTemplateHeaderRow,
			ResultSheets:        append([]string(nil), DefaultResultSheets...),
			MetadataKeyColumn:   DefaultMetadataKeyColumn,
			MetadataValueColumn: DefaultMetadataValueColumn,
			MetadataStartRow:    DefaultMetadataStartRow,
			BlankColumn:         DefaultBlankColumn,
			BlankStartRow:       DefaultBlankStartRow,
			RowKeyColumn:        DefaultRowKeyColumn,
			BlankHeader:         DefaultBlankHeader,
			BlankHeaderRow:      DefaultBlankHeaderRow,
			RawExtension:        DefaultRawExtension,
			ReportExtension:     DefaultReportExtension,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   DefaultLogOutput,
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			Environment:   "development",
			TraceExporter: "none",
			EnableMetrics: true,
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  DefaultHistoryDB,
		},
	}
}
