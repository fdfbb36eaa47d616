package config

// Application constants
const (
	AppName = "inpcalc"

	// EnvPrefix namespaces every environment variable, e.g. INP_PATHS_RAW_ROOT
	EnvPrefix = "INP"

	// Default directory layout, relative to the base directory
	DefaultRawRoot      = "data/raw/IN"
	DefaultOutputRoot   = "data/interim/IN/calculated"
	DefaultTemplateFile = "in_calculation_template.xlsx"
	DefaultBlankSource  = "data/interim/IN/blank_source.xlsx"
	DefaultLogsDir      = "logs"
	DefaultHistoryDB    = "data/inpcalc.db"

	// Analysis template layout
	DefaultDataSheet           = "data.csv"
	DefaultTemplateHeaderRow   = 2
	DefaultMetadataKeyColumn   = "Z"
	DefaultMetadataValueColumn = "AA"
	DefaultMetadataStartRow    = 1
	DefaultBlankColumn         = "F"
	DefaultBlankStartRow       = 2
	DefaultRowKeyColumn        = "A"

	// Blank source workbook layout
	DefaultBlankHeader    = "N(frozen)"
	DefaultBlankHeaderRow = 1

	// File extensions
	DefaultRawExtension    = "csv"
	DefaultReportExtension = "xlsx"

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogOutput = "console"
	DefaultLogFile   = "logs/inpcalc.log"
)

// DefaultResultSheets are the result sheets populated with metadata and blank values,
// matching the blank source sections of the same name
var DefaultResultSheets = []string{"summary_UF_UH", "summary_UF_H"}
