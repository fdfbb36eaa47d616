// Package config provides configuration management for the INP calculator.
// It loads configuration from several sources, validates it, and resolves
// every file system path the calculator reads or writes.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML configuration file (inpcalc.yaml or configs/inpcalc.yaml)
//	3. Environment variables, including those loaded from a .env file
//
// # Environment Variables
//
// All environment variables use the INP_ prefix and mirror the YAML nesting:
//
//	INP_PATHS_RAW_ROOT=/data/raw/IN
//	INP_PATHS_TEMPLATE_FILE=/data/templates/in_calculation_template.xlsx
//	INP_LAYOUT_RESULT_SHEETS=summary_UF_UH,summary_UF_H
//	INP_LOGGING_LEVEL=debug
//	INP_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Path Management
//
// Relative paths are resolved against paths.base_dir, which defaults to the
// directory holding the configuration file or the working directory:
//
//	cfg, _ := config.Load("")
//	paths, _ := config.GetPaths(cfg)
//	fmt.Println(paths.TemplateFile)
//
// # Template Layout
//
// The layout section describes where the analysis template keeps its data
// sheet header, where metadata and blank values are written in each result
// sheet, and where the blank workbook keeps its frozen-count column.
package config
