package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved (absolute) application paths.
// This is the single source of truth for every file the calculator touches.
type Paths struct {
	BaseDir      string
	RawRoot      string
	OutputRoot   string
	TemplateFile string
	BlankSource  string
	LogsDir      string
	LogFile      string
	HistoryDB    string
	MetricsFile  string
}

// GetPaths resolves the configured paths against the base directory.
// An empty base directory means the current working directory.
func GetPaths(cfg *Config) (*Paths, error) {
	base := cfg.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %v", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %v", base, err)
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:      base,
		RawRoot:      resolve(cfg.Paths.RawRoot),
		OutputRoot:   resolve(cfg.Paths.OutputRoot),
		TemplateFile: resolve(cfg.Paths.TemplateFile),
		BlankSource:  resolve(cfg.Paths.BlankSource),
		LogsDir:      resolve(cfg.Paths.LogsDir),
		LogFile:      resolve(cfg.Logging.FilePath),
		HistoryDB:    resolve(cfg.History.DBPath),
		MetricsFile:  resolve(cfg.Telemetry.MetricsTextfile),
	}, nil
}

// EnsureDirectories creates the directories the calculator writes into.
// Per-sample report subdirectories are created by the report writer.
func (p *Paths) EnsureDirectories() error {
	directories := []string{p.OutputRoot, p.LogsDir}
	if p.HistoryDB != "" {
		directories = append(directories, filepath.Dir(p.HistoryDB))
	}

	logger := slog.Default()
	for _, dir := range directories {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("raw_root", p.RawRoot),
			slog.String("output_root", p.OutputRoot),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("template", p.TemplateFile),
			slog.Bool("template_exists", FileExists(p.TemplateFile)),
			slog.String("blank_source", p.BlankSource),
			slog.Bool("blank_source_exists", FileExists(p.BlankSource)),
			slog.String("history_db", p.HistoryDB),
		))
}
