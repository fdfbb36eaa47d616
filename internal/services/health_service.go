package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"inpcalc/internal/blanks"
	"inpcalc/internal/config"
	"inpcalc/internal/dataprocessing"
	"inpcalc/internal/history"
	"inpcalc/internal/validation"
)

// Check statuses
const (
	CheckOK      = "ok"
	CheckFailed  = "failed"
	CheckSkipped = "skipped"
)

// HealthService checks the workspace is ready for calculations
type HealthService struct {
	version   string
	cfg       *config.Config
	paths     *config.Paths
	validator *validation.FileValidator
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus is the result of a preflight check
type HealthStatus struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Version   string        `json:"version"`
	Checks    []CheckResult `json:"checks"`
}

// CheckResult is the outcome of one preflight check
type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service for the resolved paths
func NewHealthService(version string, cfg *config.Config, paths *config.Paths, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		version:   version,
		cfg:       cfg,
		paths:     paths,
		validator: validation.NewFileValidator(logger),
		startTime: time.Now(),
		logger:    logger.With("component", "health_service"),
	}
}

// ReadinessCheck verifies every input a calculation needs and that the
// output root accepts writes
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Checks: []CheckResult{
			hs.checkTemplate(),
			hs.checkBlankSource(),
			hs.checkRawRoot(),
			hs.checkOutputRoot(),
			hs.checkHistory(ctx),
		},
	}

	for _, c := range status.Checks {
		if c.Status == CheckFailed {
			status.Status = "not_ready"
			break
		}
	}

	hs.logger.InfoContext(ctx, "Readiness check completed",
		slog.String("status", status.Status),
		slog.Int("checks", len(status.Checks)))
	return status
}

// Ready reports whether status has no failed check
func (s HealthStatus) Ready() bool {
	return s.Status == "ready"
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"start_time": hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkTemplate() CheckResult {
	res := CheckResult{Name: "template", Path: hs.paths.TemplateFile}
	if err := hs.validator.ValidateExcelFile(hs.paths.TemplateFile); err != nil {
		return failed(res, err)
	}

	columns, err := dataprocessing.ReadTemplateColumns(hs.paths.TemplateFile,
		hs.cfg.Layout.DataSheet, hs.cfg.Layout.TemplateHeaderRow)
	if err != nil {
		return failed(res, err)
	}
	res.Status = CheckOK
	res.Message = fmt.Sprintf("%d columns in %q", len(columns), hs.cfg.Layout.DataSheet)
	return res
}

func (hs *HealthService) checkBlankSource() CheckResult {
	res := CheckResult{Name: "blank_source", Path: hs.paths.BlankSource}
	loader := blanks.NewLoader(blanks.Options{
		Sections:  hs.cfg.Layout.ResultSheets,
		Header:    hs.cfg.Layout.BlankHeader,
		HeaderRow: hs.cfg.Layout.BlankHeaderRow,
	}, hs.logger)

	ref, err := loader.Load(hs.paths.BlankSource)
	if err != nil {
		return failed(res, err)
	}
	res.Status = CheckOK
	res.Message = fmt.Sprintf("%d values in %d sections", ref.Total(), len(ref.Series))
	return res
}

func (hs *HealthService) checkRawRoot() CheckResult {
	res := CheckResult{Name: "raw_root", Path: hs.paths.RawRoot}
	info, err := os.Stat(hs.paths.RawRoot)
	if err != nil {
		return failed(res, err)
	}
	if !info.IsDir() {
		return failed(res, fmt.Errorf("%s is not a directory", hs.paths.RawRoot))
	}
	res.Status = CheckOK
	return res
}

func (hs *HealthService) checkOutputRoot() CheckResult {
	res := CheckResult{Name: "output_root", Path: hs.paths.OutputRoot}
	if err := hs.validator.ValidateOutputDirectory(hs.paths.OutputRoot); err != nil {
		return failed(res, err)
	}
	res.Status = CheckOK
	return res
}

func (hs *HealthService) checkHistory(ctx context.Context) CheckResult {
	res := CheckResult{Name: "history", Path: hs.paths.HistoryDB}
	if !hs.cfg.History.Enabled {
		res.Status = CheckSkipped
		res.Message = "history disabled"
		return res
	}

	store, err := history.Open(ctx, hs.paths.HistoryDB)
	if err != nil {
		return failed(res, err)
	}
	defer store.Close()

	runs, err := store.List(ctx, history.Filter{Limit: 1})
	if err != nil {
		return failed(res, err)
	}
	res.Status = CheckOK
	if len(runs) > 0 {
		res.Message = "last run " + runs[0].StartedAt.Format(time.RFC3339)
	}
	return res
}

func failed(res CheckResult, err error) CheckResult {
	res.Status = CheckFailed
	res.Message = err.Error()
	return res
}
