package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"inpcalc/internal/blanks"
	"inpcalc/internal/config"
	"inpcalc/internal/dataprocessing"
	apperrors "inpcalc/internal/errors"
	"inpcalc/internal/exporter"
	"inpcalc/internal/files"
	"inpcalc/internal/history"
	"inpcalc/internal/infrastructure"
	"inpcalc/internal/operations"
	"inpcalc/pkg/contracts/domain"
)

// Options carries the optional collaborators of a CalculationService
type Options struct {
	Logger *slog.Logger
	OTel   *infrastructure.OTelProviders
}

// CalculationService runs sample calculations with telemetry and the run
// ledger wired around the dispatcher
type CalculationService struct {
	cfg        *config.Config
	paths      *config.Paths
	naming     files.Naming
	locator    *files.Locator
	discovery  *files.Discovery
	dispatcher *operations.Dispatcher
	ledger     *history.Store
	csv        *exporter.CSVWriter
	otel       *infrastructure.OTelProviders
	logger     *slog.Logger
}

// Result is the outcome of one Calculate call
type Result struct {
	RunID string
	operations.Outcome
	Duration time.Duration
}

// NewCalculationService resolves the configured paths and builds the
// standard dispatcher. The ledger is opened when history is enabled.
func NewCalculationService(ctx context.Context, cfg *config.Config, opts Options) (*CalculationService, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	paths, err := config.GetPaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	paths.LogPathResolution(logger)

	naming := NamingFor(cfg, paths)
	writer := exporter.NewReportWriter(paths.TemplateFile, LayoutFor(cfg), naming, logger)
	pipeline := &operations.Pipeline{
		Locator:           files.NewLocator(naming, logger),
		TemplatePath:      paths.TemplateFile,
		DataSheet:         cfg.Layout.DataSheet,
		TemplateHeaderRow: cfg.Layout.TemplateHeaderRow,
		BlankLoader: blanks.NewLoader(blanks.Options{
			Sections:  cfg.Layout.ResultSheets,
			Header:    cfg.Layout.BlankHeader,
			HeaderRow: cfg.Layout.BlankHeaderRow,
		}, logger),
		BlankSource: paths.BlankSource,
		Writer:      writer,
		Logger:      logger,
	}

	registry, err := operations.NewStandardRegistry(pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to register routines: %w", err)
	}

	svc := &CalculationService{
		cfg:        cfg,
		paths:      paths,
		naming:     naming,
		locator:    pipeline.Locator,
		discovery:  files.NewDiscovery(naming, logger),
		dispatcher: operations.NewDispatcher(registry, logger),
		csv:        exporter.NewCSVWriter(logger),
		otel:       opts.OTel,
		logger:     logger.With("component", "calculation_service"),
	}

	if cfg.History.Enabled {
		svc.ledger, err = history.Open(ctx, paths.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open run ledger: %w", err)
		}
	}

	return svc, nil
}

// NamingFor builds the file naming convention from configuration
func NamingFor(cfg *config.Config, paths *config.Paths) files.Naming {
	return files.Naming{
		RawRoot:         paths.RawRoot,
		OutputRoot:      paths.OutputRoot,
		RawExtension:    cfg.Layout.RawExtension,
		ReportExtension: cfg.Layout.ReportExtension,
	}
}

// LayoutFor builds the report layout from configuration
func LayoutFor(cfg *config.Config) exporter.Layout {
	return exporter.Layout{
		DataSheet:           cfg.Layout.DataSheet,
		ResultSheets:        cfg.Layout.ResultSheets,
		MetadataKeyColumn:   cfg.Layout.MetadataKeyColumn,
		MetadataValueColumn: cfg.Layout.MetadataValueColumn,
		MetadataStartRow:    cfg.Layout.MetadataStartRow,
		BlankColumn:         cfg.Layout.BlankColumn,
		BlankStartRow:       cfg.Layout.BlankStartRow,
		RowKeyColumn:        cfg.Layout.RowKeyColumn,
	}
}

// Paths returns the resolved paths the service works with
func (s *CalculationService) Paths() *config.Paths {
	return s.paths
}

// Dispatcher returns the service's dispatcher
func (s *CalculationService) Dispatcher() *operations.Dispatcher {
	return s.dispatcher
}

// Calculate runs the dispatcher for sample, then records metrics and a
// ledger entry for the run whatever its outcome
func (s *CalculationService) Calculate(ctx context.Context, sample *domain.Sample) (*Result, error) {
	if sample == nil {
		return nil, apperrors.MissingMetadataField("sample")
	}

	runID := history.NewRunID()
	ctx = infrastructure.WithRunID(infrastructure.EnsureTraceID(ctx), runID)

	ctx, span := s.tracer().Start(ctx, "calculation.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("sample", sample.String()),
		),
	)
	defer span.End()

	started := time.Now()
	out, err := s.dispatcher.Run(ctx, sample)
	finished := time.Now()

	result := &Result{RunID: runID, Outcome: out, Duration: finished.Sub(started)}

	var metrics *infrastructure.CalculationMetrics
	if s.otel != nil {
		metrics = s.otel.Metrics
	}
	infrastructure.RecordRunMetrics(ctx, metrics, infrastructure.RunOutcome{
		Routine:     out.RoutineID,
		Duration:    result.Duration,
		Rows:        out.Rows,
		BlankValues: out.BlankValues,
		Err:         err,
	})

	s.record(ctx, sample, result, started, finished, err)
	s.writeMetrics()

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return result, err
	}
	return result, nil
}

// Resolve returns the expected raw and report paths for sample without
// touching the file system
func (s *CalculationService) Resolve(sample *domain.Sample) (files.Source, string) {
	src := s.locator.Resolve(sample)
	return src, s.naming.ReportPath(src.Key)
}

// Locate checks the raw file for sample exists
func (s *CalculationService) Locate(sample *domain.Sample) (files.Source, error) {
	return s.locator.Locate(sample)
}

// Export reshapes the sample's raw file to the template columns and writes
// it as CSV to dst. An empty dst puts the file next to the report.
func (s *CalculationService) Export(ctx context.Context, sample *domain.Sample, dst string) (string, int, error) {
	if sample == nil {
		return "", 0, apperrors.MissingMetadataField("sample")
	}

	_, span := s.tracer().Start(ctx, "calculation.export",
		trace.WithAttributes(attribute.String("sample", sample.String())))
	defer span.End()

	src, err := s.locator.Locate(sample)
	if err != nil {
		return "", 0, err
	}

	raw, err := dataprocessing.ParseRawFile(src.Path)
	if err != nil {
		return "", 0, err
	}
	columns, err := dataprocessing.ReadTemplateColumns(s.paths.TemplateFile,
		s.cfg.Layout.DataSheet, s.cfg.Layout.TemplateHeaderRow)
	if err != nil {
		return "", 0, apperrors.New(apperrors.KindSchemaMismatch, "template columns unavailable", err).
			WithContext("template", s.paths.TemplateFile)
	}
	shaped, err := dataprocessing.Reshape(raw, columns)
	if err != nil {
		return "", 0, err
	}

	if dst == "" {
		report := s.naming.ReportPath(src.Key)
		dst = strings.TrimSuffix(report, filepath.Ext(report)) + ".csv"
	}
	if err := s.csv.WriteTable(dst, shaped, exporter.WriteOptions{LeadingBlank: true}); err != nil {
		return "", 0, apperrors.WriteFailure(dst, err)
	}
	return dst, shaped.Len(), nil
}

// RawEntry is a discovered raw file and whether its report exists
type RawEntry struct {
	files.RawFile
	ReportPath string
	Calculated bool
}

// RawFilter narrows ListRaw. Zero times leave that end of the range open.
type RawFilter struct {
	From       time.Time
	To         time.Time
	LatestOnly bool
}

// ListRaw lists the raw files of a sample type, oldest first
func (s *CalculationService) ListRaw(sampleType domain.SampleType, f RawFilter) ([]RawEntry, error) {
	raws, err := s.discovery.FindRawFiles(sampleType)
	if err != nil {
		return nil, err
	}

	if !f.From.IsZero() || !f.To.IsZero() {
		to := f.To
		if to.IsZero() {
			to = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
		}
		raws = files.FilterFilesByDateRange(raws, f.From, to)
	}
	if f.LatestOnly {
		latest, ok := files.GetLatestFile(raws)
		raws = nil
		if ok {
			raws = []files.RawFile{latest}
		}
	}

	entries := make([]RawEntry, 0, len(raws))
	for _, raw := range raws {
		entries = append(entries, RawEntry{
			RawFile:    raw,
			ReportPath: s.naming.ReportPath(raw.Key),
			Calculated: s.discovery.HasReport(raw.Key),
		})
	}
	return entries, nil
}

// History lists ledger entries
func (s *CalculationService) History(ctx context.Context, f history.Filter) ([]*history.Run, error) {
	if s.ledger == nil {
		return nil, ErrHistoryDisabled
	}
	return s.ledger.List(ctx, f)
}

// Run returns one ledger entry
func (s *CalculationService) Run(ctx context.Context, id string) (*history.Run, error) {
	if s.ledger == nil {
		return nil, ErrHistoryDisabled
	}
	return s.ledger.Get(ctx, id)
}

// Close releases the ledger
func (s *CalculationService) Close() error {
	if s.ledger == nil {
		return nil
	}
	return s.ledger.Close()
}

func (s *CalculationService) tracer() trace.Tracer {
	if s.otel != nil && s.otel.Tracer != nil {
		return s.otel.Tracer
	}
	return otel.Tracer(infrastructure.ServiceName)
}

// record writes the ledger entry. A ledger failure is logged and never
// fails the run.
func (s *CalculationService) record(ctx context.Context, sample *domain.Sample, result *Result, started, finished time.Time, runErr error) {
	if s.ledger == nil {
		return
	}

	run := &history.Run{
		ID:             result.RunID,
		StartedAt:      started,
		FinishedAt:     finished,
		SampleType:     string(sample.Type()),
		Location:       string(sample.Location()),
		Process:        sample.Process(),
		CollectionDate: sample.CollectionDate().Format("20060102 150405"),
		Routine:        result.RoutineID,
		Status:         history.StatusSucceeded,
		SourcePath:     result.Source,
		ReportPath:     result.ReportPath,
		Rows:           result.Rows,
		BlankValues:    result.BlankValues,
		Duration:       result.Duration,
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.ErrorKind = string(apperrors.KindOf(runErr))
		run.ErrorMessage = runErr.Error()
		run.FailedStage = result.Progress.FailedStage()
	}

	if err := s.ledger.Record(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "Failed to record run",
			slog.String("run_id", result.RunID),
			slog.String("error", err.Error()))
	}
}

func (s *CalculationService) writeMetrics() {
	if s.paths.MetricsFile == "" {
		return
	}
	if err := s.otel.WriteMetrics(s.paths.MetricsFile); err != nil {
		s.logger.Warn("Failed to write metrics textfile",
			slog.String("path", s.paths.MetricsFile),
			slog.String("error", err.Error()))
	}
}
