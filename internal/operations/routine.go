package operations

import (
	"context"
	"fmt"
	"log/slog"

	"inpcalc/internal/blanks"
	"inpcalc/internal/dataprocessing"
	apperrors "inpcalc/internal/errors"
	"inpcalc/internal/exporter"
	"inpcalc/internal/files"
	"inpcalc/pkg/contracts/domain"
)

// Routine computes and emits the report for one sample
type Routine interface {
	// ID returns the unique identifier for this routine
	ID() string

	// Name returns the human-readable name for this routine
	Name() string

	// Validate checks the sample satisfies the routine's preconditions.
	// It runs before Calculate and touches nothing on disk.
	Validate(s *domain.Sample) error

	// Calculate runs the routine and returns the written report path
	Calculate(ctx context.Context, s *domain.Sample) (string, error)
}

// Outcome describes a finished sample run
type Outcome struct {
	RoutineID   string
	Source      string
	ReportPath  string
	Rows        int
	BlankValues int
	Progress    *Progress
}

// outcomeRunner is implemented by routines that report run details
type outcomeRunner interface {
	Run(ctx context.Context, s *domain.Sample) (Outcome, error)
}

// Pipeline holds the collaborators of the standard report pipeline
type Pipeline struct {
	Locator           *files.Locator
	TemplatePath      string
	DataSheet         string
	TemplateHeaderRow int
	BlankLoader       *blanks.Loader
	BlankSource       string
	Writer            *exporter.ReportWriter
	Logger            *slog.Logger
}

// ReportRoutine runs the standard pipeline: locate the raw file, parse
// and reshape it to the template, load blanks and emit the report
type ReportRoutine struct {
	id       string
	name     string
	kind     Kind
	pipeline *Pipeline
}

// NewReportRoutine creates a standard pipeline routine serving kind
func NewReportRoutine(id, name string, kind Kind, pipeline *Pipeline) *ReportRoutine {
	return &ReportRoutine{
		id:       id,
		name:     name,
		kind:     kind,
		pipeline: pipeline,
	}
}

// ID returns the routine ID
func (r *ReportRoutine) ID() string { return r.id }

// Name returns the routine name
func (r *ReportRoutine) Name() string { return r.name }

// Kind returns the sample kind the routine serves
func (r *ReportRoutine) Kind() Kind { return r.kind }

// Validate checks the sample matches the routine's kind and the pipeline is
// fully configured
func (r *ReportRoutine) Validate(s *domain.Sample) error {
	if s == nil {
		return apperrors.MissingMetadataField("sample")
	}
	if s.Type() != r.kind.Type ||
		(r.kind.Location != AnyLocation && s.Location() != r.kind.Location) {
		return apperrors.UnsupportedSampleKind(string(s.Type()), string(s.Location())).
			WithContext("routine", r.id)
	}
	if s.Process() == "" {
		return apperrors.MissingMetadataField("process")
	}

	p := r.pipeline
	if p == nil || p.Locator == nil || p.BlankLoader == nil || p.Writer == nil {
		return fmt.Errorf("routine %s: pipeline not configured", r.id)
	}
	if p.TemplatePath == "" || p.DataSheet == "" || p.BlankSource == "" {
		return fmt.Errorf("routine %s: template, data sheet and blank source are required", r.id)
	}
	return nil
}

// Calculate runs the pipeline and returns the report path
func (r *ReportRoutine) Calculate(ctx context.Context, s *domain.Sample) (string, error) {
	out, err := r.Run(ctx, s)
	if err != nil {
		return "", err
	}
	return out.ReportPath, nil
}

// Run executes every pipeline stage in order. The report is written by the
// last stage only, so a failure anywhere earlier leaves no output behind.
func (r *ReportRoutine) Run(ctx context.Context, s *domain.Sample) (Outcome, error) {
	p := r.pipeline
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("routine", r.id))

	out := Outcome{RoutineID: r.id, Progress: NewProgress(StageIDs...)}

	var (
		src     files.Source
		raw     *dataprocessing.Table
		columns []string
		shaped  *dataprocessing.Table
		ref     *blanks.Reference
	)

	err := runStage(ctx, out.Progress, StageIDLocate, func(ctx context.Context) (string, error) {
		var err error
		src, err = p.Locator.Locate(s)
		return src.Path, err
	})
	if err != nil {
		return out, err
	}
	out.Source = src.Path

	err = runStage(ctx, out.Progress, StageIDParse, func(ctx context.Context) (string, error) {
		var err error
		raw, err = dataprocessing.ParseRawFile(src.Path)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d rows", raw.Len()), nil
	})
	if err != nil {
		return out, err
	}

	err = runStage(ctx, out.Progress, StageIDTemplate, func(ctx context.Context) (string, error) {
		var err error
		columns, err = dataprocessing.ReadTemplateColumns(p.TemplatePath, p.DataSheet, p.TemplateHeaderRow)
		if err != nil {
			return "", apperrors.New(apperrors.KindSchemaMismatch, "template columns unavailable", err).
				WithContext("template", p.TemplatePath).
				WithContext("sheet", p.DataSheet)
		}
		return fmt.Sprintf("%d columns", len(columns)), nil
	})
	if err != nil {
		return out, err
	}

	err = runStage(ctx, out.Progress, StageIDReshape, func(ctx context.Context) (string, error) {
		var (
			stats dataprocessing.ReshapeStats
			err   error
		)
		shaped, stats, err = dataprocessing.ReshapeWithStats(raw, columns)
		if err != nil {
			return "", err
		}
		logger.Debug("Raw table reshaped",
			slog.Int("rows", stats.Rows),
			slog.Int("dropped_columns", stats.DroppedColumns),
			slog.Bool("already_shaped", stats.AlreadyShaped))
		return fmt.Sprintf("%d rows", stats.Rows), nil
	})
	if err != nil {
		return out, err
	}
	out.Rows = shaped.Len()

	err = runStage(ctx, out.Progress, StageIDBlanks, func(ctx context.Context) (string, error) {
		var err error
		ref, err = p.BlankLoader.Load(p.BlankSource)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d values", ref.Total()), nil
	})
	if err != nil {
		return out, err
	}
	out.BlankValues = ref.Total()

	err = runStage(ctx, out.Progress, StageIDEmit, func(ctx context.Context) (string, error) {
		path, err := p.Writer.Emit(ctx, exporter.EmitRequest{
			Key:      src.Key,
			Table:    shaped,
			Metadata: s.MetadataPairs(src.Path),
			Blanks:   ref,
		})
		if err != nil {
			return "", err
		}
		out.ReportPath = path
		return path, nil
	})
	if err != nil {
		return out, err
	}

	logger.Info("Sample calculated",
		slog.String("sample", s.String()),
		slog.String("source", out.Source),
		slog.String("report", out.ReportPath),
		slog.Int("rows", out.Rows))
	return out, nil
}
