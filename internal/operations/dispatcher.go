package operations

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "inpcalc/internal/errors"
	"inpcalc/internal/infrastructure"
	"inpcalc/pkg/contracts/domain"
)

// Dispatcher selects and runs the calculation routine for a sample
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over registry
func NewDispatcher(registry *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: registry,
		logger:   logger.With("component", "dispatcher"),
	}
}

// NewStandardRegistry registers the standard pipeline for every supported
// kind: seawater at any location, aerosol from the bubbler and from the
// coriolis sampler
func NewStandardRegistry(p *Pipeline) (*Registry, error) {
	r := NewRegistry()
	routines := []struct {
		kind Kind
		id   string
		name string
	}{
		{Kind{Type: domain.SampleTypeSeawater, Location: AnyLocation}, RoutineIDSeawater, RoutineNameSeawater},
		{Kind{Type: domain.SampleTypeAerosol, Location: domain.LocationBubbler}, RoutineIDBubbler, RoutineNameBubbler},
		{Kind{Type: domain.SampleTypeAerosol, Location: domain.LocationCoriolis}, RoutineIDCoriolis, RoutineNameCoriolis},
	}
	for _, rt := range routines {
		if err := r.Register(rt.kind, NewReportRoutine(rt.id, rt.name, rt.kind, p)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Registry returns the dispatcher's routine registry
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Select returns the routine registered for a sample type and location
func (d *Dispatcher) Select(sampleType, location string) (Routine, error) {
	return d.registry.Lookup(sampleType, location)
}

// Run selects the sample's routine, checks its preconditions and runs it
func (d *Dispatcher) Run(ctx context.Context, s *domain.Sample) (Outcome, error) {
	if s == nil {
		return Outcome{}, apperrors.MissingMetadataField("sample")
	}

	routine, err := d.Select(string(s.Type()), string(s.Location()))
	if err != nil {
		d.logger.WarnContext(ctx, "No routine for sample",
			slog.String("sample_type", string(s.Type())),
			slog.String("location", string(s.Location())))
		return Outcome{}, err
	}

	ctx, span := traceDispatch(ctx, routine, Kind{Type: s.Type(), Location: s.Location()})
	defer span.End()

	logger := d.logger.With(slog.String("routine", routine.ID()))
	logger.InfoContext(ctx, "Dispatching sample",
		slog.String("sample", s.String()),
		slog.String("routine_name", routine.Name()))

	start := time.Now()
	if err := routine.Validate(s); err != nil {
		infrastructure.RecordError(ctx, err)
		return Outcome{RoutineID: routine.ID()}, err
	}

	var out Outcome
	if runner, ok := routine.(outcomeRunner); ok {
		out, err = runner.Run(ctx, s)
	} else {
		out = Outcome{RoutineID: routine.ID()}
		out.ReportPath, err = routine.Calculate(ctx, s)
	}
	out.RoutineID = routine.ID()

	if err != nil {
		infrastructure.RecordError(ctx, err)
		logger.ErrorContext(ctx, "Sample run failed",
			slog.String("error", err.Error()),
			slog.String("error_kind", string(apperrors.KindOf(err))),
			slog.String("failed_stage", out.Progress.FailedStage()),
			slog.Duration("duration", time.Since(start)))
		return out, err
	}

	span.SetAttributes(
		attribute.String("report.path", out.ReportPath),
		attribute.Int("report.rows", out.Rows),
	)
	span.SetStatus(codes.Ok, "")
	logger.InfoContext(ctx, "Sample run completed",
		slog.String("report", out.ReportPath),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}
