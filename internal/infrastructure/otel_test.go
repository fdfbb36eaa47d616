package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inpcalc/internal/config"
	apperrors "inpcalc/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestOTelInitialization tests OpenTelemetry initialization with defaults
func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	// Tracing is off by default but a usable tracer is still provided
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Registry)
	assert.NotNil(t, providers.Metrics)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelMetricsDisabled(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.Registry)
	require.NotNil(t, providers.Metrics, "no-op instruments are still created")

	RecordRunMetrics(context.Background(), providers.Metrics, RunOutcome{Routine: "seawater"})
	assert.NoError(t, providers.WriteMetrics(filepath.Join(t.TempDir(), "m.prom")))
}

func TestOTelUnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "zipkin"

	_, err := InitializeOTel(cfg, discardLogger())
	assert.Error(t, err)
}

// TestTraceCorrelation tests that span trace IDs reach the logs
func TestTraceCorrelation(t *testing.T) {
	var spans bytes.Buffer
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "stdout"
	cfg.TraceWriter = &spans

	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)

	ctx, span := providers.Tracer.Start(context.Background(), "calculate")
	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	var logs bytes.Buffer
	NewLogger(&logs, "info").InfoContext(ctx, "inside span")
	assert.Contains(t, logs.String(), traceID)

	AddSpanEvent(ctx, "reshaped", map[string]interface{}{"rows": 3, "split": true})
	SetSpanAttributes(ctx, map[string]interface{}{"sample.type": "seawater"})
	RecordError(ctx, apperrors.SchemaMismatch("column count", 3, 2))
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, spans.String(), "calculate")
	assert.Contains(t, spans.String(), "SCHEMA_MISMATCH")
}

func TestRecordRunMetricsWritesTextfile(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx := context.Background()
	RecordRunMetrics(ctx, providers.Metrics, RunOutcome{
		Routine:     "seawater",
		Duration:    150 * time.Millisecond,
		Rows:        42,
		BlankValues: 42,
	})
	RecordRunMetrics(ctx, providers.Metrics, RunOutcome{
		Routine: "seawater",
		Err:     apperrors.SourceNotFound("/raw/x.csv", os.ErrNotExist),
	})
	RecordRunMetrics(ctx, providers.Metrics, RunOutcome{
		Routine: "aerosol_bubbler",
		Err:     errors.New("plain"),
	})

	path := filepath.Join(t.TempDir(), "inpcalc.prom")
	require.NoError(t, providers.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "calculation_runs_total")
	assert.Contains(t, text, "calculation_rows_processed_total")
	assert.Contains(t, text, `error_kind="SOURCE_NOT_FOUND"`)
	assert.Contains(t, text, `error_kind="UNKNOWN"`)
	assert.NotContains(t, text, `{"`, "label names stay classic")
	assert.NotContains(t, text, `,"`, "label names stay classic")
	assert.Contains(t, text, "process_goroutines")
}

func TestRecordRunMetricsNilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordRunMetrics(context.Background(), nil, RunOutcome{})
	})
	var p *OTelProviders
	assert.NoError(t, p.WriteMetrics("/unused"))
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{
		Environment:   "lab",
		TraceExporter: "stdout",
		EnableMetrics: false,
	}, "1.2.3")

	assert.Equal(t, "lab", cfg.Environment)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, ServiceName, cfg.ServiceName)
}
