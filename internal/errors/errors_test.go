package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"missing field", MissingMetadataField("process"), ErrMissingMetadataField},
		{"invalid metadata", InvalidMetadata("tube_count", -1, "must be >= 0"), ErrInvalidMetadata},
		{"unknown field", UnknownMetadataField("flow_rate"), ErrInvalidMetadata},
		{"unsupported kind", UnsupportedSampleKind("aerosol", "rooftop"), ErrUnsupportedSampleKind},
		{"source not found", SourceNotFound("/raw/x.csv", os.ErrNotExist), ErrSourceNotFound},
		{"schema mismatch", SchemaMismatch("column count", 62, 61), ErrSchemaMismatch},
		{"blank source", BlankSourceUnavailable("/b.xlsx", "summary_UF_H", nil), ErrBlankSourceUnavailable},
		{"write failure", WriteFailure("/out/r.xlsx", os.ErrPermission), ErrWriteFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, stderrors.Is(tt.err, tt.sentinel))

			wrapped := fmt.Errorf("run failed: %w", tt.err)
			assert.True(t, stderrors.Is(wrapped, tt.sentinel))
			assert.False(t, stderrors.Is(tt.err, ErrWriteFailure) && tt.sentinel != ErrWriteFailure)
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := SourceNotFound("/raw/x.csv", os.ErrNotExist)
	assert.True(t, stderrors.Is(err, os.ErrNotExist))

	var nilErr *Error
	assert.Nil(t, nilErr.Unwrap())
	assert.Equal(t, "unknown calculation error", nilErr.Error())
}

func TestErrorCarriesOffendingValues(t *testing.T) {
	err := UnsupportedSampleKind("aerosol", "rooftop")
	v, ok := ContextValue(err, "sample_type")
	require.True(t, ok)
	assert.Equal(t, "aerosol", v)
	v, ok = ContextValue(err, "location")
	require.True(t, ok)
	assert.Equal(t, "rooftop", v)

	mismatch := fmt.Errorf("reshape: %w", SchemaMismatch("column count", 62, 61))
	assert.Equal(t, KindSchemaMismatch, KindOf(mismatch))
	v, _ = ContextValue(mismatch, "expected")
	assert.Equal(t, 62, v)

	missing := MissingMetadataField("process", "collection_date")
	v, _ = ContextValue(missing, "fields")
	assert.Equal(t, []string{"collection_date", "process"}, v)
	assert.Contains(t, missing.Error(), "collection_date, process")
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain")))
	_, ok := ContextValue(stderrors.New("plain"), "path")
	assert.False(t, ok)
}

func TestErrorMessageFormat(t *testing.T) {
	err := WriteFailure("/out/r.xlsx", stderrors.New("disk full"))
	assert.Equal(t, "[WRITE_FAILURE] failed to write report /out/r.xlsx: disk full", err.Error())

	bare := &Error{Kind: KindSchemaMismatch}
	assert.Equal(t, "[SCHEMA_MISMATCH] schema mismatch", bare.Error())
}
