package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a calculation run failure
type Kind string

const (
	KindMissingMetadataField   Kind = "MISSING_METADATA_FIELD"
	KindInvalidMetadata        Kind = "INVALID_METADATA"
	KindUnsupportedSampleKind  Kind = "UNSUPPORTED_SAMPLE_KIND"
	KindSourceNotFound         Kind = "SOURCE_NOT_FOUND"
	KindSchemaMismatch         Kind = "SCHEMA_MISMATCH"
	KindBlankSourceUnavailable Kind = "BLANK_SOURCE_UNAVAILABLE"
	KindWriteFailure           Kind = "WRITE_FAILURE"
)

// Error is the error type returned by every stage of a sample run.
// Context carries the offending values (paths, field names, counts).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Context map[string]interface{}
}

// Sentinels for errors.Is checks. Only the Kind is compared.
var (
	ErrMissingMetadataField   = &Error{Kind: KindMissingMetadataField}
	ErrInvalidMetadata        = &Error{Kind: KindInvalidMetadata}
	ErrUnsupportedSampleKind  = &Error{Kind: KindUnsupportedSampleKind}
	ErrSourceNotFound         = &Error{Kind: KindSourceNotFound}
	ErrSchemaMismatch         = &Error{Kind: KindSchemaMismatch}
	ErrBlankSourceUnavailable = &Error{Kind: KindBlankSourceUnavailable}
	ErrWriteFailure           = &Error{Kind: KindWriteFailure}
)

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "unknown calculation error"
	}
	msg := e.Message
	if msg == "" {
		msg = strings.ToLower(strings.ReplaceAll(string(e.Kind), "_", " "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap allows errors.Is and errors.As to reach the cause
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is a sentinel of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Kind == e.Kind
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error of the given kind
func New(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// MissingMetadataField reports required metadata fields that were not supplied
func MissingMetadataField(fields ...string) *Error {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	return New(KindMissingMetadataField,
		fmt.Sprintf("missing required metadata field(s): %s", strings.Join(sorted, ", ")), nil).
		WithContext("fields", sorted)
}

// InvalidMetadata reports a metadata field whose value is present but unusable
func InvalidMetadata(field string, value interface{}, reason string) *Error {
	return New(KindInvalidMetadata,
		fmt.Sprintf("invalid metadata field %q (%v): %s", field, value, reason), nil).
		WithContext("field", field).
		WithContext("value", value)
}

// UnknownMetadataField reports metadata keys the record does not define
func UnknownMetadataField(fields ...string) *Error {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	return New(KindInvalidMetadata,
		fmt.Sprintf("unknown metadata field(s): %s", strings.Join(sorted, ", ")), nil).
		WithContext("fields", sorted)
}

// UnsupportedSampleKind reports a (type, location) pair with no registered routine
func UnsupportedSampleKind(sampleType, location string) *Error {
	return New(KindUnsupportedSampleKind,
		fmt.Sprintf("no calculation routine for sample type %q at location %q", sampleType, location), nil).
		WithContext("sample_type", sampleType).
		WithContext("location", location)
}

// SourceNotFound reports a missing raw data file
func SourceNotFound(path string, cause error) *Error {
	return New(KindSourceNotFound, fmt.Sprintf("raw data source not found: %s", path), cause).
		WithContext("path", path)
}

// SchemaMismatch reports a column or row count disagreement
func SchemaMismatch(subject string, expected, got int) *Error {
	return New(KindSchemaMismatch,
		fmt.Sprintf("%s: expected %d, got %d", subject, expected, got), nil).
		WithContext("subject", subject).
		WithContext("expected", expected).
		WithContext("got", got)
}

// BlankSourceUnavailable reports a blank workbook, section or column that cannot be read
func BlankSourceUnavailable(path, section string, cause error) *Error {
	msg := fmt.Sprintf("blank source unavailable: %s", path)
	if section != "" {
		msg = fmt.Sprintf("blank source %s: section %q unavailable", path, section)
	}
	return New(KindBlankSourceUnavailable, msg, cause).
		WithContext("path", path).
		WithContext("section", section)
}

// WriteFailure reports a report that could not be persisted
func WriteFailure(path string, cause error) *Error {
	return New(KindWriteFailure, fmt.Sprintf("failed to write report %s", path), cause).
		WithContext("path", path)
}

// KindOf returns the Kind of err, or "" when err is not a calculation error
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	return ""
}

// ContextValue returns a context value carried by a calculation error
func ContextValue(err error, key string) (interface{}, bool) {
	var e *Error
	if !As(err, &e) || e.Context == nil {
		return nil, false
	}
	v, ok := e.Context[key]
	return v, ok
}
