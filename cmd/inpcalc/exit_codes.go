package main

import (
	apperrors "inpcalc/internal/errors"
)

// Exit statuses by failure kind
const (
	exitOK                     = 0
	exitFailure                = 1
	exitMissingMetadata        = 2
	exitInvalidMetadata        = 3
	exitUnsupportedSampleKind  = 4
	exitSourceNotFound         = 5
	exitSchemaMismatch         = 6
	exitBlankSourceUnavailable = 7
	exitWriteFailure           = 8
)

var exitCodes = map[apperrors.Kind]int{
	apperrors.KindMissingMetadataField:   exitMissingMetadata,
	apperrors.KindInvalidMetadata:        exitInvalidMetadata,
	apperrors.KindUnsupportedSampleKind:  exitUnsupportedSampleKind,
	apperrors.KindSourceNotFound:         exitSourceNotFound,
	apperrors.KindSchemaMismatch:         exitSchemaMismatch,
	apperrors.KindBlankSourceUnavailable: exitBlankSourceUnavailable,
	apperrors.KindWriteFailure:           exitWriteFailure,
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if code, ok := exitCodes[apperrors.KindOf(err)]; ok {
		return code
	}
	return exitFailure
}
