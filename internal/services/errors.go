package services

import "errors"

// Service errors
var (
	ErrHistoryDisabled = errors.New("run history is disabled")
	ErrInvalidInput    = errors.New("invalid input")
)
