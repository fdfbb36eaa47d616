package history

import (
	"time"

	"github.com/google/uuid"
)

// Status is the terminal state of a recorded run
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one ledger entry: a finished sample run
type Run struct {
	ID             string
	StartedAt      time.Time
	FinishedAt     time.Time
	SampleType     string
	Location       string
	Process        string
	CollectionDate string
	Routine        string
	Status         Status
	ErrorKind      string
	ErrorMessage   string
	FailedStage    string
	SourcePath     string
	ReportPath     string
	Rows           int
	BlankValues    int
	Duration       time.Duration
}

// NewRunID returns a fresh run identifier
func NewRunID() string {
	return uuid.NewString()
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	SampleType string
	Location   string
	Status     Status
	Limit      int
}
