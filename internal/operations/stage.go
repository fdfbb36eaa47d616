package operations

import (
	"sync"
	"time"
)

// StepStatus represents the current status of a pipeline stage
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// StepState represents the runtime state of one stage of a sample run
type StepState struct {
	mu        sync.RWMutex
	ID        string
	Status    StepStatus
	StartTime *time.Time
	EndTime   *time.Time
	Message   string
	Error     error
}

// NewStepState creates a stage state with default values
func NewStepState(id string) *StepState {
	return &StepState{
		ID:     id,
		Status: StepStatusPending,
	}
}

// Start marks the stage as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the stage as completed with a short result message
func (s *StepState) Complete(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.Message = message
}

// Fail marks the stage as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// State returns the current status
func (s *StepState) State() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns the duration of the stage execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// Progress tracks the stages of one sample run in execution order
type Progress struct {
	mu     sync.RWMutex
	stages []*StepState
}

// NewProgress creates pending states for ids
func NewProgress(ids ...string) *Progress {
	p := &Progress{}
	for _, id := range ids {
		p.stages = append(p.stages, NewStepState(id))
	}
	return p
}

// Stage returns the state for id, or nil
func (p *Progress) Stage(id string) *StepState {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, s := range p.stages {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Stages returns the tracked stages in order
func (p *Progress) Stages() []*StepState {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*StepState, len(p.stages))
	copy(out, p.stages)
	return out
}

// FailedStage returns the id of the first failed stage, or ""
func (p *Progress) FailedStage() string {
	for _, s := range p.Stages() {
		if s.State() == StepStatusFailed {
			return s.ID
		}
	}
	return ""
}
