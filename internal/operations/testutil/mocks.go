package testutil

import (
	"context"
	"sync"
	"time"

	"inpcalc/pkg/contracts/domain"
)

// MockRoutine is a configurable mock implementation of the routine interface
type MockRoutine struct {
	IDValue   string
	NameValue string

	// Configurable functions
	CalculateFunc func(ctx context.Context, s *domain.Sample) (string, error)
	ValidateFunc  func(s *domain.Sample) error

	// Call tracking
	mu             sync.Mutex
	CalculateCalls []CalculateCall
	ValidateCalls  int
}

// CalculateCall tracks arguments passed to Calculate
type CalculateCall struct {
	Ctx    context.Context
	Sample *domain.Sample
	Time   time.Time
}

// ID returns the routine ID
func (m *MockRoutine) ID() string {
	return m.IDValue
}

// Name returns the routine name
func (m *MockRoutine) Name() string {
	return m.NameValue
}

// Validate runs the mock validate function
func (m *MockRoutine) Validate(s *domain.Sample) error {
	m.mu.Lock()
	m.ValidateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(s)
	}
	return nil
}

// Calculate runs the mock calculate function
func (m *MockRoutine) Calculate(ctx context.Context, s *domain.Sample) (string, error) {
	m.mu.Lock()
	m.CalculateCalls = append(m.CalculateCalls, CalculateCall{
		Ctx:    ctx,
		Sample: s,
		Time:   time.Now(),
	})
	m.mu.Unlock()

	if m.CalculateFunc != nil {
		return m.CalculateFunc(ctx, s)
	}
	return "/reports/" + m.IDValue + ".xlsx", nil
}

// Calls returns how many times Calculate ran
func (m *MockRoutine) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CalculateCalls)
}

// NewMockRoutine creates a routine that succeeds with a fixed report path
func NewMockRoutine(id string) *MockRoutine {
	return &MockRoutine{IDValue: id, NameValue: id}
}

// NewFailingRoutine creates a routine whose Calculate returns err
func NewFailingRoutine(id string, err error) *MockRoutine {
	return &MockRoutine{
		IDValue:   id,
		NameValue: id,
		CalculateFunc: func(ctx context.Context, s *domain.Sample) (string, error) {
			return "", err
		},
	}
}
