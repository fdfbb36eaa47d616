package testutil

import (
	"strings"
	"testing"

	apperrors "inpcalc/internal/errors"
	"inpcalc/internal/operations"
)

// AssertStepStatus verifies a stage has the expected status
func AssertStepStatus(t *testing.T, step *operations.StepState, expected operations.StepStatus) {
	t.Helper()
	if step == nil {
		t.Fatal("step state is nil")
	}
	if step.State() != expected {
		t.Errorf("step %s status = %v, want %v", step.ID, step.State(), expected)
	}
}

// AssertStagesCompleted verifies every stage of a run completed
func AssertStagesCompleted(t *testing.T, p *operations.Progress) {
	t.Helper()
	for _, step := range p.Stages() {
		AssertStepStatus(t, step, operations.StepStatusCompleted)
	}
}

// AssertStageFailed verifies the given stage failed and later stages never ran
func AssertStageFailed(t *testing.T, p *operations.Progress, stageID string) {
	t.Helper()
	failed := false
	for _, step := range p.Stages() {
		switch {
		case step.ID == stageID:
			AssertStepStatus(t, step, operations.StepStatusFailed)
			if step.Error == nil {
				t.Errorf("step %s has no error", stageID)
			}
			failed = true
		case failed:
			AssertStepStatus(t, step, operations.StepStatusPending)
		default:
			AssertStepStatus(t, step, operations.StepStatusCompleted)
		}
	}
	if !failed {
		t.Errorf("step %s not found", stageID)
	}
}

// AssertErrorKind verifies err is a calculation error of the given kind
func AssertErrorKind(t *testing.T, err error, expected apperrors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", expected)
	}
	if got := apperrors.KindOf(err); got != expected {
		t.Errorf("error kind = %q, want %q (error: %v)", got, expected, err)
	}
}

// AssertErrorContains verifies an error contains a substring
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Errorf("expected error containing %q, got nil", substr)
		return
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("error = %v, want error containing %q", err, substr)
	}
}

// AssertNoError fails if there is an error
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertEqual verifies two values are equal
func AssertEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

// AssertNotNil verifies a value is not nil
func AssertNotNil(t *testing.T, v interface{}) {
	t.Helper()
	if v == nil {
		t.Fatal("value is nil")
	}
}
