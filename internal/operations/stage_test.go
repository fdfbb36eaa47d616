package operations_test

import (
	"errors"
	"testing"
	"time"

	"inpcalc/internal/operations"
	"inpcalc/internal/operations/testutil"
)

func TestStepStateLifecycle(t *testing.T) {
	step := operations.NewStepState(operations.StageIDParse)
	testutil.AssertStepStatus(t, step, operations.StepStatusPending)
	testutil.AssertEqual(t, step.Duration(), time.Duration(0))

	step.Start()
	testutil.AssertStepStatus(t, step, operations.StepStatusActive)
	if step.StartTime == nil {
		t.Fatal("StartTime not set")
	}

	step.Complete("42 rows")
	testutil.AssertStepStatus(t, step, operations.StepStatusCompleted)
	testutil.AssertEqual(t, step.Message, "42 rows")
	if step.Duration() < 0 {
		t.Errorf("negative duration %v", step.Duration())
	}
}

func TestStepStateFail(t *testing.T) {
	step := operations.NewStepState(operations.StageIDEmit)
	step.Start()
	step.Fail(errors.New("disk full"))

	testutil.AssertStepStatus(t, step, operations.StepStatusFailed)
	testutil.AssertErrorContains(t, step.Error, "disk full")
	if step.EndTime == nil {
		t.Error("EndTime not set")
	}
}

func TestProgress(t *testing.T) {
	p := operations.NewProgress(operations.StageIDs...)
	testutil.AssertEqual(t, len(p.Stages()), len(operations.StageIDs))
	testutil.AssertEqual(t, p.FailedStage(), "")

	for i, s := range p.Stages() {
		testutil.AssertEqual(t, s.ID, operations.StageIDs[i])
		testutil.AssertStepStatus(t, s, operations.StepStatusPending)
	}

	p.Stage(operations.StageIDLocate).Start()
	p.Stage(operations.StageIDLocate).Complete("found")
	p.Stage(operations.StageIDParse).Start()
	p.Stage(operations.StageIDParse).Fail(errors.New("bad row"))

	testutil.AssertEqual(t, p.FailedStage(), operations.StageIDParse)
	testutil.AssertStageFailed(t, p, operations.StageIDParse)

	if p.Stage("unknown") != nil {
		t.Error("Stage(unknown) should be nil")
	}
}

func TestProgressNilSafe(t *testing.T) {
	var p *operations.Progress
	if p.Stage(operations.StageIDLocate) != nil {
		t.Error("nil progress returned a stage")
	}
	testutil.AssertEqual(t, len(p.Stages()), 0)
	testutil.AssertEqual(t, p.FailedStage(), "")
}
