package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateAggregatesWorstStatus(t *testing.T) {
	manager := NewHealthManager(
		NewCheck("ok", func(context.Context) CheckResult { return CheckResult{Status: StatusUp} }),
		NewCheck("slow", func(context.Context) CheckResult { return CheckResult{Status: StatusDegraded, Details: "lagging"} }),
	)

	report := manager.Evaluate(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
	require.Len(t, report.Checks, 2)
	assert.Equal(t, "ok", report.Checks[0].Component)
	assert.Equal(t, "slow: degraded (lagging)", report.Failures())

	manager.Register(NewCheck("broken", nil))
	manager.Register(Check{})
	report = manager.Evaluate(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	require.Len(t, report.Checks, 3)
	assert.Equal(t, "check not implemented", report.Checks[2].Details)
}

func TestEvaluateRecoversPanickingCheck(t *testing.T) {
	manager := NewHealthManager(NewCheck("panics", func(context.Context) CheckResult { panic("boom") }))

	report := manager.Evaluate(context.Background())
	require.Len(t, report.Checks, 1)
	assert.Equal(t, CheckResult{Component: "panics", Status: StatusDown, Details: "boom"}, report.Checks[0])
}

func TestEmptyManagerIsUp(t *testing.T) {
	report := NewHealthManager().Evaluate(context.Background())
	assert.Equal(t, StatusUp, report.Status)
	assert.Empty(t, report.Checks)
	assert.Empty(t, report.Failures())
}

func TestResultFromError(t *testing.T) {
	assert.Equal(t, StatusUp, ResultFromError(nil, time.Millisecond).Status)
	assert.Equal(t, StatusDown, ResultFromError(errors.New("refused"), 0).Status)
	assert.Equal(t, StatusDegraded, ResultFromError(context.DeadlineExceeded, 0).Status)
}

func TestJobsRecord(t *testing.T) {
	jobs := NewJobs()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	jobs.Expect("b")
	jobs.Record("a", errors.New("locked"), at)
	jobs.Record("a", errors.New("locked"), at)

	snapshot := jobs.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, JobStatus{Job: "a", TotalRuns: 2, ConsecutiveFailures: 2, LastRunAt: at, LastError: "locked"}, snapshot[0])
	assert.Equal(t, JobStatus{Job: "b"}, snapshot[1])

	jobs.Record("a", nil, at.Add(time.Hour))
	snapshot = jobs.Snapshot()
	assert.Equal(t, JobStatus{Job: "a", TotalRuns: 3, LastRunAt: at.Add(time.Hour)}, snapshot[0])
}
