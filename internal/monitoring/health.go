// Package monitoring aggregates readiness checks for the health endpoint and
// tracks the outcome of background jobs.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CheckStatus encodes the outcome of a health check.
type CheckStatus string

const (
	StatusUp       CheckStatus = "up"
	StatusDown     CheckStatus = "down"
	StatusDegraded CheckStatus = "degraded"
)

// CheckResult captures a single dependency check outcome.
type CheckResult struct {
	Component  string      `json:"component"`
	Status     CheckStatus `json:"status"`
	Details    string      `json:"details,omitempty"`
	DurationMS int64       `json:"duration_ms"`
}

// HealthReport aggregates check results.
type HealthReport struct {
	Status CheckStatus   `json:"status"`
	Checks []CheckResult `json:"checks"`
}

// Failures lists the checks that are not up as "component: details".
func (r HealthReport) Failures() string {
	var parts []string
	for _, check := range r.Checks {
		if check.Status == StatusUp {
			continue
		}
		part := check.Component + ": " + string(check.Status)
		if check.Details != "" {
			part += " (" + check.Details + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

// Check encapsulates a single dependency check.
type Check struct {
	Name string
	Run  func(ctx context.Context) CheckResult
}

// NewCheck constructs a health check with the provided name and function.
func NewCheck(name string, fn func(ctx context.Context) CheckResult) Check {
	if fn == nil {
		fn = func(context.Context) CheckResult {
			return CheckResult{Status: StatusDown, Details: "check not implemented"}
		}
	}
	return Check{Name: name, Run: fn}
}

// HealthManager runs the registered checks.
type HealthManager struct {
	checks []Check
}

// NewHealthManager constructs an empty health manager.
func NewHealthManager(checks ...Check) *HealthManager {
	m := &HealthManager{}
	for _, check := range checks {
		m.Register(check)
	}
	return m
}

// Register appends a check. Unnamed checks are ignored.
func (m *HealthManager) Register(check Check) {
	if check.Name == "" {
		return
	}
	m.checks = append(m.checks, check)
}

// Evaluate executes every check in registration order. The report is down if
// any check is down and degraded if any check is degraded.
func (m *HealthManager) Evaluate(ctx context.Context) HealthReport {
	report := HealthReport{
		Status: StatusUp,
		Checks: make([]CheckResult, 0, len(m.checks)),
	}

	for _, check := range m.checks {
		result := runCheck(ctx, check)
		report.Checks = append(report.Checks, result)
		report.Status = WorstStatus(report.Status, result.Status)
	}
	return report
}

func runCheck(ctx context.Context, check Check) (result CheckResult) {
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			result = CheckResult{Status: StatusDown, Details: fmt.Sprint(rec)}
		}
		if result.Status == "" {
			result.Status = StatusDown
		}
		if result.DurationMS == 0 {
			result.DurationMS = time.Since(start).Milliseconds()
		}
		result.Component = check.Name
	}()

	return check.Run(ctx)
}

// WorstStatus returns the more severe of two statuses.
func WorstStatus(current, candidate CheckStatus) CheckStatus {
	if current == StatusDown || candidate == StatusDown {
		return StatusDown
	}
	if current == StatusDegraded || candidate == StatusDegraded {
		return StatusDegraded
	}
	return StatusUp
}

// ResultFromError converts an error into a CheckResult. Timeouts and
// cancellations degrade rather than fail the check.
func ResultFromError(err error, duration time.Duration) CheckResult {
	if err == nil {
		return CheckResult{Status: StatusUp, DurationMS: duration.Milliseconds()}
	}

	status := StatusDown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = StatusDegraded
	}
	return CheckResult{Status: status, Details: err.Error(), DurationMS: duration.Milliseconds()}
}
