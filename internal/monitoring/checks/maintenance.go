package checks

import (
	"context"
	"strings"
	"time"

	"github.com/dpweb/dpweb/internal/monitoring"
)

const defaultMaintenanceMaxAge = 6 * time.Hour

// Maintenance verifies that background jobs succeed and ran within maxAge.
// A job that keeps failing is down; a stale job is degraded.
func Maintenance(jobs *monitoring.Jobs, maxAge time.Duration, clock func() time.Time) monitoring.Check {
	maxAge = chooseDuration(maxAge, defaultMaintenanceMaxAge)
	if clock == nil {
		clock = time.Now
	}

	return monitoring.NewCheck("maintenance", func(context.Context) monitoring.CheckResult {
		snapshot := jobs.Snapshot()
		if len(snapshot) == 0 {
			return monitoring.CheckResult{Status: monitoring.StatusUp, Details: "no maintenance jobs registered"}
		}

		now := clock()
		status := monitoring.StatusUp
		var problems []string

		for _, job := range snapshot {
			if job.TotalRuns == 0 {
				problems = append(problems, job.Job+": pending first run")
				continue
			}
			if job.ConsecutiveFailures > 0 {
				status = monitoring.WorstStatus(status, monitoring.StatusDown)
				problems = append(problems, job.Job+": "+job.LastError)
			}
			if now.Sub(job.LastRunAt) > maxAge {
				status = monitoring.WorstStatus(status, monitoring.StatusDegraded)
				problems = append(problems, job.Job+": stale run "+job.LastRunAt.UTC().Format(time.RFC3339))
			}
		}

		return monitoring.CheckResult{Status: status, Details: strings.Join(problems, "; ")}
	})
}
