package monitoring

import (
	"sort"
	"sync"
	"time"

	"github.com/dpweb/dpweb/pkg/metrics"
)

// JobStatus is the recorded history of one background job.
type JobStatus struct {
	Job                 string    `json:"job"`
	TotalRuns           int64     `json:"total_runs"`
	ConsecutiveFailures int64     `json:"consecutive_failures"`
	LastRunAt           time.Time `json:"last_run_at"`
	LastError           string    `json:"last_error,omitempty"`
}

// Jobs records the outcome of background job runs. It is safe for concurrent use.
type Jobs struct {
	mu   sync.RWMutex
	jobs map[string]*JobStatus
}

// NewJobs constructs an empty job registry.
func NewJobs() *Jobs {
	return &Jobs{jobs: map[string]*JobStatus{}}
}

// Expect registers a job before its first run so that a missing run is visible.
func (j *Jobs) Expect(job string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.jobs[job]; !ok {
		j.jobs[job] = &JobStatus{Job: job}
	}
}

// Record stores the outcome of one run.
func (j *Jobs) Record(job string, err error, at time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	status, ok := j.jobs[job]
	if !ok {
		status = &JobStatus{Job: job}
		j.jobs[job] = status
	}
	status.TotalRuns++
	status.LastRunAt = at

	result := "success"
	if err != nil {
		result = "failure"
		status.ConsecutiveFailures++
		status.LastError = err.Error()
	} else {
		status.ConsecutiveFailures = 0
		status.LastError = ""
	}
	metrics.MaintenanceRuns.WithLabelValues(job, result).Inc()
}

// Snapshot returns a copy of every job status ordered by name.
func (j *Jobs) Snapshot() []JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]JobStatus, 0, len(j.jobs))
	for _, status := range j.jobs {
		out = append(out, *status)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Job < out[b].Job })
	return out
}
