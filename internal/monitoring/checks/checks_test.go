package checks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpweb/dpweb/internal/database"
	"github.com/dpweb/dpweb/internal/database/testutil"
	"github.com/dpweb/dpweb/internal/monitoring"
)

func TestDatabaseCheck(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	result := Database(db, 0).Run(context.Background())
	assert.Equal(t, monitoring.StatusUp, result.Status)

	require.NoError(t, database.Close(db))
	result = Database(db, time.Second).Run(context.Background())
	assert.Equal(t, monitoring.StatusDown, result.Status)

	result = Database(nil, time.Second).Run(context.Background())
	assert.Equal(t, monitoring.StatusDown, result.Status)
}

func TestMaintenanceCheck(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	jobs := monitoring.NewJobs()
	check := Maintenance(jobs, time.Hour, clock)

	result := check.Run(context.Background())
	assert.Equal(t, monitoring.StatusUp, result.Status)
	assert.Equal(t, "no maintenance jobs registered", result.Details)

	jobs.Expect("token_sweep")
	result = check.Run(context.Background())
	assert.Equal(t, monitoring.StatusUp, result.Status)
	assert.Equal(t, "token_sweep: pending first run", result.Details)

	jobs.Record("token_sweep", nil, now.Add(-2*time.Hour))
	result = check.Run(context.Background())
	assert.Equal(t, monitoring.StatusDegraded, result.Status)

	jobs.Record("token_sweep", errors.New("locked"), now)
	result = check.Run(context.Background())
	assert.Equal(t, monitoring.StatusDown, result.Status)
	assert.Equal(t, "token_sweep: locked", result.Details)
}
