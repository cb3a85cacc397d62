package checks

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dpweb/dpweb/internal/database"
	"github.com/dpweb/dpweb/internal/monitoring"
)

const defaultDatabaseTimeout = 2 * time.Second

// Database returns a check that pings the database handle.
func Database(db *gorm.DB, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("database", func(ctx context.Context) monitoring.CheckResult {
		start := time.Now()

		checkCtx, cancel := context.WithTimeout(ctx, chooseDuration(timeout, defaultDatabaseTimeout))
		defer cancel()

		return monitoring.ResultFromError(database.Ping(checkCtx, db), time.Since(start))
	})
}

func chooseDuration(provided, fallback time.Duration) time.Duration {
	if provided <= 0 {
		return fallback
	}
	return provided
}
