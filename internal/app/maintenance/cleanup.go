package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dpweb/dpweb/internal/monitoring"
	"github.com/dpweb/dpweb/pkg/logger"
	"github.com/dpweb/dpweb/pkg/metrics"
)

const defaultTokenSpec = "@hourly"

// TokenSweepJob names the expired token sweep in job reports.
const TokenSweepJob = "token_sweep"

// TokenSweeper deletes expired bearer tokens.
type TokenSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Cleaner runs background maintenance. Requests already revoke the expired
// tokens they present; the sweep removes the ones nobody presents again.
type Cleaner struct {
	tokens TokenSweeper
	cron   *cron.Cron
	log    *zap.Logger
	jobs   *monitoring.Jobs

	tokenSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithTokenSchedule overrides the cron specification for token cleanup.
func WithTokenSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.tokenSchedule = spec
		}
	}
}

// WithJobs records the outcome of every run for the health endpoint.
func WithJobs(jobs *monitoring.Jobs) Option {
	return func(cleaner *Cleaner) {
		cleaner.jobs = jobs
	}
}

// NewCleaner constructs a Cleaner. A nil sweeper disables token cleanup.
func NewCleaner(tokens TokenSweeper, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		tokens:        tokens,
		tokenSchedule: defaultTokenSpec,
		log:           logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it.
func (c *Cleaner) Start() error {
	if c.tokens == nil {
		return nil
	}

	if _, err := c.cron.AddFunc(c.tokenSchedule, func() {
		if _, err := c.sweepTokens(context.Background()); err != nil {
			c.log.Warn("token sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	if c.jobs != nil {
		c.jobs.Expect(TokenSweepJob)
	}
	c.cron.Start()
	c.log.Info("maintenance started", zap.String("token_schedule", c.tokenSchedule))
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs
// have finished; it is not meant to carry further work.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error
	if c.tokens != nil {
		if _, err := c.sweepTokens(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (c *Cleaner) sweepTokens(ctx context.Context) (int64, error) {
	if c.tokens == nil {
		return 0, errors.New("token sweep: sweeper is required")
	}

	removed, err := c.tokens.SweepExpired(ctx)
	if c.jobs != nil {
		c.jobs.Record(TokenSweepJob, err, time.Now())
	}
	if removed > 0 {
		metrics.TokensRevoked.WithLabelValues("sweep").Add(float64(removed))
		c.log.Info("expired tokens removed", zap.Int64("count", removed))
	}
	return removed, err
}
