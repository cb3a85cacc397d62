package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dpweb/dpweb/internal/api"
	"github.com/dpweb/dpweb/internal/app"
	"github.com/dpweb/dpweb/internal/app/maintenance"
	iauth "github.com/dpweb/dpweb/internal/auth"
	"github.com/dpweb/dpweb/internal/database"
	"github.com/dpweb/dpweb/internal/monitoring"
	"github.com/dpweb/dpweb/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB      *gorm.DB
	Tokens  *iauth.TokenService
	Cleaner *maintenance.Cleaner
	Router  *gin.Engine
}

// bootstrapRuntime initialises the database, services, and the HTTP router.
func bootstrapRuntime(_ context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Tokens, err = iauth.NewTokenService(stack.DB, iauth.TokenConfig{})
	if err != nil {
		return nil, fmt.Errorf("initialise token service: %w", err)
	}

	routerOpts := []api.Option{api.WithTokenService(stack.Tokens)}
	if cfg.Maintenance.TokenSweep.Enabled {
		jobs := monitoring.NewJobs()
		routerOpts = append(routerOpts, api.WithJobs(jobs))
		stack.Cleaner = maintenance.NewCleaner(stack.Tokens,
			maintenance.WithTokenSchedule(cfg.Maintenance.TokenSweep.Schedule),
			maintenance.WithJobs(jobs),
		)
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	if len(cfg.Microservices.Secrets()) == 0 {
		log.Warn("no microservice shared key configured; service endpoints will reject every call")
	}

	stack.Router, err = api.NewRouter(stack.DB, cfg, routerOpts...)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	var errs error
	if s.Cleaner != nil {
		// Stop's context is done once running jobs finish; the final sweep
		// runs on the caller's context.
		<-s.Cleaner.Stop().Done()
		errs = multierr.Append(errs, s.Cleaner.RunOnce(ctx))
	}

	if s.DB != nil {
		errs = multierr.Append(errs, database.Close(s.DB))
		s.DB = nil
	}

	for _, err := range multierr.Errors(errs) {
		log.Warn("shutdown", zap.Error(err))
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseConfig()
	db, err := database.OpenAndMigrate(dbCfg)
	if err != nil {
		return nil, err
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if err := database.Close(db); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
