package api

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/dpweb/dpweb/internal/app"
	"github.com/dpweb/dpweb/internal/handlers"
	"github.com/dpweb/dpweb/internal/monitoring"
	"github.com/dpweb/dpweb/internal/monitoring/checks"
)

const databaseCheckTimeout = 2 * time.Second

func registerOperationalRoutes(r *gin.Engine, db *gorm.DB, cfg *app.Config, options routerOptions) {
	if cfg.Monitoring.Health.Enabled {
		health := monitoring.NewHealthManager(checks.Database(db, databaseCheckTimeout))
		if options.jobs != nil {
			health.Register(checks.Maintenance(options.jobs, 0, options.clock))
		}
		r.GET("/health", handlers.Health(health))
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}
}
