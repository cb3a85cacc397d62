package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dpweb/dpweb/internal/monitoring"
	appErrors "github.com/dpweb/dpweb/pkg/errors"
	"github.com/dpweb/dpweb/pkg/response"
)

// Health reports the readiness checks. Any check that is down turns the
// response into an Internal error naming the failing checks.
func Health(manager *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := manager.Evaluate(requestContext(c))
		if report.Status == monitoring.StatusDown {
			response.Error(c, appErrors.NewWithDetail(appErrors.Internal, report.Failures()))
			return
		}
		response.Ok(c, report)
	}
}
