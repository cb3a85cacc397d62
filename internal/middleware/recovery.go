package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/dpweb/dpweb/pkg/errors"
	"github.com/dpweb/dpweb/pkg/logger"
	"github.com/dpweb/dpweb/pkg/response"
)

// Recovery converts panics into an Internal error envelope and logs the cause.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", GetRequestID(c)),
					zap.Any("error", r),
					zap.Stack("stack"),
				)
				response.Abort(c, appErrors.ErrInternalServer.WithInternal(fmt.Errorf("panic: %v", r)))
			}
		}()
		c.Next()
	}
}

// NotFoundHandler answers unknown routes with a NotFound envelope.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, appErrors.NewWithDetail(appErrors.NotFound, fmt.Sprintf("route %s %s not found", c.Request.Method, c.Request.URL.Path)))
}
