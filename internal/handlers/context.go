package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/dpweb/dpweb/internal/auth"
	"github.com/dpweb/dpweb/internal/middleware"
	appErrors "github.com/dpweb/dpweb/pkg/errors"
	"github.com/dpweb/dpweb/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// requireIdentity returns the identity set by middleware.RequireUser.
func requireIdentity(c *gin.Context) (*iauth.Identity, bool) {
	return middleware.CurrentIdentity(c)
}

func fail[T any](kind appErrors.Kind) response.Response[T] {
	return response.Fail[T](kind)
}

// internalFailure logs err and hides it behind the Internal envelope.
func internalFailure[T any](log *zap.Logger, msg string, err error) response.Response[T] {
	log.Error(msg, zap.Error(err))
	return response.Fail[T](appErrors.Internal)
}
