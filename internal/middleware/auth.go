package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/dpweb/dpweb/internal/auth"
	appErrors "github.com/dpweb/dpweb/pkg/errors"
	"github.com/dpweb/dpweb/pkg/logger"
	"github.com/dpweb/dpweb/pkg/metrics"
	"github.com/dpweb/dpweb/pkg/response"
)

const (
	CtxIdentityKey     = "identity"
	CtxUserIDKey       = "userID"
	CtxMicroserviceKey = "microservice"
)

// TokenRevoker removes tokens found expired during authentication.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID int64) error
}

// RequireUser authenticates "Authorization: Bearer <user_id>:<secret>" and
// stores the identity in the context. An expired token is revoked before the
// request is rejected.
func RequireUser(authenticator *iauth.Authenticator, revoker TokenRevoker) gin.HandlerFunc {
	log := logger.WithModule("auth")

	return func(c *gin.Context) {
		identity, err := authenticator.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			var expired *iauth.ExpiredTokenError
			switch {
			case errors.Is(err, iauth.ErrCredentialsMissing):
				metrics.AuthAttempts.WithLabelValues("user", "absent").Inc()
				log.Debug("authorization required", zap.String("path", c.FullPath()))
				response.Abort(c, appErrors.ErrAuthorizationRequired)
			case errors.As(err, &expired):
				metrics.AuthAttempts.WithLabelValues("user", "expired").Inc()
				log.Debug("token expired", zap.Int64("token_id", expired.Token.ID), zap.Time("expired_at", expired.ExpiredAt))
				if revokeErr := revoker.Revoke(c.Request.Context(), expired.Token.ID); revokeErr != nil {
					log.Warn("revoke expired token", zap.Int64("token_id", expired.Token.ID), zap.Error(revokeErr))
				} else {
					metrics.TokensRevoked.WithLabelValues("request").Inc()
				}
				response.Abort(c, appErrors.ErrInvalidToken)
			case errors.Is(err, iauth.ErrInvalidToken):
				metrics.AuthAttempts.WithLabelValues("user", "invalid").Inc()
				log.Debug("invalid token", zap.String("path", c.FullPath()))
				response.Abort(c, appErrors.ErrInvalidToken)
			default:
				log.Error("authenticate user", zap.Error(err))
				response.Abort(c, appErrors.ErrInternalServer.WithInternal(err))
			}
			return
		}

		metrics.AuthAttempts.WithLabelValues("user", "success").Inc()
		c.Set(CtxIdentityKey, identity)
		c.Set(CtxUserIDKey, identity.User.ID)
		c.Next()
	}
}

// RequireMicroservice authenticates "Authorization: <service> <secret>" and
// accepts only the listed services.
func RequireMicroservice(authenticator *iauth.MicroserviceAuthenticator, allowed ...iauth.Microservice) gin.HandlerFunc {
	log := logger.WithModule("auth")

	return func(c *gin.Context) {
		service, err := authenticator.Authenticate(c.GetHeader("Authorization"))
		if err == nil && !containsService(allowed, service) {
			err = iauth.ErrCredentialsMissing
		}
		if err != nil {
			metrics.AuthAttempts.WithLabelValues("microservice", "absent").Inc()
			log.Debug("microservice authorization required", zap.String("path", c.FullPath()))
			response.Abort(c, appErrors.ErrAuthorizationRequired)
			return
		}

		metrics.AuthAttempts.WithLabelValues("microservice", "success").Inc()
		c.Set(CtxMicroserviceKey, service)
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by RequireUser.
func CurrentIdentity(c *gin.Context) (*iauth.Identity, bool) {
	value, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := value.(*iauth.Identity)
	return identity, ok && identity != nil
}

// CurrentMicroservice returns the service stored by RequireMicroservice.
func CurrentMicroservice(c *gin.Context) (iauth.Microservice, bool) {
	value, ok := c.Get(CtxMicroserviceKey)
	if !ok {
		return "", false
	}
	service, ok := value.(iauth.Microservice)
	return service, ok
}

func containsService(allowed []iauth.Microservice, service iauth.Microservice) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if candidate == service {
			return true
		}
	}
	return false
}
