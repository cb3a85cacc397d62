package handlers

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	appErrors "github.com/dpweb/dpweb/pkg/errors"
	"github.com/dpweb/dpweb/pkg/response"
)

// UserHandler serves the /user group.
type UserHandler struct{}

// NewUserHandler constructs a UserHandler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Self returns the authenticated user and the expiry of the token in use.
func (h *UserHandler) Self(c *gin.Context, _ v1.Empty, _ v1.Empty) response.Response[v1.SelfUser] {
	identity, ok := requireIdentity(c)
	if !ok {
		return fail[v1.SelfUser](appErrors.AuthorizationRequired)
	}
	return response.Success(v1.SelfUser{
		User:      identity.User.ToAPI(),
		ExpiresAt: identity.ExpiresAt(),
	})
}
