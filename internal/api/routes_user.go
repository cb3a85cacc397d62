package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dpweb/dpweb/internal/handlers"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	"github.com/dpweb/dpweb/pkg/endpoint"
)

func registerUserRoutes(api *gin.RouterGroup, h *handlers.UserHandler, guards routeGuards) {
	group := api.Group(v1.UserGroup.Prefix, guards.user)
	endpoint.Register(group, v1.GetSelf, h.Self)
}
