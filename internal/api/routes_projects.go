package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dpweb/dpweb/internal/handlers"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	"github.com/dpweb/dpweb/pkg/endpoint"
)

func registerProjectRoutes(api *gin.RouterGroup, h *handlers.ProjectHandler, guards routeGuards) {
	group := api.Group(v1.ProjectsGroup.Prefix, guards.user)
	{
		endpoint.Register(group, v1.ListProjects, h.List)
		endpoint.Register(group, v1.CreateProject, h.Create)
		endpoint.Register(group, v1.DeleteProject, h.Delete)
	}
}
