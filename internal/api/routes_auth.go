package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dpweb/dpweb/internal/handlers"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	"github.com/dpweb/dpweb/pkg/endpoint"
)

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler, guards routeGuards) {
	group := api.Group(v1.AuthGroup.Prefix)
	{
		endpoint.Register(group, v1.TelegramIssueToken, h.IssueByTelegram, guards.telegram)
		endpoint.Register(group, v1.TelegramActivateToken, h.Activate, guards.user)
		endpoint.Register(group, v1.ClaimInviteUser, h.ClaimUser)
		endpoint.Register(group, v1.ClaimInviteTelegram, h.ClaimTelegram, guards.telegram)
	}
}
