// Package v1 holds the entities, type tags, payloads and endpoint catalog of
// version 1 of the API. It is shared by the server and by clients.
package v1

import (
	"net/http"

	"github.com/dpweb/dpweb/pkg/endpoint"
)

// Prefix is the mount point of this API version.
const Prefix = "/v1"

// Empty is the unit payload.
type Empty = endpoint.Empty

// Resource groups.
var (
	AuthGroup     = endpoint.Group{Name: "auth", Prefix: "/auth"}
	UserGroup     = endpoint.Group{Name: "user", Prefix: "/user"}
	ProjectsGroup = endpoint.Group{Name: "projects", Prefix: "/projects"}
)

// Auth endpoints.
var (
	// TelegramIssueToken issues a short lived token for a user by Telegram id.
	// Microservice only.
	TelegramIssueToken = endpoint.New[IssueUserTokenQuery, Empty, IssueUserTokenResponse](
		AuthGroup, "telegram-issue-token", http.MethodPut, "/telegram")

	// TelegramActivateToken exchanges a TelegramAuthorization token for a
	// UserLimited one.
	TelegramActivateToken = endpoint.New[Empty, Empty, IssueUserTokenResponse](
		AuthGroup, "telegram-activate-token", http.MethodPost, "/telegram")

	// ClaimInviteUser claims an invite and returns a UserLimited token.
	ClaimInviteUser = endpoint.New[Empty, ClaimInviteBody, IssueUserTokenResponse](
		AuthGroup, "claim-invite", http.MethodPost, "/invite")

	// ClaimInviteTelegram claims an invite on behalf of a Telegram user and
	// returns a TelegramAuthorization token. Microservice only.
	ClaimInviteTelegram = endpoint.New[Empty, ClaimInviteBody, IssueUserTokenResponse](
		AuthGroup, "claim-invite-telegram", http.MethodPost, "/telegram/invite")
)

// User endpoints.
var (
	GetSelf = endpoint.New[Empty, Empty, SelfUser](UserGroup, "self", http.MethodGet, "/@self")
)

// Project endpoints.
var (
	ListProjects  = endpoint.New[ProjectListQuery, Empty, []ProjectInfo](ProjectsGroup, "list", http.MethodGet, "/")
	CreateProject = endpoint.New[Empty, CreateProjectBody, ProjectInfo](ProjectsGroup, "create", http.MethodPut, "/")
	DeleteProject = endpoint.New[ProjectPath, Empty, Empty](ProjectsGroup, "delete", http.MethodDelete, "/:id")
)

// Routes lists the catalog in registration order.
func Routes() []endpoint.Route {
	return []endpoint.Route{
		TelegramIssueToken,
		TelegramActivateToken,
		ClaimInviteUser,
		ClaimInviteTelegram,
		GetSelf,
		ListProjects,
		CreateProject,
		DeleteProject,
	}
}
