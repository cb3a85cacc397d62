package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	iauth "github.com/dpweb/dpweb/internal/auth"
	"github.com/dpweb/dpweb/internal/services"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	appErrors "github.com/dpweb/dpweb/pkg/errors"
	"github.com/dpweb/dpweb/pkg/logger"
	"github.com/dpweb/dpweb/pkg/response"
)

const missingTelegramID = "telegram_id failed on required"

// AuthHandler serves the /auth group: invite claims and the Telegram login flow.
type AuthHandler struct {
	users   *services.UserService
	invites *services.InviteService
	tokens  *iauth.TokenService
	log     *zap.Logger
}

// NewAuthHandler wires the auth endpoints to their services.
func NewAuthHandler(users *services.UserService, invites *services.InviteService, tokens *iauth.TokenService) (*AuthHandler, error) {
	if users == nil || invites == nil || tokens == nil {
		return nil, errors.New("auth handler: services are required")
	}
	return &AuthHandler{
		users:   users,
		invites: invites,
		tokens:  tokens,
		log:     logger.WithModule("handlers.auth"),
	}, nil
}

// IssueByTelegram issues a TelegramAuthorization token for the user linked to
// the Telegram account. Callers must be authenticated as a microservice.
func (h *AuthHandler) IssueByTelegram(c *gin.Context, query v1.IssueUserTokenQuery, _ v1.Empty) response.Response[v1.IssueUserTokenResponse] {
	ctx := requestContext(c)
	if query.TelegramID == nil {
		return response.FailWithDetail[v1.IssueUserTokenResponse](appErrors.InvalidInput, missingTelegramID)
	}

	user, err := h.users.FindByTelegramID(ctx, *query.TelegramID)
	if errors.Is(err, services.ErrUserNotFound) {
		return fail[v1.IssueUserTokenResponse](appErrors.NotFound)
	}
	if err != nil {
		return internalFailure[v1.IssueUserTokenResponse](h.log, "find user by telegram id", err)
	}

	token, err := h.tokens.Issue(ctx, user.ID, v1.TokenTelegramAuthorization)
	if err != nil {
		return internalFailure[v1.IssueUserTokenResponse](h.log, "issue telegram token", err)
	}
	return response.Success(v1.NewIssueUserTokenResponse(token.ToAPI()))
}

// Activate exchanges the caller's TelegramAuthorization token for a UserLimited
// one. Any other token type is refused and left in place.
func (h *AuthHandler) Activate(c *gin.Context, _ v1.Empty, _ v1.Empty) response.Response[v1.IssueUserTokenResponse] {
	identity, ok := requireIdentity(c)
	if !ok {
		return fail[v1.IssueUserTokenResponse](appErrors.AuthorizationRequired)
	}

	token, err := h.tokens.Exchange(requestContext(c), identity.Token, v1.TokenTelegramAuthorization, v1.TokenUserLimited)
	switch {
	case err == nil:
		h.log.Info("session activated", zap.Int64("user_id", identity.User.ID))
		return response.Success(v1.NewIssueUserTokenResponse(token.ToAPI()))
	case errors.Is(err, iauth.ErrTokenTypeMismatch):
		return fail[v1.IssueUserTokenResponse](appErrors.AuthorizationRequired)
	case errors.Is(err, iauth.ErrTokenNotFound):
		return fail[v1.IssueUserTokenResponse](appErrors.InvalidToken)
	default:
		return internalFailure[v1.IssueUserTokenResponse](h.log, "activate session", err)
	}
}

// ClaimUser claims an invite and returns a UserLimited token.
func (h *AuthHandler) ClaimUser(c *gin.Context, _ v1.Empty, body v1.ClaimInviteBody) response.Response[v1.IssueUserTokenResponse] {
	return h.claim(c, body, v1.TokenUserLimited)
}

// ClaimTelegram claims an invite for a Telegram user and returns a
// TelegramAuthorization token. Callers must be authenticated as a microservice.
func (h *AuthHandler) ClaimTelegram(c *gin.Context, _ v1.Empty, body v1.ClaimInviteBody) response.Response[v1.IssueUserTokenResponse] {
	return h.claim(c, body, v1.TokenTelegramAuthorization)
}

func (h *AuthHandler) claim(c *gin.Context, body v1.ClaimInviteBody, tokenTy v1.UserTokenTy) response.Response[v1.IssueUserTokenResponse] {
	if body.TelegramID == nil {
		return response.FailWithDetail[v1.IssueUserTokenResponse](appErrors.InvalidInput, missingTelegramID)
	}

	result, err := h.invites.Claim(requestContext(c), services.ClaimRequest{
		Invite:     body.Invite,
		Username:   body.Username,
		TelegramID: *body.TelegramID,
	}, tokenTy)

	switch {
	case err == nil:
		return response.Success(v1.NewIssueUserTokenResponse(result.Token.ToAPI()))
	case errors.Is(err, services.ErrInvalidUsername), errors.Is(err, services.ErrInvalidTelegramID):
		return response.FailWithDetail[v1.IssueUserTokenResponse](appErrors.InvalidInput, err.Error())
	case errors.Is(err, services.ErrInviteNotFound):
		return fail[v1.IssueUserTokenResponse](appErrors.NotFound)
	case errors.Is(err, services.ErrUserConflict):
		return fail[v1.IssueUserTokenResponse](appErrors.Conflict)
	default:
		return internalFailure[v1.IssueUserTokenResponse](h.log, "claim invite", err)
	}
}
