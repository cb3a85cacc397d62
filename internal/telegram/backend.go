package telegram

import (
	"context"

	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	"github.com/dpweb/dpweb/pkg/client"
)

// Backend is the part of the API the bridge calls on behalf of chat users.
type Backend interface {
	ClaimInvite(ctx context.Context, invite, username string, telegramID int64) (v1.IssueUserTokenResponse, error)
	IssueToken(ctx context.Context, telegramID int64) (v1.IssueUserTokenResponse, error)
}

// ClientBackend calls the API over HTTP. The client must authenticate as the
// Telegram microservice.
type ClientBackend struct {
	client *client.Client
}

// NewClientBackend wraps c.
func NewClientBackend(c *client.Client) *ClientBackend {
	return &ClientBackend{client: c}
}

// ClaimInvite registers a user linked to telegramID.
func (b *ClientBackend) ClaimInvite(ctx context.Context, invite, username string, telegramID int64) (v1.IssueUserTokenResponse, error) {
	return client.Do(ctx, b.client, v1.ClaimInviteTelegram, v1.Empty{}, v1.NewClaimInviteBody(invite, username, telegramID))
}

// IssueToken issues a short lived token for the user linked to telegramID.
func (b *ClientBackend) IssueToken(ctx context.Context, telegramID int64) (v1.IssueUserTokenResponse, error) {
	return client.Do(ctx, b.client, v1.TelegramIssueToken, v1.NewIssueUserTokenQuery(telegramID), v1.Empty{})
}
