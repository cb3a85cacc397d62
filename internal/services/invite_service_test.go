package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dpweb/dpweb/internal/models"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
)

func newInviteService(t *testing.T) (*InviteService, func() int64) {
	t.Helper()
	db := openServiceTestDB(t)
	svc, err := NewInviteService(db, newTokenService(t, db), WithInviteClock(testClock))
	require.NoError(t, err)

	countUsers := func() int64 {
		var n int64
		require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
		return n
	}
	return svc, countUsers
}

func TestInviteServiceCreate(t *testing.T) {
	svc, _ := newInviteService(t)

	invite, err := svc.Create(context.Background(), v1.UserUnverified, "  beta tester ")
	require.NoError(t, err)
	require.Len(t, invite.Invite, 48)
	require.Equal(t, v1.UserUnverified, invite.UserTy)
	require.Equal(t, "beta tester", invite.Reason)
	require.Equal(t, testNow.UnixMilli(), invite.IssuedAt)
	require.False(t, invite.Claimed())

	_, err = svc.Create(context.Background(), v1.UserTy(11), "")
	require.ErrorIs(t, err, v1.ErrUnknownTag)
}

func TestInviteServiceClaimOnce(t *testing.T) {
	svc, countUsers := newInviteService(t)
	ctx := context.Background()

	invite, err := svc.Create(ctx, v1.UserNormal, "")
	require.NoError(t, err)

	result, err := svc.Claim(ctx, ClaimRequest{Invite: invite.Invite, Username: "alice", TelegramID: 10}, v1.TokenUserLimited)
	require.NoError(t, err)
	require.Equal(t, "alice", result.User.Username)
	require.Equal(t, v1.UserNormal, result.User.Ty)
	require.Equal(t, result.User.ID, result.Token.UserID)
	require.Equal(t, v1.TokenUserLimited, result.Token.Ty)
	require.Len(t, result.Token.Token, 48)

	var stored models.UserInvite
	require.NoError(t, svc.db.First(&stored, invite.ID).Error)
	require.NotNil(t, stored.ClaimedUserID)
	require.Equal(t, result.User.ID, *stored.ClaimedUserID)

	_, err = svc.Claim(ctx, ClaimRequest{Invite: invite.Invite, Username: "alice", TelegramID: 10}, v1.TokenUserLimited)
	require.ErrorIs(t, err, ErrInviteNotFound)
	_, err = svc.Claim(ctx, ClaimRequest{Invite: invite.Invite, Username: "other", TelegramID: 11}, v1.TokenTelegramAuthorization)
	require.ErrorIs(t, err, ErrInviteNotFound)

	require.EqualValues(t, 1, countUsers())
}

func TestInviteServiceClaimUnknownInvite(t *testing.T) {
	svc, _ := newInviteService(t)

	_, err := svc.Claim(context.Background(), ClaimRequest{Invite: "missing", Username: "alice"}, v1.TokenUserLimited)
	require.ErrorIs(t, err, ErrInviteNotFound)
}

func TestInviteServiceClaimValidatesInput(t *testing.T) {
	svc, countUsers := newInviteService(t)
	ctx := context.Background()

	invite, err := svc.Create(ctx, v1.UserNormal, "")
	require.NoError(t, err)

	_, err = svc.Claim(ctx, ClaimRequest{Invite: invite.Invite, Username: "bad name", TelegramID: 1}, v1.TokenUserLimited)
	require.ErrorIs(t, err, ErrInvalidUsername)

	_, err = svc.Claim(ctx, ClaimRequest{Invite: invite.Invite, Username: "", TelegramID: 1}, v1.TokenUserLimited)
	require.ErrorIs(t, err, ErrInvalidUsername)

	_, err = svc.Claim(ctx, ClaimRequest{Invite: invite.Invite, Username: "good", TelegramID: -1}, v1.TokenUserLimited)
	require.ErrorIs(t, err, ErrInvalidTelegramID)

	require.Zero(t, countUsers())
}

func TestInviteServiceClaimConflictKeepsInvite(t *testing.T) {
	svc, countUsers := newInviteService(t)
	ctx := context.Background()

	createUser(t, svc.db, "taken", 5)

	invite, err := svc.Create(ctx, v1.UserUnregistered, "")
	require.NoError(t, err)

	_, err = svc.Claim(ctx, ClaimRequest{Invite: invite.Invite, Username: "taken", TelegramID: 6}, v1.TokenUserLimited)
	require.ErrorIs(t, err, ErrUserConflict)
	require.True(t, isUniqueConstraintError(err))

	_, err = svc.Claim(ctx, ClaimRequest{Invite: invite.Invite, Username: "fresh", TelegramID: 5}, v1.TokenUserLimited)
	require.ErrorIs(t, err, ErrUserConflict)

	var stored models.UserInvite
	require.NoError(t, svc.db.First(&stored, invite.ID).Error)
	require.False(t, stored.Claimed(), "failed claims must leave the invite usable")

	result, err := svc.Claim(ctx, ClaimRequest{Invite: invite.Invite, Username: "fresh", TelegramID: 6}, v1.TokenTelegramAuthorization)
	require.NoError(t, err)
	require.Equal(t, v1.UserUnregistered, result.User.Ty)
	require.Equal(t, v1.TokenTelegramAuthorization, result.Token.Ty)
	require.EqualValues(t, 2, countUsers())
}
