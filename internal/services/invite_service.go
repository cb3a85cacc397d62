package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dpweb/dpweb/internal/auth"
	"github.com/dpweb/dpweb/internal/models"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	"github.com/dpweb/dpweb/pkg/crypto"
	"github.com/dpweb/dpweb/pkg/logger"
	"github.com/dpweb/dpweb/pkg/metrics"
)

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteClock injects a custom clock primarily for testing.
func WithInviteClock(clock func() time.Time) InviteOption {
	return func(s *InviteService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithInviteGenerator replaces the invite secret generator.
func WithInviteGenerator(generate func() (string, error)) InviteOption {
	return func(s *InviteService) {
		if generate != nil {
			s.generate = generate
		}
	}
}

// InviteService creates invites and turns them into users.
type InviteService struct {
	db       *gorm.DB
	tokens   *auth.TokenService
	now      func() time.Time
	generate func() (string, error)
	log      *zap.Logger
}

// NewInviteService constructs an InviteService with the provided dependencies.
func NewInviteService(db *gorm.DB, tokens *auth.TokenService, opts ...InviteOption) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}
	if tokens == nil {
		return nil, errors.New("invite service: token service is required")
	}

	service := &InviteService{
		db:       db,
		tokens:   tokens,
		now:      time.Now,
		generate: crypto.GenerateSecret,
		log:      logger.WithModule("invites"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Create stores a new invite for a user of type userTy.
func (s *InviteService) Create(ctx context.Context, userTy v1.UserTy, reason string) (*models.UserInvite, error) {
	if !userTy.Valid() {
		return nil, fmt.Errorf("invite service: %w: %d", v1.ErrUnknownTag, int64(userTy))
	}

	secret, err := s.generate()
	if err != nil {
		return nil, fmt.Errorf("invite service: generate invite: %w", err)
	}

	invite := &models.UserInvite{
		UserTy:   userTy,
		Reason:   strings.TrimSpace(reason),
		Invite:   secret,
		IssuedAt: s.now().UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Create(invite).Error; err != nil {
		return nil, fmt.Errorf("invite service: create invite: %w", err)
	}

	s.log.Info("invite created", zap.Int64("invite_id", invite.ID), zap.Stringer("user_ty", userTy))
	return invite, nil
}

// ClaimRequest is the input of Claim.
type ClaimRequest struct {
	Invite     string
	Username   string
	TelegramID int64
}

// ClaimResult is the user created by Claim together with its first token.
type ClaimResult struct {
	User  models.User
	Token models.UserToken
}

// Claim consumes an unclaimed invite, creates the user it describes and issues
// a token of type tokenTy. All steps run in one transaction, so concurrent
// claims of the same invite produce exactly one user.
//
// Failing to mark the invite once the user row exists indicates a broken store
// and panics; the transaction is rolled back before the panic propagates.
func (s *InviteService) Claim(ctx context.Context, req ClaimRequest, tokenTy v1.UserTokenTy) (*ClaimResult, error) {
	if !v1.CheckUsername(req.Username) {
		return nil, ErrInvalidUsername
	}
	if req.TelegramID < 0 {
		return nil, ErrInvalidTelegramID
	}

	var result ClaimResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invite models.UserInvite
		err := tx.Where("invite = ? AND claimed_user_id IS NULL", req.Invite).Take(&invite).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		if err != nil {
			return fmt.Errorf("invite service: find invite: %w", err)
		}

		user := models.User{
			Ty:         invite.UserTy,
			Username:   req.Username,
			TelegramID: req.TelegramID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrUserConflict, err)
		}

		res := tx.Model(&models.UserInvite{}).
			Where("id = ? AND claimed_user_id IS NULL", invite.ID).
			Update("claimed_user_id", user.ID)
		if res.Error != nil {
			panic(fmt.Errorf("invite service: mark invite %d claimed by user %d: %w", invite.ID, user.ID, res.Error))
		}
		if res.RowsAffected != 1 {
			return ErrInviteNotFound
		}

		token, err := s.tokens.IssueTx(tx, user.ID, tokenTy)
		if err != nil {
			return err
		}

		result = ClaimResult{User: user, Token: *token}
		return nil
	})

	switch {
	case err == nil:
		metrics.InvitesClaimed.WithLabelValues("success").Inc()
		s.log.Info("invite claimed", zap.Int64("user_id", result.User.ID), zap.Stringer("token_ty", tokenTy))
		return &result, nil
	case errors.Is(err, ErrInviteNotFound):
		metrics.InvitesClaimed.WithLabelValues("not_found").Inc()
	case errors.Is(err, ErrUserConflict):
		metrics.InvitesClaimed.WithLabelValues("conflict").Inc()
		if !isUniqueConstraintError(err) {
			s.log.Warn("user insert failed", zap.Error(err))
		}
	}
	return nil, err
}
