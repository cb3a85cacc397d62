package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dpweb/dpweb/internal/models"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	"github.com/dpweb/dpweb/pkg/crypto"
	"github.com/dpweb/dpweb/pkg/metrics"
)

var (
	// ErrTokenNotFound indicates that no token row matched.
	ErrTokenNotFound = errors.New("token: not found")
	// ErrTokenTypeMismatch is returned when exchanging a token of the wrong type.
	ErrTokenTypeMismatch = errors.New("token: unexpected type")
)

// TokenConfig describes tunable behaviour for the TokenService.
type TokenConfig struct {
	Clock    func() time.Time
	Generate func() (string, error)
}

// TokenService issues, exchanges and revokes bearer tokens.
type TokenService struct {
	db       *gorm.DB
	now      func() time.Time
	generate func() (string, error)
}

// NewTokenService constructs a token service backed by the provided database.
func NewTokenService(db *gorm.DB, cfg TokenConfig) (*TokenService, error) {
	if db == nil {
		return nil, errors.New("token service: db is required")
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	generate := crypto.GenerateSecret
	if cfg.Generate != nil {
		generate = cfg.Generate
	}

	return &TokenService{db: db, now: clock, generate: generate}, nil
}

// Now returns the service clock reading.
func (s *TokenService) Now() time.Time {
	return s.now()
}

// Issue creates a token of type ty for userID.
func (s *TokenService) Issue(ctx context.Context, userID int64, ty v1.UserTokenTy) (*models.UserToken, error) {
	return s.IssueTx(s.db.WithContext(ctx), userID, ty)
}

// IssueTx creates a token using tx, so callers can issue inside their own transaction.
func (s *TokenService) IssueTx(tx *gorm.DB, userID int64, ty v1.UserTokenTy) (*models.UserToken, error) {
	if !ty.Valid() {
		return nil, fmt.Errorf("token service: %w: %d", v1.ErrUnknownTag, int64(ty))
	}

	secret, err := s.generate()
	if err != nil {
		return nil, fmt.Errorf("token service: generate secret: %w", err)
	}

	token := &models.UserToken{
		UserID:   userID,
		Token:    secret,
		IssuedAt: s.now().UnixMilli(),
		Ty:       ty,
	}
	if err := tx.Create(token).Error; err != nil {
		return nil, fmt.Errorf("token service: create token: %w", err)
	}

	metrics.TokensIssued.WithLabelValues(ty.String()).Inc()
	return token, nil
}

// Revoke deletes a token by id. Deleting a token that no longer exists is not an error.
func (s *TokenService) Revoke(ctx context.Context, tokenID int64) error {
	if err := s.db.WithContext(ctx).Where("id = ?", tokenID).Delete(&models.UserToken{}).Error; err != nil {
		return fmt.Errorf("token service: revoke token %d: %w", tokenID, err)
	}
	return nil
}

// Exchange consumes current, which must be of type from, and issues a token of
// type to for the same user in one transaction. A token consumed concurrently
// yields ErrTokenNotFound.
func (s *TokenService) Exchange(ctx context.Context, current models.UserToken, from, to v1.UserTokenTy) (*models.UserToken, error) {
	if current.Ty != from {
		return nil, ErrTokenTypeMismatch
	}

	var issued *models.UserToken
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND ty = ?", current.ID, from).Delete(&models.UserToken{})
		if res.Error != nil {
			return fmt.Errorf("token service: consume token: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrTokenNotFound
		}

		var err error
		issued, err = s.IssueTx(tx, current.UserID, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// SweepExpired deletes every token past its expiry and reports how many rows
// were removed.
func (s *TokenService) SweepExpired(ctx context.Context) (int64, error) {
	now := s.now().UnixMilli()

	var removed int64
	for _, ty := range v1.UserTokenTys() {
		res := s.db.WithContext(ctx).
			Where("ty = ? AND issued_at < ?", ty, now-ty.LifetimeMillis()).
			Delete(&models.UserToken{})
		if res.Error != nil {
			return removed, fmt.Errorf("token service: sweep %s tokens: %w", ty, res.Error)
		}
		removed += res.RowsAffected
	}
	return removed, nil
}
