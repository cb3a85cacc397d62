package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dpweb/dpweb/internal/models"
)

const bearerPrefix = "Bearer "

var (
	// ErrCredentialsMissing covers an absent or malformed Authorization header.
	ErrCredentialsMissing = errors.New("auth: credentials missing")
	// ErrInvalidToken covers well formed credentials that match no live token.
	ErrInvalidToken = errors.New("auth: invalid token")
)

// ExpiredTokenError reports a token that matched but is past its expiry. It
// matches ErrInvalidToken through errors.Is.
type ExpiredTokenError struct {
	Token     models.UserToken
	ExpiredAt time.Time
}

func (e *ExpiredTokenError) Error() string {
	return fmt.Sprintf("auth: token %d expired at %s", e.Token.ID, e.ExpiredAt.UTC().Format(time.RFC3339))
}

func (e *ExpiredTokenError) Unwrap() error { return ErrInvalidToken }

// Credentials are the parts of a bearer header.
type Credentials struct {
	UserID int64
	Secret string
}

// ParseBearer parses "Bearer <user_id>:<secret>". The secret is everything after
// the first colon.
func ParseBearer(header string) (Credentials, error) {
	rest, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return Credentials{}, ErrCredentialsMissing
	}
	rawID, secret, ok := strings.Cut(rest, ":")
	if !ok {
		return Credentials{}, ErrCredentialsMissing
	}
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return Credentials{}, ErrCredentialsMissing
	}
	return Credentials{UserID: userID, Secret: secret}, nil
}

// Identity is an authenticated user together with the token that proved it.
type Identity struct {
	User  models.User
	Token models.UserToken
}

// ExpiresAt returns the absolute expiry of the session in milliseconds.
func (i Identity) ExpiresAt() int64 {
	return i.Token.ToAPI().ExpiresAt()
}

// Authenticator resolves bearer headers to identities. It never modifies
// storage; expired tokens are reported with *ExpiredTokenError and their
// removal is left to the caller.
type Authenticator struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAuthenticator constructs an Authenticator. clock may be nil.
func NewAuthenticator(db *gorm.DB, clock func() time.Time) (*Authenticator, error) {
	if db == nil {
		return nil, errors.New("authenticator: db is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Authenticator{db: db, now: clock}, nil
}

// Authenticate validates the Authorization header value.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*Identity, error) {
	creds, err := ParseBearer(header)
	if err != nil {
		return nil, err
	}
	return a.AuthenticateCredentials(ctx, creds)
}

// AuthenticateCredentials validates already parsed credentials.
func (a *Authenticator) AuthenticateCredentials(ctx context.Context, creds Credentials) (*Identity, error) {
	var token models.UserToken
	err := a.db.WithContext(ctx).
		InnerJoins("User").
		Where("usertoken.token = ? AND usertoken.user_id = ?", creds.Secret, creds.UserID).
		Take(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("authenticator: lookup token: %w", err)
	}
	if token.User == nil {
		return nil, ErrInvalidToken
	}

	expiresAt := token.ToAPI().ExpiresAt()
	user := *token.User
	token.User = nil

	if expiresAt < a.now().UnixMilli() {
		return nil, &ExpiredTokenError{Token: token, ExpiredAt: time.UnixMilli(expiresAt)}
	}

	return &Identity{User: user, Token: token}, nil
}
