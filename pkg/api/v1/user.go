package v1

import (
	"time"

	"github.com/dpweb/dpweb/pkg/validator"
)

// NoTelegramID marks a user without a linked Telegram account.
const NoTelegramID int64 = -1

// UserTokenScope is a bit set of permission flags. Every bit is currently valid.
type UserTokenScope int64

// Has reports whether all bits of flags are set.
func (s UserTokenScope) Has(flags UserTokenScope) bool {
	return s&flags == flags
}

// User is an identity record.
type User struct {
	ID         int64  `json:"id"`
	Ty         UserTy `json:"ty"`
	Username   string `json:"username"`
	TelegramID int64  `json:"telegram_id"`
}

// UserToken is a bearer credential bound to one user.
type UserToken struct {
	ID       int64          `json:"id"`
	Ty       UserTokenTy    `json:"ty"`
	UserID   int64          `json:"user_id"`
	Scope    UserTokenScope `json:"scope"`
	IssuedAt int64          `json:"issued_at"`
	Token    string         `json:"token"`
}

// ExpiresAt returns the absolute expiry in milliseconds since the epoch.
func (t UserToken) ExpiresAt() int64 {
	return t.IssuedAt + t.Ty.LifetimeMillis()
}

// ExpiredAt reports whether the token is past its expiry at now.
func (t UserToken) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt() < now.UnixMilli()
}

// CheckUsername reports whether v is an acceptable username.
func CheckUsername(v string) bool {
	return validator.IsUsername(v)
}
