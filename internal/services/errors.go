package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrInviteNotFound indicates no unclaimed invite matches the provided secret.
	ErrInviteNotFound = errors.New("invite: not found")
	// ErrUserConflict indicates the user row could not be inserted.
	ErrUserConflict = errors.New("user: conflict")
	// ErrUserNotFound indicates no user matches the lookup.
	ErrUserNotFound = errors.New("user: not found")
	// ErrInvalidUsername is returned for usernames outside the allowed alphabet.
	ErrInvalidUsername = errors.New("user: invalid username")
	// ErrInvalidTelegramID is returned for negative Telegram ids.
	ErrInvalidTelegramID = errors.New("user: invalid telegram id")
	// ErrInvalidTitle is returned for project titles outside the length bounds.
	ErrInvalidTitle = errors.New("project: invalid title")
	// ErrInvalidLimit is returned for page sizes above the maximum.
	ErrInvalidLimit = errors.New("project: invalid limit")
	// ErrProjectConflict indicates the project row could not be inserted.
	ErrProjectConflict = errors.New("project: conflict")
	// ErrProjectNotOwned covers deleting a project that does not exist or belongs
	// to someone else. Both cases map to this error.
	ErrProjectNotOwned = errors.New("project: not owned")
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate")
}
