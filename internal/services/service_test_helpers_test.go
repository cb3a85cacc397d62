package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dpweb/dpweb/internal/auth"
	"github.com/dpweb/dpweb/internal/database/testutil"
	"github.com/dpweb/dpweb/internal/models"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
}

func newTokenService(t *testing.T, db *gorm.DB) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService(db, auth.TokenConfig{Clock: testClock})
	require.NoError(t, err)
	return tokens
}

func createUser(t *testing.T, db *gorm.DB, username string, telegramID int64) models.User {
	t.Helper()
	user := models.User{Ty: v1.UserNormal, Username: username, TelegramID: telegramID}
	require.NoError(t, db.Create(&user).Error)
	return user
}
