package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/dpweb/dpweb/internal/auth"
	"github.com/dpweb/dpweb/internal/database/testutil"
	"github.com/dpweb/dpweb/internal/models"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	appErrors "github.com/dpweb/dpweb/pkg/errors"
)

type authFixture struct {
	db     *gorm.DB
	now    time.Time
	tokens *iauth.TokenService
	router *gin.Engine
	user   models.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &authFixture{
		db:  testutil.MustOpenTestDB(t, testutil.WithAutoMigrate()),
		now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	tokens, err := iauth.NewTokenService(f.db, iauth.TokenConfig{Clock: clock})
	require.NoError(t, err)
	f.tokens = tokens

	authenticator, err := iauth.NewAuthenticator(f.db, clock)
	require.NoError(t, err)

	f.user = models.User{Ty: v1.UserNormal, Username: "alice", TelegramID: 42}
	require.NoError(t, f.db.Create(&f.user).Error)

	f.router = gin.New()
	f.router.GET("/me", RequireUser(authenticator, tokens), func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		require.True(t, ok)
		c.String(http.StatusOK, identity.User.Username)
	})
	return f
}

func (f *authFixture) get(header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func TestRequireUserAcceptsValidToken(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.tokens.Issue(t.Context(), f.user.ID, v1.TokenUserLimited)
	require.NoError(t, err)

	w := f.get("Bearer " + strconv.FormatInt(f.user.ID, 10) + ":" + token.Token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "alice", w.Body.String())
}

func TestRequireUserMalformedHeaders(t *testing.T) {
	f := newAuthFixture(t)

	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer abc", "Bearer x:secret", "bearer 1:secret"} {
		w := f.get(header)
		require.Equal(t, http.StatusUnauthorized, w.Code, header)
		payload := decodeEnvelope[struct{}](t, w)
		require.False(t, payload.OK)
		require.Equal(t, appErrors.AuthorizationRequired, payload.Error.Kind, header)
	}
}

func TestRequireUserUnknownCredentials(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.tokens.Issue(t.Context(), f.user.ID, v1.TokenUserLimited)
	require.NoError(t, err)

	for _, header := range []string{
		"Bearer " + strconv.FormatInt(f.user.ID, 10) + ":wrong",
		"Bearer " + strconv.FormatInt(f.user.ID+1, 10) + ":" + token.Token,
	} {
		w := f.get(header)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		payload := decodeEnvelope[struct{}](t, w)
		require.Equal(t, appErrors.InvalidToken, payload.Error.Kind)
	}
}

func TestRequireUserRevokesExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.tokens.Issue(t.Context(), f.user.ID, v1.TokenTelegramAuthorization)
	require.NoError(t, err)

	f.now = f.now.Add(20*time.Minute + time.Millisecond)

	w := f.get("Bearer " + strconv.FormatInt(f.user.ID, 10) + ":" + token.Token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	payload := decodeEnvelope[struct{}](t, w)
	require.Equal(t, appErrors.InvalidToken, payload.Error.Kind)

	var count int64
	require.NoError(t, f.db.Model(&models.UserToken{}).Where("id = ?", token.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestRequireMicroservice(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := iauth.NewMicroserviceAuthenticator(map[iauth.Microservice]string{iauth.TelegramMicroservice: "shared"})
	r := gin.New()
	r.GET("/internal", RequireMicroservice(m, iauth.TelegramMicroservice), func(c *gin.Context) {
		service, ok := CurrentMicroservice(c)
		require.True(t, ok)
		c.String(http.StatusOK, string(service))
	})

	cases := map[string]int{
		"Internal-TelegramMicroservice shared": http.StatusOK,
		"Internal-TelegramMicroservice wrong":  http.StatusUnauthorized,
		"Internal-Other shared":                http.StatusUnauthorized,
		"Bearer 1:shared":                      http.StatusUnauthorized,
		"":                                     http.StatusUnauthorized,
	}
	for header, status := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/internal", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)
		require.Equal(t, status, w.Code, header)
		if status != http.StatusOK {
			payload := decodeEnvelope[struct{}](t, w)
			require.Equal(t, appErrors.AuthorizationRequired, payload.Error.Kind)
		}
	}
}
