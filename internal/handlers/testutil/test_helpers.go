package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dpweb/dpweb/internal/api"
	"github.com/dpweb/dpweb/internal/app"
	iauth "github.com/dpweb/dpweb/internal/auth"
	sharedtestutil "github.com/dpweb/dpweb/internal/database/testutil"
	"github.com/dpweb/dpweb/internal/models"
	"github.com/dpweb/dpweb/internal/services"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	"github.com/dpweb/dpweb/pkg/client"
	"github.com/dpweb/dpweb/pkg/response"
)

// TelegramKey is the shared secret of the Telegram microservice in every Env.
const TelegramKey = "telegram-test-key"

// StartTime is the initial reading of the Env clock.
var StartTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// Env encapsulates a fully-wired API instance backed by an in-memory database for handler tests.
type Env struct {
	T       *testing.T
	DB      *gorm.DB
	Router  *gin.Engine
	Tokens  *iauth.TokenService
	Invites *services.InviteService

	now time.Time
}

// EnvOption customises the Env configuration.
type EnvOption func(*app.Config)

// WithListErrorPolicy sets projects.list_error_policy.
func WithListErrorPolicy(policy string) EnvOption {
	return func(cfg *app.Config) {
		cfg.Projects.ListErrorPolicy = policy
	}
}

// NewEnv provisions a fresh handler test environment with migrations applied
// and a clock frozen at StartTime.
func NewEnv(t *testing.T, opts ...EnvOption) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	env := &Env{
		T:   t,
		DB:  sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate()),
		now: StartTime,
	}

	cfg := &app.Config{
		Server:        app.ServerConfig{Address: "127.0.0.1:0", CORS: app.CORSConfig{AllowedOrigins: []string{"*"}}},
		Microservices: app.MicroservicesConfig{Telegram: app.SharedKeyConfig{SharedKey: TelegramKey}},
		Projects:      app.ProjectsConfig{ListErrorPolicy: "empty"},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			Health:     app.HealthConfig{Enabled: true},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tokens, err := iauth.NewTokenService(env.DB, iauth.TokenConfig{Clock: env.Now})
	require.NoError(t, err)
	env.Tokens = tokens

	invites, err := services.NewInviteService(env.DB, tokens, services.WithInviteClock(env.Now))
	require.NoError(t, err)
	env.Invites = invites

	router, err := api.NewRouter(env.DB, cfg, api.WithClock(env.Now), api.WithTokenService(tokens))
	require.NoError(t, err)
	env.Router = router

	return env
}

// Now returns the current reading of the Env clock.
func (e *Env) Now() time.Time {
	return e.now
}

// Advance moves the Env clock forward.
func (e *Env) Advance(d time.Duration) {
	e.now = e.now.Add(d)
}

// CreateInvite stores an invite for a user of type ty and returns its secret.
func (e *Env) CreateInvite(ty v1.UserTy) string {
	e.T.Helper()
	invite, err := e.Invites.Create(context.Background(), ty, "test")
	require.NoError(e.T, err)
	return invite.Invite
}

// CreateUser inserts a Normal user.
func (e *Env) CreateUser(username string, telegramID int64) models.User {
	e.T.Helper()
	user := models.User{Ty: v1.UserNormal, Username: username, TelegramID: telegramID}
	require.NoError(e.T, e.DB.Create(&user).Error)
	return user
}

// IssueToken issues a token of type ty and returns it with its Authorization header.
func (e *Env) IssueToken(userID int64, ty v1.UserTokenTy) (models.UserToken, string) {
	e.T.Helper()
	token, err := e.Tokens.Issue(context.Background(), userID, ty)
	require.NoError(e.T, err)
	return *token, client.BearerAuthorization(userID, token.Token)
}

// TokenExists reports whether the token row is still stored.
func (e *Env) TokenExists(id int64) bool {
	e.T.Helper()
	var count int64
	require.NoError(e.T, e.DB.Model(&models.UserToken{}).Where("id = ?", id).Count(&count).Error)
	return count > 0
}

// TelegramAuthorization is the Authorization header of the Telegram microservice.
func TelegramAuthorization() string {
	return client.TelegramService + " " + TelegramKey
}

// Request executes an HTTP request against the test router, applying JSON
// encoding and the raw Authorization header when given.
func (e *Env) Request(method, path string, body any, authorization string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(e.T, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// DecodeResponse parses the envelope from a recorder.
func DecodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) response.Response[T] {
	t.Helper()
	var resp response.Response[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// DecodeResult parses a success envelope and returns its result.
func DecodeResult[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	resp := DecodeResponse[T](t, w)
	require.True(t, resp.OK, w.Body.String())
	return resp.Result
}
