package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dpweb/dpweb/internal/app"
	iauth "github.com/dpweb/dpweb/internal/auth"
	"github.com/dpweb/dpweb/internal/handlers"
	"github.com/dpweb/dpweb/internal/middleware"
	"github.com/dpweb/dpweb/internal/monitoring"
	"github.com/dpweb/dpweb/internal/services"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
)

// Option customises router construction.
type Option func(*routerOptions)

type routerOptions struct {
	clock  func() time.Time
	tokens *iauth.TokenService
	jobs   *monitoring.Jobs
}

// WithClock replaces the wall clock used for token issuance and expiry.
func WithClock(clock func() time.Time) Option {
	return func(o *routerOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithTokenService shares an existing token service, e.g. with the maintenance sweeper.
func WithTokenService(tokens *iauth.TokenService) Option {
	return func(o *routerOptions) {
		o.tokens = tokens
	}
}

// WithJobs adds the background job report to the health endpoint.
func WithJobs(jobs *monitoring.Jobs) Option {
	return func(o *routerOptions) {
		o.jobs = jobs
	}
}

// NewRouter builds the Gin engine, wires middleware and registers the v1 API
// under /v1 along with the operational endpoints.
func NewRouter(db *gorm.DB, cfg *app.Config, opts ...Option) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	options := routerOptions{clock: time.Now}
	for _, opt := range opts {
		opt(&options)
	}

	tokens := options.tokens
	if tokens == nil {
		var err error
		tokens, err = iauth.NewTokenService(db, iauth.TokenConfig{Clock: options.clock})
		if err != nil {
			return nil, err
		}
	}

	authenticator, err := iauth.NewAuthenticator(db, options.clock)
	if err != nil {
		return nil, err
	}
	microservices := iauth.NewMicroserviceAuthenticator(cfg.Microservices.Secrets())

	policy, err := handlers.ParseListErrorPolicy(cfg.Projects.ListErrorPolicy)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowedOrigins...))

	r.NoRoute(middleware.NotFoundHandler)

	registerOperationalRoutes(r, db, cfg, options)

	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	invites, err := services.NewInviteService(db, tokens, services.WithInviteClock(options.clock))
	if err != nil {
		return nil, err
	}
	projects, err := services.NewProjectService(db)
	if err != nil {
		return nil, err
	}

	authHandler, err := handlers.NewAuthHandler(users, invites, tokens)
	if err != nil {
		return nil, err
	}
	projectHandler, err := handlers.NewProjectHandler(projects, policy)
	if err != nil {
		return nil, err
	}

	guards := routeGuards{
		user:     middleware.RequireUser(authenticator, tokens),
		telegram: middleware.RequireMicroservice(microservices, iauth.TelegramMicroservice),
	}

	api := r.Group(v1.Prefix)
	registerAuthRoutes(api, authHandler, guards)
	registerUserRoutes(api, handlers.NewUserHandler(), guards)
	registerProjectRoutes(api, projectHandler, guards)

	return r, nil
}

type routeGuards struct {
	user     gin.HandlerFunc
	telegram gin.HandlerFunc
}
