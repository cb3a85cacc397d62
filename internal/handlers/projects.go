package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dpweb/dpweb/internal/services"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	appErrors "github.com/dpweb/dpweb/pkg/errors"
	"github.com/dpweb/dpweb/pkg/logger"
	"github.com/dpweb/dpweb/pkg/response"
)

// ListErrorPolicy selects what List answers when the store fails.
type ListErrorPolicy int

const (
	// ListErrorsAsEmpty answers with an empty list.
	ListErrorsAsEmpty ListErrorPolicy = iota
	// ListErrorsAsFailure answers with the Internal envelope.
	ListErrorsAsFailure
)

// ParseListErrorPolicy reads the configuration spelling of a policy.
func ParseListErrorPolicy(value string) (ListErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "empty":
		return ListErrorsAsEmpty, nil
	case "fail", "failure":
		return ListErrorsAsFailure, nil
	default:
		return 0, fmt.Errorf("unknown list error policy %q", value)
	}
}

func (p ListErrorPolicy) String() string {
	if p == ListErrorsAsFailure {
		return "fail"
	}
	return "empty"
}

// ProjectHandler serves the /projects group. Every operation is scoped to the
// authenticated author.
type ProjectHandler struct {
	projects *services.ProjectService
	policy   ListErrorPolicy
	log      *zap.Logger
}

// NewProjectHandler constructs a ProjectHandler.
func NewProjectHandler(projects *services.ProjectService, policy ListErrorPolicy) (*ProjectHandler, error) {
	if projects == nil {
		return nil, errors.New("project handler: service is required")
	}
	return &ProjectHandler{
		projects: projects,
		policy:   policy,
		log:      logger.WithModule("handlers.projects"),
	}, nil
}

// List returns a window of the caller's projects.
func (h *ProjectHandler) List(c *gin.Context, query v1.ProjectListQuery, _ v1.Empty) response.Response[[]v1.ProjectInfo] {
	identity, ok := requireIdentity(c)
	if !ok {
		return fail[[]v1.ProjectInfo](appErrors.AuthorizationRequired)
	}

	rows, err := h.projects.List(requestContext(c), identity.User.ID, query.Limit, query.Skip)
	switch {
	case errors.Is(err, services.ErrInvalidLimit):
		return response.FailWithDetail[[]v1.ProjectInfo](appErrors.InvalidInput,
			fmt.Sprintf("`limit` should be at most %d", v1.MaxProjectListLimit))
	case err != nil && h.policy == ListErrorsAsFailure:
		return internalFailure[[]v1.ProjectInfo](h.log, "list projects", err)
	case err != nil:
		h.log.Warn("list projects failed, answering with an empty list", zap.Error(err))
		return response.Success([]v1.ProjectInfo{})
	}

	result := make([]v1.ProjectInfo, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.ToAPI())
	}
	return response.Success(result)
}

// Create adds a project authored by the caller.
func (h *ProjectHandler) Create(c *gin.Context, _ v1.Empty, body v1.CreateProjectBody) response.Response[v1.ProjectInfo] {
	identity, ok := requireIdentity(c)
	if !ok {
		return fail[v1.ProjectInfo](appErrors.AuthorizationRequired)
	}

	project, err := h.projects.Create(requestContext(c), identity.User.ID, body.Title, body.Description)
	switch {
	case err == nil:
		return response.Success(project.ToAPI())
	case errors.Is(err, services.ErrInvalidTitle):
		return response.FailWithDetail[v1.ProjectInfo](appErrors.InvalidInput, v1.TitleLengthDetail)
	case errors.Is(err, services.ErrProjectConflict):
		h.log.Debug("create project failed", zap.Error(err))
		return fail[v1.ProjectInfo](appErrors.Conflict)
	default:
		return internalFailure[v1.ProjectInfo](h.log, "create project", err)
	}
}

// Delete removes one of the caller's projects. A project owned by someone
// else and one that does not exist are indistinguishable.
func (h *ProjectHandler) Delete(c *gin.Context, path v1.ProjectPath, _ v1.Empty) response.Response[v1.Empty] {
	identity, ok := requireIdentity(c)
	if !ok {
		return fail[v1.Empty](appErrors.AuthorizationRequired)
	}

	err := h.projects.Delete(requestContext(c), identity.User.ID, path.ID)
	switch {
	case err == nil:
		return response.Success(v1.Empty{})
	case errors.Is(err, services.ErrProjectNotOwned):
		return fail[v1.Empty](appErrors.Forbidden)
	default:
		return internalFailure[v1.Empty](h.log, "delete project", err)
	}
}
