package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/dpweb/dpweb/internal/models"
	v1 "github.com/dpweb/dpweb/pkg/api/v1"
)

// ProjectService manages projects scoped to their author.
type ProjectService struct {
	db *gorm.DB
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *gorm.DB) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	return &ProjectService{db: db}, nil
}

// NormalizeLimit maps a requested page size to the effective one: 0 selects the
// default and anything above the maximum is rejected.
func NormalizeLimit(limit uint32) (int, error) {
	switch {
	case limit == 0:
		return v1.DefaultProjectListLimit, nil
	case limit <= v1.MaxProjectListLimit:
		return int(limit), nil
	default:
		return 0, ErrInvalidLimit
	}
}

// List returns page skip of the author's projects ordered by id, limit rows per page.
func (s *ProjectService) List(ctx context.Context, authorID int64, limit, skip uint32) ([]models.Project, error) {
	size, err := NormalizeLimit(limit)
	if err != nil {
		return nil, err
	}

	projects := make([]models.Project, 0, size)
	err = s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("id").
		Limit(size).
		Offset(size * int(skip)).
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("project service: list projects: %w", err)
	}
	return projects, nil
}

// Create inserts a project authored by authorID.
func (s *ProjectService) Create(ctx context.Context, authorID int64, title string, description *string) (*models.Project, error) {
	if !v1.ValidTitle(title) {
		return nil, ErrInvalidTitle
	}

	project := &models.Project{
		Ty:       v1.ProjectLegacy,
		Title:    title,
		Descript: description,
		AuthorID: authorID,
	}
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProjectConflict, err)
	}
	return project, nil
}

// Delete removes the project only when authorID owns it. Ownership is part of
// the delete predicate, so a foreign project and a missing one both yield
// ErrProjectNotOwned.
func (s *ProjectService) Delete(ctx context.Context, authorID, projectID int64) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", projectID, authorID).
		Delete(&models.Project{})
	if res.Error != nil {
		return fmt.Errorf("%w: %w", ErrProjectNotOwned, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProjectNotOwned
	}
	return nil
}
