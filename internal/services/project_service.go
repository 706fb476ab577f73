package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Wahidu1/projects-tech-foring/internal/constants"
	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/policy"
	"github.com/Wahidu1/projects-tech-foring/internal/repository"
	"github.com/Wahidu1/projects-tech-foring/internal/utils"
	"gorm.io/gorm"
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
}

// ProjectPatch represents a project update. OwnerID is honoured for
// superusers only.
type ProjectPatch struct {
	Name        *string
	Description *string
	OwnerID     *uint64
}

// ListProjects returns a page of projects
func (s *ProjectService) ListProjects(actor policy.Identity, params utils.PaginationParams) ([]models.Project, int64, error) {
	if err := policy.Authorize(actor, policy.ActionRead, policy.ProjectResource{}); err != nil {
		return nil, 0, err
	}

	projects, total, err := s.projectRepo.List(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns a project with its owner
func (s *ProjectService) GetProject(actor policy.Identity, id uint64) (*models.Project, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}

	if err := policy.Authorize(actor, policy.ActionRead, projectResource(project)); err != nil {
		return nil, err
	}
	return project, nil
}

// CreateProject creates a project owned by the caller
func (s *ProjectService) CreateProject(actor policy.Identity, input CreateProjectInput) (*models.Project, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, policy.ProjectResource{OwnerID: actor.UserID}); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)

	errs := fieldErrors{}
	validateProjectName(errs, name)
	validateRequiredText(errs, "description", description)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: description,
		OwnerID:     actor.UserID,
	}
	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.findProject(project.ID)
}

// UpdateProject applies patch to a project. With full set, name and
// description must both be present.
func (s *ProjectService) UpdateProject(actor policy.Identity, id uint64, patch ProjectPatch, full bool) (*models.Project, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}

	res := projectResource(project)
	if err := policy.Authorize(actor, policy.ActionUpdate, res); err != nil {
		return nil, err
	}
	if patch.OwnerID != nil && *patch.OwnerID != project.OwnerID {
		if err := policy.Authorize(actor, policy.ActionChangeOwner, res); err != nil {
			return nil, err
		}
	}

	errs := fieldErrors{}
	if full {
		requireField(errs, "name", patch.Name)
		requireField(errs, "description", patch.Description)
	}
	if patch.Name != nil {
		project.Name = strings.TrimSpace(*patch.Name)
		validateProjectName(errs, project.Name)
	}
	if patch.Description != nil {
		project.Description = strings.TrimSpace(*patch.Description)
		validateRequiredText(errs, "description", project.Description)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if patch.OwnerID != nil && *patch.OwnerID != project.OwnerID {
		if _, err := s.userRepo.FindByID(*patch.OwnerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, invalidField("owner", "user does not exist")
			}
			return nil, fmt.Errorf("failed to find owner: %w", err)
		}
		project.OwnerID = *patch.OwnerID
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.findProject(project.ID)
}

// DeleteProject deletes a project with its members, tasks and comments
func (s *ProjectService) DeleteProject(actor policy.Identity, id uint64) error {
	project, err := s.findProject(id)
	if err != nil {
		return err
	}

	if err := policy.Authorize(actor, policy.ActionDelete, projectResource(project)); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(project.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func (s *ProjectService) findProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id, "Owner")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func projectResource(project *models.Project) policy.ProjectResource {
	return policy.ProjectResource{ProjectID: project.ID, OwnerID: project.OwnerID}
}

func validateProjectName(errs fieldErrors, name string) {
	switch {
	case name == "":
		errs.add("name", "this field is required")
	case utf8.RuneCountInString(name) > constants.MaxNameLength:
		errs.add("name", fmt.Sprintf("must be at most %d characters", constants.MaxNameLength))
	}
}

func validateRequiredText(errs fieldErrors, field, value string) {
	if value == "" {
		errs.add(field, "this field may not be blank")
	}
}
