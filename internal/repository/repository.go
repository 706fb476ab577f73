package repository

import (
	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Update saves every column of the user
	Update(user *models.User) error

	// Delete removes a user together with the rows that depend on it
	Delete(id uint64) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64, preload ...string) (*models.Project, error)
	List(params utils.PaginationParams) ([]models.Project, int64, error)
	Update(project *models.Project) error

	// Delete removes a project with its members, tasks and comments
	Delete(id uint64) error
}

// MemberRepository defines the interface for project membership data access
type MemberRepository interface {
	Create(member *models.ProjectMember) error
	FindByID(id uint64, preload ...string) (*models.ProjectMember, error)

	// FindByProjectAndUser finds the membership row of userID on projectID
	FindByProjectAndUser(projectID, userID uint64) (*models.ProjectMember, error)

	ListByProject(projectID uint64, params utils.PaginationParams) ([]models.ProjectMember, int64, error)
	Update(member *models.ProjectMember) error
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(task *models.Task) error
	FindByID(id uint64, preload ...string) (*models.Task, error)
	List(filter TaskFilter) ([]models.Task, int64, error)
	Update(task *models.Task) error

	// Delete removes a task and its comments
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks of a project
type TaskFilter struct {
	ProjectID    uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssignedToID *uint64
	Pagination   utils.PaginationParams
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	FindByID(id uint64, preload ...string) (*models.Comment, error)
	ListByTask(taskID uint64, params utils.PaginationParams) ([]models.Comment, int64, error)
	Update(comment *models.Comment) error
	Delete(id uint64) error
}
