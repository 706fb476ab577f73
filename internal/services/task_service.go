package services

import (
	"context"
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

// TaskDrafter turns free text into draft tasks.
type TaskDrafter interface {
	DraftTasks(ctx context.Context, projectName, text string) ([]GeneratedTask, error)
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	drafter     TaskDrafter
}

// NewTaskService creates a new TaskService. drafter may be nil when no AI
// backend is configured.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, drafter TaskDrafter) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		drafter:     drafter,
	}
}

// ListTasksInput represents filters for listing the tasks of a project
type ListTasksInput struct {
	ProjectID    uint64
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	AssignedToID *uint64
	Pagination   utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title        string
	Description  string
	Status       models.TaskStatus
	Priority     models.TaskPriority
	AssignedToID *uint64
}

// TaskPatch represents input for updating a task
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	AssignedToID  *uint64
	ClearAssignee bool
}

// ListTasks returns the tasks of a project
func (s *TaskService) ListTasks(actor policy.Identity, input ListTasksInput) ([]models.Task, int64, error) {
	if _, err := s.findProject(input.ProjectID); err != nil {
		return nil, 0, err
	}
	if err := policy.Authorize(actor, policy.ActionRead, policy.TaskResource{ProjectID: input.ProjectID}); err != nil {
		return nil, 0, err
	}

	errs := fieldErrors{}
	if input.Status != nil && !input.Status.Valid() {
		errs.add("status", fmt.Sprintf("%q is not a valid choice", *input.Status))
	}
	if input.Priority != nil && !input.Priority.Valid() {
		errs.add("priority", fmt.Sprintf("%q is not a valid choice", *input.Priority))
	}
	if err := errs.Err(); err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		ProjectID:    input.ProjectID,
		Status:       input.Status,
		Priority:     input.Priority,
		AssignedToID: input.AssignedToID,
		Pagination:   input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task with its assignee
func (s *TaskService) GetTask(actor policy.Identity, id uint64) (*models.Task, error) {
	task, err := s.findTask(id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionRead, policy.TaskResource{ProjectID: task.ProjectID}); err != nil {
		return nil, err
	}
	return task, nil
}

// CreateTask creates a task inside a project
func (s *TaskService) CreateTask(actor policy.Identity, projectID uint64, input CreateTaskInput) (*models.Task, error) {
	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionCreate, policy.TaskResource{ProjectID: projectID}); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Status:       input.Status,
		Priority:     input.Priority,
		AssignedToID: input.AssignedToID,
		ProjectID:    projectID,
	}

	errs := fieldErrors{}
	validateTaskTitle(errs, task.Title)
	validateRequiredText(errs, "description", task.Description)
	validateStatus(errs, task.Status)
	validatePriority(errs, task.Priority)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if err := s.ensureAssignee(task.AssignedToID); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.findTask(task.ID)
}

// UpdateTask updates an existing task. With full set, title, description,
// status and priority must all be present.
func (s *TaskService) UpdateTask(actor policy.Identity, id uint64, patch TaskPatch, full bool) (*models.Task, error) {
	task, err := s.findTask(id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionUpdate, policy.TaskResource{ProjectID: task.ProjectID}); err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	if full {
		requireField(errs, "title", patch.Title)
		requireField(errs, "description", patch.Description)
		if patch.Status == nil {
			errs.add("status", "this field is required")
		}
		if patch.Priority == nil {
			errs.add("priority", "this field is required")
		}
	}
	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
		validateTaskTitle(errs, task.Title)
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
		validateRequiredText(errs, "description", task.Description)
	}
	if patch.Status != nil {
		task.Status = *patch.Status
		validateStatus(errs, task.Status)
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
		validatePriority(errs, task.Priority)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	switch {
	case patch.ClearAssignee:
		task.AssignedToID = nil
	case patch.AssignedToID != nil:
		if err := s.ensureAssignee(patch.AssignedToID); err != nil {
			return nil, err
		}
		task.AssignedToID = patch.AssignedToID
	}
	task.AssignedTo = nil

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.findTask(task.ID)
}

// DeleteTask deletes a task and its comments
func (s *TaskService) DeleteTask(actor policy.Identity, id uint64) error {
	task, err := s.findTask(id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDelete, policy.TaskResource{ProjectID: task.ProjectID}); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// GenerateTasks asks the AI backend for draft tasks of a project. Drafts are
// not persisted.
func (s *TaskService) GenerateTasks(ctx context.Context, actor policy.Identity, projectID uint64, text string) ([]GeneratedTask, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionCreate, policy.TaskResource{ProjectID: project.ID}); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return nil, invalidField("text", "this field may not be blank")
	case utf8.RuneCountInString(text) > constants.MaxAIInputLength:
		return nil, invalidField("text", fmt.Sprintf("must be at most %d characters", constants.MaxAIInputLength))
	}

	if s.drafter == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.drafter.DraftTasks(ctx, project.Name, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	valid := make([]GeneratedTask, 0, len(drafts))
	for _, draft := range drafts {
		draft.Title = strings.TrimSpace(draft.Title)
		draft.Description = strings.TrimSpace(draft.Description)
		if draft.Title == "" {
			continue
		}
		draft.Title = truncateRunes(draft.Title, constants.MaxNameLength)
		if !draft.Priority.Valid() {
			draft.Priority = models.TaskPriorityMedium
		}

		valid = append(valid, draft)
		if len(valid) == constants.MaxAIDraftedTasks {
			break
		}
	}

	if len(valid) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	return valid, nil
}

func (s *TaskService) findProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *TaskService) findTask(id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, "AssignedTo")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ensureAssignee checks that the assigned user exists. A nil id means the
// task is unassigned.
func (s *TaskService) ensureAssignee(userID *uint64) error {
	if userID == nil {
		return nil
	}
	if _, err := s.userRepo.FindByID(*userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidField("assigned_to", "user does not exist")
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	return nil
}

// truncateRunes cuts s to at most n characters without splitting one.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func validateTaskTitle(errs fieldErrors, title string) {
	switch {
	case title == "":
		errs.add("title", "this field is required")
	case utf8.RuneCountInString(title) > constants.MaxNameLength:
		errs.add("title", fmt.Sprintf("must be at most %d characters", constants.MaxNameLength))
	}
}

func validateStatus(errs fieldErrors, status models.TaskStatus) {
	if !status.Valid() {
		errs.add("status", fmt.Sprintf("%q is not a valid choice", status))
	}
}

func validatePriority(errs fieldErrors, priority models.TaskPriority) {
	if !priority.Valid() {
		errs.add("priority", fmt.Sprintf("%q is not a valid choice", priority))
	}
}
