package dto

import (
	"time"

	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/services"
	"github.com/Wahidu1/projects-tech-foring/internal/utils"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	AssignedTo  *uint64             `json:"assigned_to"`
	Assignee    *UserSummaryDTO     `json:"assignee,omitempty"`
	ProjectID   uint64              `json:"project"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	UserID    uint64    `json:"user"`
	Username  string    `json:"username,omitempty"`
	TaskID    uint64    `json:"task"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskDraftsResponse lists AI drafted tasks that have not been saved
type TaskDraftsResponse struct {
	Tasks []services.GeneratedTask `json:"tasks"`
}

// ListResponse represents a paginated list of items
type ListResponse[T any] struct {
	Items      []T                      `json:"items"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		AssignedTo:  task.AssignedToID,
		ProjectID:   task.ProjectID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include assignee if preloaded
	if task.AssignedTo != nil && task.AssignedTo.ID != 0 {
		assignee := ToUserSummaryDTO(*task.AssignedTo)
		dto.Assignee = &assignee
	}

	return dto
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		Content:   comment.Content,
		UserID:    comment.UserID,
		Username:  comment.User.Username,
		TaskID:    comment.TaskID,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

// ToListResponse converts a page of models with the given converter
func ToListResponse[M any, T any](items []M, convert func(M) T, params utils.PaginationParams, total int64) ListResponse[T] {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = convert(item)
	}

	return ListResponse[T]{
		Items:      out,
		Pagination: params.Response(total),
	}
}
