package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/policy"
	"github.com/Wahidu1/projects-tech-foring/internal/repository"
	"github.com/Wahidu1/projects-tech-foring/internal/utils"
	"gorm.io/gorm"
)

// CommentService handles comment business logic
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repository.CommentRepository, taskRepo repository.TaskRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
	}
}

// CommentPatch represents a comment update
type CommentPatch struct {
	Content *string
}

// ListComments returns the comments of a task, oldest first
func (s *CommentService) ListComments(actor policy.Identity, taskID uint64, params utils.PaginationParams) ([]models.Comment, int64, error) {
	if err := s.ensureTask(taskID); err != nil {
		return nil, 0, err
	}
	if err := policy.Authorize(actor, policy.ActionRead, policy.CommentResource{TaskID: taskID}); err != nil {
		return nil, 0, err
	}

	comments, total, err := s.commentRepo.ListByTask(taskID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, total, nil
}

// GetComment returns a comment with its author
func (s *CommentService) GetComment(actor policy.Identity, id uint64) (*models.Comment, error) {
	comment, err := s.findComment(id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionRead, commentResource(comment)); err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateComment adds a comment authored by the caller
func (s *CommentService) CreateComment(actor policy.Identity, taskID uint64, content string) (*models.Comment, error) {
	if err := s.ensureTask(taskID); err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionCreate, policy.CommentResource{TaskID: taskID, AuthorID: actor.UserID}); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidField("content", "this field may not be blank")
	}

	comment := &models.Comment{
		Content: content,
		UserID:  actor.UserID,
		TaskID:  taskID,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return s.findComment(comment.ID)
}

// UpdateComment changes the content of a comment. With full set the content
// must be present.
func (s *CommentService) UpdateComment(actor policy.Identity, id uint64, patch CommentPatch, full bool) (*models.Comment, error) {
	comment, err := s.findComment(id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionUpdate, commentResource(comment)); err != nil {
		return nil, err
	}

	if full && patch.Content == nil {
		return nil, invalidField("content", "this field is required")
	}
	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		if content == "" {
			return nil, invalidField("content", "this field may not be blank")
		}
		comment.Content = content
	}

	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return s.findComment(comment.ID)
}

// DeleteComment deletes a comment
func (s *CommentService) DeleteComment(actor policy.Identity, id uint64) error {
	comment, err := s.findComment(id)
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ActionDelete, commentResource(comment)); err != nil {
		return err
	}

	if err := s.commentRepo.Delete(comment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

func (s *CommentService) ensureTask(taskID uint64) error {
	if _, err := s.taskRepo.FindByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}
	return nil
}

func (s *CommentService) findComment(id uint64) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(id, "User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}

func commentResource(comment *models.Comment) policy.CommentResource {
	return policy.CommentResource{TaskID: comment.TaskID, AuthorID: comment.UserID}
}
