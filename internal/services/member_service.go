package services

import (
	"errors"
	"fmt"

	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/policy"
	"github.com/Wahidu1/projects-tech-foring/internal/repository"
	"github.com/Wahidu1/projects-tech-foring/internal/utils"
	"gorm.io/gorm"
)

// MemberService manages project memberships. Mutations need an Admin row on
// the project, or a superuser caller.
type MemberService struct {
	memberRepo  repository.MemberRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
}

// NewMemberService creates a new MemberService
func NewMemberService(memberRepo repository.MemberRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository) *MemberService {
	return &MemberService{
		memberRepo:  memberRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
	}
}

// AddMemberInput represents input for adding a member to a project
type AddMemberInput struct {
	UserID uint64
	Role   models.ProjectRole
}

// MemberPatch represents a membership update
type MemberPatch struct {
	UserID *uint64
	Role   *models.ProjectRole
}

// ListMembers returns the members of a project
func (s *MemberService) ListMembers(actor policy.Identity, projectID uint64, params utils.PaginationParams) ([]models.ProjectMember, int64, error) {
	if err := s.ensureProject(projectID); err != nil {
		return nil, 0, err
	}
	if err := policy.Authorize(actor, policy.ActionRead, policy.MembershipResource{ProjectID: projectID}); err != nil {
		return nil, 0, err
	}

	members, total, err := s.memberRepo.ListByProject(projectID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return members, total, nil
}

// GetMember returns a membership with its user
func (s *MemberService) GetMember(actor policy.Identity, id uint64) (*models.ProjectMember, error) {
	member, err := s.findMember(id)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(actor, policy.ActionRead, policy.MembershipResource{ProjectID: member.ProjectID}); err != nil {
		return nil, err
	}
	return member, nil
}

// AddMember adds a user to a project with the given role
func (s *MemberService) AddMember(actor policy.Identity, projectID uint64, input AddMemberInput) (*models.ProjectMember, error) {
	if err := s.ensureProject(projectID); err != nil {
		return nil, err
	}
	if err := s.authorize(actor, policy.ActionCreate, projectID); err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	if input.UserID == 0 {
		errs.add("user", "this field is required")
	}
	validateRole(errs, input.Role)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.ensureCandidate(projectID, input.UserID); err != nil {
		return nil, err
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    input.UserID,
		Role:      input.Role,
	}
	if err := s.memberRepo.Create(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errAlreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return s.findMember(member.ID)
}

// UpdateMember changes the user or role of a membership. With full set,
// both fields must be present.
func (s *MemberService) UpdateMember(actor policy.Identity, id uint64, patch MemberPatch, full bool) (*models.ProjectMember, error) {
	member, err := s.findMember(id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, policy.ActionUpdate, member.ProjectID); err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	if full {
		if patch.UserID == nil {
			errs.add("user", "this field is required")
		}
		if patch.Role == nil {
			errs.add("role", "this field is required")
		}
	}
	if patch.Role != nil {
		validateRole(errs, *patch.Role)
	}
	if patch.UserID != nil && *patch.UserID == 0 {
		errs.add("user", "this field is required")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if patch.UserID != nil && *patch.UserID != member.UserID {
		if err := s.ensureCandidate(member.ProjectID, *patch.UserID); err != nil {
			return nil, err
		}
		member.UserID = *patch.UserID
	}
	if patch.Role != nil {
		member.Role = *patch.Role
	}

	if err := s.memberRepo.Update(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errAlreadyMember
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return s.findMember(member.ID)
}

// RemoveMember deletes a membership
func (s *MemberService) RemoveMember(actor policy.Identity, id uint64) error {
	member, err := s.findMember(id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, policy.ActionDelete, member.ProjectID); err != nil {
		return err
	}

	if err := s.memberRepo.Delete(member.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

var errAlreadyMember = invalidField("user", "user is already a member of this project")

// authorize looks up the caller's own role on the project before asking the
// policy.
func (s *MemberService) authorize(actor policy.Identity, action policy.Action, projectID uint64) error {
	res := policy.MembershipResource{ProjectID: projectID}

	own, err := s.memberRepo.FindByProjectAndUser(projectID, actor.UserID)
	switch {
	case err == nil:
		res.CallerRole = &own.Role
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("failed to check caller membership: %w", err)
	}

	return policy.Authorize(actor, action, res)
}

// ensureCandidate checks that userID exists and is not yet on the project.
func (s *MemberService) ensureCandidate(projectID, userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidField("user", "user does not exist")
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	_, err := s.memberRepo.FindByProjectAndUser(projectID, userID)
	if err == nil {
		return errAlreadyMember
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	return nil
}

func (s *MemberService) ensureProject(projectID uint64) error {
	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	return nil
}

func (s *MemberService) findMember(id uint64) (*models.ProjectMember, error) {
	member, err := s.memberRepo.FindByID(id, "User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return member, nil
}

func validateRole(errs fieldErrors, role models.ProjectRole) {
	if !role.Valid() {
		errs.add("role", fmt.Sprintf("%q is not a valid choice", role))
	}
}
