package repository

import (
	"github.com/Wahidu1/projects-tech-foring/internal/database"
	"github.com/Wahidu1/projects-tech-foring/internal/models"
	"github.com/Wahidu1/projects-tech-foring/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMemberRepository is a GORM implementation of MemberRepository
type GormMemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &GormMemberRepository{db: db}
}

// Create adds a member to a project
func (r *GormMemberRepository) Create(member *models.ProjectMember) error {
	return r.db.Omit(clause.Associations).Create(member).Error
}

// FindByID finds a membership by ID with optional preloading
func (r *GormMemberRepository) FindByID(id uint64, preload ...string) (*models.ProjectMember, error) {
	var member models.ProjectMember
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByProjectAndUser finds a specific project member
func (r *GormMemberRepository) FindByProjectAndUser(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListByProject lists the members of a project
func (r *GormMemberRepository) ListByProject(projectID uint64, params utils.PaginationParams) ([]models.ProjectMember, int64, error) {
	query := r.db.Model(&models.ProjectMember{}).Where("project_id = ?", projectID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	members := []models.ProjectMember{}
	err := query.Preload("User").
		Order("id ASC").
		Scopes(database.Paginate(params)).
		Find(&members).Error
	if err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// Update updates a membership
func (r *GormMemberRepository) Update(member *models.ProjectMember) error {
	return r.db.Omit(clause.Associations).Save(member).Error
}

// Delete removes a member from a project
func (r *GormMemberRepository) Delete(id uint64) error {
	result := r.db.Delete(&models.ProjectMember{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
