package models

import "time"

type ProjectRole string

const (
	RoleAdmin  ProjectRole = "Admin"
	RoleMember ProjectRole = "Member"
)

// Valid reports whether r is one of the known project roles.
func (r ProjectRole) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type ProjectMember struct {
	ID        uint64      `gorm:"primarykey" json:"id"`
	ProjectID uint64      `gorm:"not null;uniqueIndex:idx_project_members_project_user" json:"project_id"`
	UserID    uint64      `gorm:"not null;uniqueIndex:idx_project_members_project_user;index" json:"user_id"`
	Role      ProjectRole `gorm:"type:varchar(10);not null" json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
