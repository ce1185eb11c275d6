package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project roles, strict total order owner > editor > viewer.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// RoleRank maps a role to its position in the hierarchy. Unknown roles
// rank zero and therefore never satisfy a requirement.
func RoleRank(role string) int {
	switch role {
	case RoleOwner:
		return 3
	case RoleEditor:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

type Project struct {
	ID        string     `gorm:"primaryKey;type:uuid"`
	Name      string     `gorm:"column:name;not null"`
	OwnerID   uint       `gorm:"column:owner_id;not null;index"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProjectCollaborator is a (project, user) -> role edge. Exactly one owner
// row exists per project, written when the project is created.
type ProjectCollaborator struct {
	ProjectID string    `gorm:"column:project_id;primaryKey;type:uuid"`
	UserID    uint      `gorm:"column:user_id;primaryKey"`
	Role      string    `gorm:"column:role;not null"`
	CreatedAt time.Time
}

func (ProjectCollaborator) TableName() string {
	return "project_collaborators"
}
