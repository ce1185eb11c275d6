package repository

import (
	"context"

	"github.com/flamingo-app/flamingo-server/internal/model"
	"gorm.io/gorm"
)

// CollaboratorRow is the typed shape of a collaborator listing entry,
// produced by an explicit join at the storage boundary.
type CollaboratorRow struct {
	UserID uint   `gorm:"column:user_id"`
	Name   string `gorm:"column:name"`
	Email  string `gorm:"column:email"`
	Role   string `gorm:"column:role"`
}

type CollaboratorRepository struct {
	db *gorm.DB
}

func NewCollaboratorRepository(db *gorm.DB) *CollaboratorRepository {
	return &CollaboratorRepository{db: db}
}

func (r *CollaboratorRepository) Find(ctx context.Context, projectID string, userID uint) (*model.ProjectCollaborator, error) {
	var collaborator model.ProjectCollaborator
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&collaborator)
	if result.Error != nil {
		return nil, result.Error
	}
	return &collaborator, nil
}

func (r *CollaboratorRepository) Add(ctx context.Context, projectID string, userID uint, role string) error {
	return r.db.WithContext(ctx).Create(&model.ProjectCollaborator{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}).Error
}

// ListByProject returns collaborators ordered owner, editor, viewer, then
// by display name.
func (r *CollaboratorRepository) ListByProject(ctx context.Context, projectID string) ([]CollaboratorRow, error) {
	var rows []CollaboratorRow
	err := r.db.WithContext(ctx).
		Table("project_collaborators pc").
		Select("u.id AS user_id, u.name, u.email, pc.role").
		Joins("JOIN users u ON u.id = pc.user_id").
		Where("pc.project_id = ?", projectID).
		Order("CASE pc.role WHEN 'owner' THEN 1 WHEN 'editor' THEN 2 WHEN 'viewer' THEN 3 END, u.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CollaboratorRepository) UpdateRole(ctx context.Context, projectID string, userID uint, role string) error {
	result := r.db.WithContext(ctx).Model(&model.ProjectCollaborator{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CollaboratorRepository) Remove(ctx context.Context, projectID string, userID uint) error {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectCollaborator{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
