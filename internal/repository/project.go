package repository

import (
	"context"

	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project and its owner collaborator row in one
// transaction, so a project never exists without exactly one owner edge.
func (r *ProjectRepository) Create(ctx context.Context, name string, ownerID uint) (*model.Project, error) {
	project := &model.Project{
		Name:    name,
		OwnerID: ownerID,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		return tx.Create(&model.ProjectCollaborator{
			ProjectID: project.ID,
			UserID:    ownerID,
			Role:      model.RoleOwner,
		}).Error
	})
	if err != nil {
		logger.GetLogger().Error("Failed to create project in transaction",
			zap.String("name", name),
			zap.Uint("owner_id", ownerID),
			zap.Error(err))
		return nil, err
	}

	return project, nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	result := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&project)
	if result.Error != nil {
		return nil, result.Error
	}
	return &project, nil
}

// FindByUserID lists projects the user owns or collaborates on, newest first.
func (r *ProjectRepository) FindByUserID(ctx context.Context, userID uint) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).
		Distinct("projects.*").
		Joins("LEFT JOIN project_collaborators pc ON pc.project_id = projects.id").
		Where("(projects.owner_id = ? OR pc.user_id = ?) AND projects.deleted_at IS NULL", userID, userID).
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) UpdateName(ctx context.Context, id, name string) (*model.Project, error) {
	result := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("name", name)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// SoftDelete stamps deleted_at; rows are never physically removed here.
func (r *ProjectRepository) SoftDelete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&model.Project{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", gorm.Expr("NOW()"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
