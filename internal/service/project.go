package service

import (
	"context"
	"errors"

	"github.com/flamingo-app/flamingo-server/internal/dto"
	apperrors "github.com/flamingo-app/flamingo-server/internal/errors"
	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProjectService manages projects and their collaborator edges. Role guards
// run before these methods; the rules enforced here are the ones that do not
// depend on the caller's rank (owner immutability, self-modification).
type ProjectService struct {
	projects      ProjectStore
	collaborators CollaboratorStore
	users         UserStore
}

func NewProjectService(projects ProjectStore, collaborators CollaboratorStore, users UserStore) *ProjectService {
	return &ProjectService{
		projects:      projects,
		collaborators: collaborators,
		users:         users,
	}
}

func (s *ProjectService) Create(ctx context.Context, name string, ownerID uint) (*dto.ProjectResponse, error) {
	project, err := s.projects.Create(ctx, name, ownerID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.GetLogger().Info("Project created",
		zap.String("project_id", project.ID),
		zap.Uint("owner_id", ownerID))

	return toProjectResponse(project), nil
}

func (s *ProjectService) ListForUser(ctx context.Context, userID uint) ([]dto.ProjectResponse, error) {
	projects, err := s.projects.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	responses := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, *toProjectResponse(&projects[i]))
	}
	return responses, nil
}

func (s *ProjectService) Rename(ctx context.Context, projectID, name string) (*dto.ProjectResponse, error) {
	project, err := s.projects.UpdateName(ctx, projectID, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProjectNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return toProjectResponse(project), nil
}

func (s *ProjectService) Delete(ctx context.Context, projectID string) error {
	if err := s.projects.SoftDelete(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProjectNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return nil
}

// AddCollaborator grants role to the user with the given email.
func (s *ProjectService) AddCollaborator(ctx context.Context, projectID, email, role string) (*dto.CollaboratorResponse, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserToAddNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if _, err := s.collaborators.Find(ctx, projectID, user.ID); err == nil {
		return nil, apperrors.ErrUserAlreadyCollaborator
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.collaborators.Add(ctx, projectID, user.ID, role); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.GetLogger().Info("Collaborator added",
		zap.String("project_id", projectID),
		zap.Uint("user_id", user.ID),
		zap.String("role", role))

	return &dto.CollaboratorResponse{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   role,
	}, nil
}

func (s *ProjectService) ListCollaborators(ctx context.Context, projectID string) ([]dto.CollaboratorResponse, error) {
	rows, err := s.collaborators.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	responses := make([]dto.CollaboratorResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, dto.CollaboratorResponse{
			UserID: row.UserID,
			Name:   row.Name,
			Email:  row.Email,
			Role:   row.Role,
		})
	}
	return responses, nil
}

// UpdateCollaboratorRole changes a collaborator's grant. The owner's role is
// immutable, and that rule wins over the self-modification rule when the
// requester is the owner targeting themselves.
func (s *ProjectService) UpdateCollaboratorRole(ctx context.Context, projectID string, requesterID, targetUserID uint, role string) error {
	target, err := s.collaborators.Find(ctx, projectID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCollaboratorNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if target.Role == model.RoleOwner {
		return apperrors.ErrCannotChangeOwnerRole
	}
	if targetUserID == requesterID {
		return apperrors.ErrCannotChangeOwnRole
	}

	if err := s.collaborators.UpdateRole(ctx, projectID, targetUserID, role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCollaboratorNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.GetLogger().Info("Collaborator role updated",
		zap.String("project_id", projectID),
		zap.Uint("user_id", targetUserID),
		zap.String("role", role))

	return nil
}

// RemoveCollaborator deletes a collaborator edge. Owners cannot be removed
// and nobody can remove their own grant through this operation.
func (s *ProjectService) RemoveCollaborator(ctx context.Context, projectID string, requesterID, targetUserID uint) error {
	if targetUserID == requesterID {
		return apperrors.ErrCannotRemoveSelf
	}

	target, err := s.collaborators.Find(ctx, projectID, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCollaboratorNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if target.Role == model.RoleOwner {
		return apperrors.ErrCannotChangeOwnerRole
	}

	if err := s.collaborators.Remove(ctx, projectID, targetUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCollaboratorNotFound
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	logger.GetLogger().Info("Collaborator removed",
		zap.String("project_id", projectID),
		zap.Uint("user_id", targetUserID))

	return nil
}

func toProjectResponse(project *model.Project) *dto.ProjectResponse {
	return &dto.ProjectResponse{
		ID:        project.ID,
		Name:      project.Name,
		OwnerID:   project.OwnerID,
		CreatedAt: project.CreatedAt,
	}
}
