package service

import (
	"context"
	"errors"

	apperrors "github.com/flamingo-app/flamingo-server/internal/errors"
	"github.com/flamingo-app/flamingo-server/internal/model"
	"gorm.io/gorm"
)

// PermissionEvaluator resolves a caller's role on a project and compares it
// against a required role. A missing project and a missing membership are
// indistinguishable to the caller; both deny, so non-members learn nothing
// about project existence.
type PermissionEvaluator struct {
	collaborators CollaboratorStore
}

func NewPermissionEvaluator(collaborators CollaboratorStore) *PermissionEvaluator {
	return &PermissionEvaluator{collaborators: collaborators}
}

// Check allows the operation iff the caller holds requiredRole or better.
func (e *PermissionEvaluator) Check(ctx context.Context, projectID string, userID uint, requiredRole string) error {
	collaborator, err := e.collaborators.Find(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrForbidden
		}
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if model.RoleRank(collaborator.Role) < model.RoleRank(requiredRole) {
		return apperrors.ErrForbidden
	}
	return nil
}
