package service

import (
	"context"
	"testing"

	apperrors "github.com/flamingo-app/flamingo-server/internal/errors"
	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionCheck(t *testing.T) {
	const projectID = "b2c4e5f6-0000-0000-0000-000000000001"

	tests := []struct {
		name     string
		held     string
		required string
		allowed  bool
	}{
		{"owner can do owner operations", model.RoleOwner, model.RoleOwner, true},
		{"owner can do editor operations", model.RoleOwner, model.RoleEditor, true},
		{"owner can do viewer operations", model.RoleOwner, model.RoleViewer, true},
		{"editor cannot do owner operations", model.RoleEditor, model.RoleOwner, false},
		{"editor can do editor operations", model.RoleEditor, model.RoleEditor, true},
		{"editor can do viewer operations", model.RoleEditor, model.RoleViewer, true},
		{"viewer cannot do owner operations", model.RoleViewer, model.RoleOwner, false},
		{"viewer cannot do editor operations", model.RoleViewer, model.RoleEditor, false},
		{"viewer can do viewer operations", model.RoleViewer, model.RoleViewer, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := newFakeCollaboratorStore()
			require.NoError(t, edges.Add(context.Background(), projectID, 1, tt.held))
			evaluator := NewPermissionEvaluator(edges)

			err := evaluator.Check(context.Background(), projectID, 1, tt.required)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrForbidden)
			}
		})
	}
}

func TestPermissionCheckNonMember(t *testing.T) {
	evaluator := NewPermissionEvaluator(newFakeCollaboratorStore())

	// A missing membership and a missing project deny identically.
	err := evaluator.Check(context.Background(), "b2c4e5f6-0000-0000-0000-000000000001", 7, model.RoleViewer)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
