package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/flamingo-app/flamingo-server/internal/repository"
	"github.com/flamingo-app/flamingo-server/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubCollaboratorStore struct {
	role string
}

func (s *stubCollaboratorStore) Find(ctx context.Context, projectID string, userID uint) (*model.ProjectCollaborator, error) {
	if s.role == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.ProjectCollaborator{ProjectID: projectID, UserID: userID, Role: s.role}, nil
}

func (s *stubCollaboratorStore) Add(ctx context.Context, projectID string, userID uint, role string) error {
	return nil
}

func (s *stubCollaboratorStore) ListByProject(ctx context.Context, projectID string) ([]repository.CollaboratorRow, error) {
	return nil, nil
}

func (s *stubCollaboratorStore) UpdateRole(ctx context.Context, projectID string, userID uint, role string) error {
	return nil
}

func (s *stubCollaboratorStore) Remove(ctx context.Context, projectID string, userID uint) error {
	return nil
}

func guardedRouter(role string, required string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	evaluator := service.NewPermissionEvaluator(&stubCollaboratorStore{role: role})

	router := gin.New()
	router.DELETE("/projects/:id",
		func(c *gin.Context) {
			c.Set(ContextUserID, uint(1))
			c.Next()
		},
		RequireProjectRole(evaluator, required),
		func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
	return router
}

func TestRequireProjectRoleAllows(t *testing.T) {
	router := guardedRouter(model.RoleOwner, model.RoleOwner)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/projects/p1", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRequireProjectRoleDeniesLowerRank(t *testing.T) {
	router := guardedRouter(model.RoleEditor, model.RoleOwner)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/projects/p1", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "FORBIDDEN", errBody["code"])
}

func TestRequireProjectRoleDeniesNonMember(t *testing.T) {
	router := guardedRouter("", model.RoleViewer)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/projects/p1", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
