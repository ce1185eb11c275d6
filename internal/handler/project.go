package handler

import (
	"net/http"
	"strconv"

	"github.com/flamingo-app/flamingo-server/internal/constants"
	"github.com/flamingo-app/flamingo-server/internal/dto"
	apperrors "github.com/flamingo-app/flamingo-server/internal/errors"
	"github.com/flamingo-app/flamingo-server/internal/middleware"
	"github.com/flamingo-app/flamingo-server/internal/service"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
}

func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// Create makes a new project owned by the caller
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}

	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), req.Name, userID)
	if err != nil {
		logger.GetLogger().Error("Failed to create project",
			zap.Uint("user_id", userID),
			zap.Error(err))
		respondError(c, err)
		return
	}

	logger.GetLogger().Info("Project created",
		zap.String("project_id", project.ID),
		zap.Uint("owner_id", userID))

	c.JSON(http.StatusCreated, constants.BuildDataResponse(project))
}

// List returns every project the caller owns or collaborates on
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}

	projects, err := h.projectService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(projects))
}

// Update renames a project
func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	project, err := h.projectService.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(project))
}

// Delete soft-deletes a project
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID := c.Param("id")

	if err := h.projectService.Delete(c.Request.Context(), projectID); err != nil {
		respondError(c, err)
		return
	}

	logger.GetLogger().Info("Project deleted",
		zap.String("project_id", projectID))

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Project deleted"))
}

// AddCollaborator grants a user access to a project
func (h *ProjectHandler) AddCollaborator(c *gin.Context) {
	var req dto.AddCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	collaborator, err := h.projectService.AddCollaborator(c.Request.Context(), c.Param("id"), req.Email, req.Role)
	if err != nil {
		logger.GetLogger().Warn("Failed to add collaborator",
			zap.String("project_id", c.Param("id")),
			zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, constants.BuildDataResponse(collaborator))
}

// ListCollaborators returns a project's members ordered by role then name
func (h *ProjectHandler) ListCollaborators(c *gin.Context) {
	collaborators, err := h.projectService.ListCollaborators(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildDataResponse(collaborators))
}

// UpdateCollaboratorRole changes a member's role
func (h *ProjectHandler) UpdateCollaboratorRole(c *gin.Context) {
	requesterID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}

	targetUserID, ok := parseUserIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateCollaboratorRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	err := h.projectService.UpdateCollaboratorRole(c.Request.Context(), c.Param("id"), requesterID, targetUserID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Collaborator role updated"))
}

// RemoveCollaborator revokes a member's access
func (h *ProjectHandler) RemoveCollaborator(c *gin.Context) {
	requesterID, ok := middleware.UserID(c)
	if !ok {
		respondError(c, apperrors.ErrUnauthorized)
		return
	}

	targetUserID, ok := parseUserIDParam(c)
	if !ok {
		return
	}

	err := h.projectService.RemoveCollaborator(c.Request.Context(), c.Param("id"), requesterID, targetUserID)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.GetLogger().Info("Collaborator removed",
		zap.String("project_id", c.Param("id")),
		zap.Uint("user_id", targetUserID))

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Collaborator removed"))
}

func parseUserIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("userId")
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondBindingError(c, err)
		return 0, false
	}
	return uint(parsed), true
}
