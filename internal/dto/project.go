package dto

import "time"

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type UpdateProjectRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type ProjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uint      `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Only editor and viewer can be granted; the owner role is written once at
// project creation and never through the collaborator endpoints.
type AddCollaboratorRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=editor viewer"`
}

type UpdateCollaboratorRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=editor viewer"`
}

type CollaboratorResponse struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}
