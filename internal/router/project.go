package router

import (
	"github.com/flamingo-app/flamingo-server/internal/middleware"
	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/gin-gonic/gin"
)

func (r *Router) projectRoutes(version *gin.RouterGroup) {
	projects := version.Group("/projects")
	projects.Use(r.authMw.RequireAuth())
	{
		projects.POST("", r.projectHandler.Create)
		projects.GET("", r.projectHandler.List)

		// Renaming needs editor access; deletion and membership changes are
		// owner-only. Reading the member list needs any membership.
		projects.PUT("/:id",
			middleware.RequireProjectRole(r.evaluator, model.RoleEditor),
			r.projectHandler.Update)
		projects.DELETE("/:id",
			middleware.RequireProjectRole(r.evaluator, model.RoleOwner),
			r.projectHandler.Delete)

		projects.GET("/:id/collaborators",
			middleware.RequireProjectRole(r.evaluator, model.RoleViewer),
			r.projectHandler.ListCollaborators)
		projects.POST("/:id/collaborators",
			middleware.RequireProjectRole(r.evaluator, model.RoleOwner),
			r.projectHandler.AddCollaborator)
		projects.PUT("/:id/collaborators/:userId",
			middleware.RequireProjectRole(r.evaluator, model.RoleOwner),
			r.projectHandler.UpdateCollaboratorRole)
		projects.DELETE("/:id/collaborators/:userId",
			middleware.RequireProjectRole(r.evaluator, model.RoleOwner),
			r.projectHandler.RemoveCollaborator)
	}
}
