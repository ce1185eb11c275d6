package database

import (
	"fmt"

	"github.com/flamingo-app/flamingo-server/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.EmailVerification{},
		&model.Session{},
		&model.Project{},
		&model.ProjectCollaborator{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
