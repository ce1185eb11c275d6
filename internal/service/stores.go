package service

import (
	"context"
	"time"

	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/flamingo-app/flamingo-server/internal/repository"
)

// Store contracts consumed by the services. The GORM repositories satisfy
// these; tests substitute in-memory fakes.

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	Create(ctx context.Context, user *model.User) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id uint) error
	IncrementFailedAttempts(ctx context.Context, id uint) (int, error)
	LockAccount(ctx context.Context, id uint, duration time.Duration) error
	ResetLoginAttempts(ctx context.Context, id uint) error
	CreateVerification(ctx context.Context, userID uint, token string, expiresAt time.Time) (*model.EmailVerification, error)
	FindVerificationByToken(ctx context.Context, token string) (*model.EmailVerification, error)
	ActivateVerifiedUser(ctx context.Context, userID, verificationID uint) error
}

type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	EnforceSessionLimit(ctx context.Context, userID uint, max int) error
	FindByToken(ctx context.Context, rawToken string) (*model.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type ProjectStore interface {
	Create(ctx context.Context, name string, ownerID uint) (*model.Project, error)
	FindByID(ctx context.Context, id string) (*model.Project, error)
	FindByUserID(ctx context.Context, userID uint) ([]model.Project, error)
	UpdateName(ctx context.Context, id, name string) (*model.Project, error)
	SoftDelete(ctx context.Context, id string) error
}

type CollaboratorStore interface {
	Find(ctx context.Context, projectID string, userID uint) (*model.ProjectCollaborator, error)
	Add(ctx context.Context, projectID string, userID uint, role string) error
	ListByProject(ctx context.Context, projectID string) ([]repository.CollaboratorRow, error)
	UpdateRole(ctx context.Context, projectID string, userID uint, role string) error
	Remove(ctx context.Context, projectID string, userID uint) error
}
