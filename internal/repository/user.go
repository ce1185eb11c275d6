package repository

import (
	"context"
	"time"

	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository is the credential store: user rows plus their
// email-verification tokens (see verification.go).
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns gorm.ErrRecordNotFound when no user exists.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}

// Create inserts a user. Under a unique-email race the insert is a no-op and
// the pre-existing row is returned instead of an error.
func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	start := time.Now()
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(user)
	if result.Error != nil {
		logger.GetLogger().Error("Failed to create user",
			zap.String("email", user.Email),
			zap.Duration("duration", time.Since(start)),
			zap.Error(result.Error))
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		// Lost the race; hand back whoever won it.
		return r.FindByEmail(ctx, user.Email)
	}

	logger.GetLogger().Debug("User created",
		zap.String("email", user.Email),
		zap.Uint("user_id", user.ID),
		zap.Duration("duration", time.Since(start)))

	return user, nil
}

// UpdateProviderLink attaches a social provider to an existing account.
func (r *UserRepository) UpdateProviderLink(ctx context.Context, id uint, provider, providerID string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"provider":    provider,
		"provider_id": providerID,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateLastLogin stamps the last successful login; callers treat failures
// as log-only.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}

// IncrementFailedAttempts bumps the failed-login counter atomically at the
// storage layer and returns the updated value.
func (r *UserRepository) IncrementFailedAttempts(ctx context.Context, id uint) (int, error) {
	var user model.User
	result := r.db.WithContext(ctx).Model(&user).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "failed_attempts"}}}).
		Where("id = ?", id).
		UpdateColumn("failed_attempts", gorm.Expr("failed_attempts + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return user.FailedAttempts, nil
}

// LockAccount sets the lockout expiry to now + duration.
func (r *UserRepository) LockAccount(ctx context.Context, id uint, duration time.Duration) error {
	until := time.Now().Add(duration)
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("locked_until", until)
	if result.Error != nil {
		return result.Error
	}

	logger.GetLogger().Warn("Account locked",
		zap.Uint("user_id", id),
		zap.Time("locked_until", until))

	return nil
}

// ResetLoginAttempts clears the failure counter and any stale lock together.
func (r *UserRepository) ResetLoginAttempts(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"failed_attempts": 0,
			"locked_until":    nil,
		}).Error
}
