package repository

import (
	"context"
	"time"

	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Email-verification token operations. Tokens belong to the credential
// store; they share the UserRepository because activating a user and
// consuming a token must commit together.

func (r *UserRepository) CreateVerification(ctx context.Context, userID uint, token string, expiresAt time.Time) (*model.EmailVerification, error) {
	verification := &model.EmailVerification{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	if err := r.db.WithContext(ctx).Create(verification).Error; err != nil {
		return nil, err
	}
	return verification, nil
}

func (r *UserRepository) FindVerificationByToken(ctx context.Context, token string) (*model.EmailVerification, error) {
	var verification model.EmailVerification
	result := r.db.WithContext(ctx).Where("token = ?", token).First(&verification)
	if result.Error != nil {
		return nil, result.Error
	}
	return &verification, nil
}

// ActivateVerifiedUser marks the user active+verified and the token used in
// one transaction. Either both rows change or neither does; a concurrent
// reader never observes a half-verified state.
func (r *UserRepository) ActivateVerifiedUser(ctx context.Context, userID, verificationID uint) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"status":            model.UserStatusActive,
			"email_verified":    true,
			"email_verified_at": now,
		}).Error; err != nil {
			return err
		}

		result := tx.Model(&model.EmailVerification{}).Where("id = ?", verificationID).
			Update("verified_at", now)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.GetLogger().Error("Email verification transaction failed",
			zap.Uint("user_id", userID),
			zap.Uint("verification_id", verificationID),
			zap.Error(err))
		return err
	}
	return nil
}
