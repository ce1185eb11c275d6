package repository

import (
	"context"
	"time"

	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionRepository persists refresh-token grants. Tokens are stored only as
// bcrypt hashes, so lookup is a scan over live sessions rather than a keyed
// fetch. Cost grows with the number of active sessions; acceptable at this
// scale.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	start := time.Now()
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		logger.GetLogger().Error("Failed to create session",
			zap.Uint("user_id", session.UserID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return err
	}
	return nil
}

// EnforceSessionLimit deletes the user's oldest session when the live count
// has reached max, making room for the one about to be created.
func (r *SessionRepository) EnforceSessionLimit(ctx context.Context, userID uint, max int) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return err
	}

	if count < int64(max) {
		return nil
	}

	result := r.db.WithContext(ctx).
		Where("id = (?)", r.db.Model(&model.Session{}).
			Select("id").
			Where("user_id = ?", userID).
			Order("created_at ASC").
			Limit(1)).
		Delete(&model.Session{})
	if result.Error != nil {
		return result.Error
	}

	logger.GetLogger().Debug("Evicted oldest session",
		zap.Uint("user_id", userID),
		zap.Int64("live_count", count),
		zap.Int("max", max))

	return nil
}

// FindByToken compares the presented raw token against every unexpired
// session hash and returns the first match, or gorm.ErrRecordNotFound.
func (r *SessionRepository) FindByToken(ctx context.Context, rawToken string) (*model.Session, error) {
	var sessions []model.Session
	if err := r.db.WithContext(ctx).
		Where("expires_at > ?", time.Now()).
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	for i := range sessions {
		if err := bcrypt.CompareHashAndPassword(
			[]byte(sessions[i].RefreshTokenHash), []byte(rawToken)); err == nil {
			return &sessions[i], nil
		}
	}

	return nil, gorm.ErrRecordNotFound
}

func (r *SessionRepository) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Session{}).Error
}

// DeleteExpired sweeps sessions past their expiry; run periodically.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&model.Session{})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		logger.GetLogger().Info("Expired sessions cleaned up",
			zap.Int64("deleted", result.RowsAffected))
	}
	return result.RowsAffected, nil
}
