package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/flamingo-app/flamingo-server/internal/constants"
	"github.com/flamingo-app/flamingo-server/internal/dto"
	apperrors "github.com/flamingo-app/flamingo-server/internal/errors"
	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/flamingo-app/flamingo-server/pkg/events"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"github.com/flamingo-app/flamingo-server/pkg/mailer"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthConfig carries the login-policy knobs.
type AuthConfig struct {
	MaxLoginAttempts int
	LockoutDuration  time.Duration
	VerificationTTL  time.Duration
}

// AuthService orchestrates registration, email verification, login and
// refresh-token exchange.
type AuthService struct {
	config    AuthConfig
	users     UserStore
	tokens    *TokenService
	mailer    mailer.Mailer
	publisher events.Publisher
}

func NewAuthService(config AuthConfig, users UserStore, tokens *TokenService, m mailer.Mailer, publisher events.Publisher) *AuthService {
	if config.MaxLoginAttempts <= 0 {
		config.MaxLoginAttempts = constants.DefaultMaxLoginAttempts
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = constants.DefaultLockoutDuration
	}
	if config.VerificationTTL <= 0 {
		config.VerificationTTL = constants.DefaultVerificationTTL
	}
	return &AuthService{
		config:    config,
		users:     users,
		tokens:    tokens,
		mailer:    m,
		publisher: publisher,
	}
}

// Register creates a pending user, issues a verification token and triggers
// mail delivery. Delivery failure policy belongs to the mailer; registration
// itself never fails on it.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if !req.AgreeTerms || !req.AgreePrivacy {
		return nil, apperrors.ErrRequiredPrivacy
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if existing != nil {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), constants.BcryptCost)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	passwordHash := string(hash)

	user, err := s.users.Create(ctx, &model.User{
		Email:          req.Email,
		PasswordHash:   &passwordHash,
		Name:           req.Name,
		UserType:       req.UserType,
		Provider:       "email",
		Status:         model.UserStatusPending,
		AgreeTerms:     req.AgreeTerms,
		AgreePrivacy:   req.AgreePrivacy,
		AgreeMarketing: req.AgreeMarketing,
	})
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	token, err := generateVerificationToken()
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if _, err := s.users.CreateVerification(ctx, user.ID, token, time.Now().Add(s.config.VerificationTTL)); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, token); err != nil {
		logger.GetLogger().Error("Failed to send verification email",
			zap.String("email", user.Email),
			zap.Error(err))
	}

	s.publish(ctx, events.TopicUserRegistered, map[string]any{
		"user_id":   user.ID,
		"email":     user.Email,
		"user_type": user.UserType,
	})

	logger.GetLogger().Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email))

	return &dto.RegisterResponse{
		UserID:  user.ID,
		Email:   user.Email,
		Message: "Registration complete. Please check your email to verify your account.",
	}, nil
}

// CheckEmailAvailability reports whether the address is free to register.
func (s *AuthService) CheckEmailAvailability(ctx context.Context, email string) (bool, error) {
	_, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return false, nil
}

// VerifyEmail consumes a verification token, activating the user. The user
// update and token consumption commit in a single transaction.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*dto.UserInfo, error) {
	verification, err := s.users.FindVerificationByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVerificationTokenNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if verification.VerifiedAt != nil {
		return nil, apperrors.ErrVerificationTokenAlreadyUsed
	}
	if time.Now().After(verification.ExpiresAt) {
		return nil, apperrors.ErrVerificationTokenExpired
	}

	if err := s.users.ActivateVerifiedUser(ctx, verification.UserID, verification.ID); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	user, err := s.users.FindByID(ctx, verification.UserID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	s.publish(ctx, events.TopicUserVerified, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})

	logger.GetLogger().Info("Email verified",
		zap.Uint("user_id", user.ID))

	return &dto.UserInfo{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		UserType: user.UserType,
	}, nil
}

// Login runs the credential check with the lockout state machine. The order
// is fixed: lockout window, existence/password, account status. Only a
// wrong password moves the failure counter.
func (s *AuthService) Login(ctx context.Context, email, password, deviceInfo, ipAddress string) (*dto.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// 1. Lockout short-circuits everything else.
	if user != nil && user.IsLocked(time.Now()) {
		return nil, apperrors.ErrAccountLocked
	}

	// 2. Unknown account and social-only account fail identically to a
	// wrong password, so responses never reveal whether an email exists.
	if user == nil || user.PasswordHash == nil {
		return nil, apperrors.ErrLoginFailed
	}

	// 3. Password check; a mismatch moves the counter and may trip the lock.
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		attempts, incErr := s.users.IncrementFailedAttempts(ctx, user.ID)
		if incErr != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, incErr)
		}

		if attempts >= s.config.MaxLoginAttempts {
			if lockErr := s.users.LockAccount(ctx, user.ID, s.config.LockoutDuration); lockErr != nil {
				return nil, apperrors.WrapError(apperrors.ErrInternal, lockErr)
			}
			return nil, apperrors.ErrAccountLocked
		}

		logger.GetLogger().Warn("Login failed: wrong password",
			zap.Uint("user_id", user.ID),
			zap.Int("failed_attempts", attempts))

		return nil, apperrors.ErrLoginFailed
	}

	// 4. Correct password on a non-active account.
	if user.Status != model.UserStatusActive {
		return nil, apperrors.ErrAccountNotActive
	}

	// 5. Clear stale failure state; best-effort, not worth failing the login.
	if user.FailedAttempts > 0 {
		if err := s.users.ResetLoginAttempts(ctx, user.ID); err != nil {
			logger.GetLogger().Warn("Failed to reset login attempts",
				zap.Uint("user_id", user.ID),
				zap.Error(err))
		}
	}

	// 6. Token pair; session persistence failure is a login failure.
	accessToken, refreshToken, err := s.tokens.IssueTokenPair(ctx, user, deviceInfo, ipAddress)
	if err != nil {
		return nil, err
	}

	// Last-login stamp is fully decoupled from the response path.
	go func(userID uint) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.users.UpdateLastLogin(ctx, userID); err != nil {
			logger.GetLogger().Error("Failed to update last login",
				zap.Uint("user_id", userID),
				zap.Error(err))
		}
	}(user.ID)

	logger.GetLogger().Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.String("device_info", deviceInfo))

	return &dto.LoginResponse{
		User: dto.LoginUser{
			ID:       user.ID,
			Name:     user.Name,
			UserType: user.UserType,
		},
		Token: dto.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		},
	}, nil
}

// RefreshToken exchanges a refresh token for a new access token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	accessToken, err := s.tokens.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return &dto.RefreshResponse{
		AccessToken: accessToken,
		ExpiresIn:   s.tokens.AccessTokenExpirySeconds(),
	}, nil
}

// GetUserByID resolves the authenticated user for /auth/me.
func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*dto.UserInfo, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return &dto.UserInfo{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		UserType: user.UserType,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, topic string, payload map[string]any) {
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		logger.GetLogger().Error("Failed to publish event",
			zap.String("topic", topic),
			zap.Error(err))
	}
}

func generateVerificationToken() (string, error) {
	buf := make([]byte, constants.VerificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
