package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/flamingo-app/flamingo-server/internal/constants"
	apperrors "github.com/flamingo-app/flamingo-server/internal/errors"
	"github.com/flamingo-app/flamingo-server/internal/model"
	"github.com/flamingo-app/flamingo-server/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenConfig carries the issuance settings; expiry values are the original
// duration strings ("1h", "7d", "30m", or bare seconds).
type TokenConfig struct {
	Secret           string
	AccessExpiresIn  string
	RefreshExpiresIn string
	MaxSessions      int
}

// TokenService mints signed access tokens and opaque refresh tokens, and
// exchanges a live refresh token for a fresh access token. Refresh tokens
// are not rotated on use; one stays valid until its own expiry or eviction.
type TokenService struct {
	config   TokenConfig
	users    UserStore
	sessions SessionStore
}

func NewTokenService(config TokenConfig, users UserStore, sessions SessionStore) *TokenService {
	if config.MaxSessions <= 0 {
		config.MaxSessions = constants.DefaultMaxSessions
	}
	return &TokenService{
		config:   config,
		users:    users,
		sessions: sessions,
	}
}

// GenerateAccessToken mints a short-lived HS256 token carrying the user's
// id and email.
func (s *TokenService) GenerateAccessToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Duration(s.AccessTokenExpirySeconds()) * time.Second).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses and verifies a bearer token and returns its
// claims. Expired tokens map to the dedicated expiry error so the handler
// layer can tell clients to refresh.
func (s *TokenService) ValidateAccessToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// GenerateRefreshToken produces a cryptographically random opaque token.
func (s *TokenService) GenerateRefreshToken() (string, error) {
	buf := make([]byte, constants.RefreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// IssueTokenPair mints an access token plus a refresh token, and persists
// the refresh token's hash as a session under the per-user cap.
func (s *TokenService) IssueTokenPair(ctx context.Context, user *model.User, deviceInfo, ipAddress string) (accessToken, refreshToken string, err error) {
	accessToken, err = s.GenerateAccessToken(user)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	refreshToken, err = s.GenerateRefreshToken()
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if err := s.sessions.EnforceSessionLimit(ctx, user.ID, s.config.MaxSessions); err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	// Only the hash is stored; a storage breach yields nothing replayable.
	hash, err := bcrypt.GenerateFromPassword([]byte(refreshToken), bcrypt.DefaultCost)
	if err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	session := &model.Session{
		UserID:           user.ID,
		RefreshTokenHash: string(hash),
		DeviceInfo:       deviceInfo,
		IPAddress:        ipAddress,
		ExpiresAt:        time.Now().Add(time.Duration(ParseExpiry(s.config.RefreshExpiresIn)) * time.Second),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return accessToken, refreshToken, nil
}

// RefreshAccessToken exchanges a presented refresh token for a new access
// token. An expired session is deleted on sight.
func (s *TokenService) RefreshAccessToken(ctx context.Context, presentedToken string) (string, error) {
	session, err := s.sessions.FindByToken(ctx, presentedToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrInvalidRefreshToken
		}
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	if session.IsExpired(time.Now()) {
		if err := s.sessions.DeleteByID(ctx, session.ID); err != nil {
			logger.GetLogger().Warn("Failed to delete expired session",
				zap.String("session_id", session.ID),
				zap.Error(err))
		}
		return "", apperrors.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrInvalidRefreshToken
		}
		return "", apperrors.WrapError(apperrors.ErrInternal, err)
	}

	return s.GenerateAccessToken(user)
}

// AccessTokenExpirySeconds returns the configured access-token lifetime.
func (s *TokenService) AccessTokenExpirySeconds() int {
	return ParseExpiry(s.config.AccessExpiresIn)
}

// ParseExpiry converts a duration string with a trailing d/h/m unit into
// seconds; a bare number is taken as raw seconds. A non-numeric magnitude
// falls back to one hour rather than failing the caller.
func ParseExpiry(expiry string) int {
	if expiry == "" {
		return constants.DefaultAccessExpirySeconds
	}

	unit := expiry[len(expiry)-1]
	switch unit {
	case 'd', 'h', 'm':
		value, err := strconv.Atoi(expiry[:len(expiry)-1])
		if err != nil {
			return constants.DefaultAccessExpirySeconds
		}
		switch unit {
		case 'd':
			return value * 24 * 3600
		case 'h':
			return value * 3600
		default:
			return value * 60
		}
	default:
		value, err := strconv.Atoi(expiry)
		if err != nil {
			return constants.DefaultAccessExpirySeconds
		}
		return value
	}
}
