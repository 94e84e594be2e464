package auth

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/pkg/logger"
)

// Service is the session issuer: it checks credentials and mints tokens.
type Service struct {
	users          CredentialStore
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

// NewService creates a new auth service
func NewService(users CredentialStore, tokenGen TokenGenerator) *Service {
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		logger:         logger.LoggerWrapper(),
	}
}

// Authenticate validates credentials and returns the caller profile with a token.
// A supplied device token replaces the stored one once the password checks out.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	u, err := s.users.GetByNIK(ctx, dto.NIK)
	if err != nil {
		return nil, errors.NewInternalError("Failed to authenticate", err)
	}
	if u == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(dto.Password))
		return nil, errors.ErrInvalidCredentials
	}

	if !VerifyPassword(u.PasswordHash, dto.Password) {
		return nil, errors.ErrInvalidCredentials
	}

	token, err := s.tokenGenerator.GenerateAccessToken(u)
	if err != nil {
		return nil, errors.NewInternalError("Failed to issue token", err)
	}

	if dto.DeviceToken != nil {
		if err := s.users.UpdateDeviceToken(ctx, u.ID, dto.DeviceToken); err != nil {
			// login still succeeds; the token can be registered later
			s.logger.WarnContext(ctx, "failed to store device token on login", "user_id", u.ID, "error", err)
		} else {
			u.DeviceToken = dto.DeviceToken
		}
	}

	return &LoginResult{
		User:  u.ToProfile(),
		Token: token,
	}, nil
}

// ValidateAccessToken maps every verification failure onto TOKEN_INVALID_OR_EXPIRED.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.tokenGenerator.ValidateToken(tokenString)
	if err != nil {
		return nil, errors.ErrTokenInvalidOrExpired.WithCause(err)
	}
	return claims, nil
}
