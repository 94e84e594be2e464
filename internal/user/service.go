package user

import (
	"context"
	"fmt"

	errors "github.com/frahmantamala/vehicle-permit/internal"
)

// Repository is the credential store. Lookups return (nil, nil) when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByNIK(ctx context.Context, nik string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdateDeviceToken(ctx context.Context, id int64, token *string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) GetByNIK(ctx context.Context, nik string) (*User, error) {
	u, err := s.repo.GetByNIK(ctx, nik)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by nik: %w", err)
	}
	if u == nil {
		return nil, errors.ErrUserNotFound
	}
	return u, nil
}

// UpdateDeviceToken overwrites the stored push token, including with an empty value.
func (s *Service) UpdateDeviceToken(ctx context.Context, id int64, token string) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateDeviceToken(ctx, u.ID, &token); err != nil {
		return fmt.Errorf("failed to update device token: %w", err)
	}
	return nil
}
