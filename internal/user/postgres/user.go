package postgres

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/vehicle-permit/internal/core/datamodel/user"
	"github.com/frahmantamala/vehicle-permit/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ user.Repository = (*UserRepository)(nil)

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

func (r *UserRepository) GetByNIK(ctx context.Context, nik string) (*user.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("nik = ?", nik).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user.FromDataModel(&u), nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	dm := user.ToDataModel(u)
	if err := r.db.WithContext(ctx).Create(dm).Error; err != nil {
		return err
	}
	u.ID = dm.ID
	u.CreatedAt = dm.CreatedAt
	return nil
}

func (r *UserRepository) UpdateDeviceToken(ctx context.Context, id int64, token *string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("fcm_token", token).Error
}
