package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/vehicle-permit/internal/core/datamodel/user"
)

type Role = userDatamodel.Role

const (
	RoleEmployee = userDatamodel.RoleEmployee
	RoleHR       = userDatamodel.RoleHR
	RoleAdmin    = userDatamodel.RoleAdmin
)

// User is an account that may sign in. NIK is the login identifier.
type User struct {
	ID           int64     `json:"id"`
	NIK          string    `json:"nik"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	DeviceToken  *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasDeviceToken reports whether a push target is registered.
func (u *User) HasDeviceToken() bool {
	return u.DeviceToken != nil && *u.DeviceToken != ""
}

// Profile is the public view of a user; it never carries credentials.
type Profile struct {
	ID   int64  `json:"id"`
	NIK  string `json:"nik"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (u *User) ToProfile() Profile {
	return Profile{
		ID:   u.ID,
		NIK:  u.NIK,
		Name: u.Name,
		Role: u.Role,
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:        u.ID,
		NIK:       u.NIK,
		Password:  u.PasswordHash,
		Name:      u.Name,
		Role:      u.Role,
		FCMToken:  u.DeviceToken,
		CreatedAt: u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		NIK:          u.NIK,
		Name:         u.Name,
		Role:         u.Role,
		PasswordHash: u.Password,
		DeviceToken:  u.FCMToken,
		CreatedAt:    u.CreatedAt,
	}
}
