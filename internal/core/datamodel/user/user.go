package user

import "time"

type Role string

const (
	RoleEmployee Role = "Karyawan"
	RoleHR       Role = "HR"
	RoleAdmin    Role = "Admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleHR, RoleAdmin:
		return true
	}
	return false
}

// CanDecide reports whether the role may approve or reject permit requests.
func (r Role) CanDecide() bool {
	return r == RoleHR || r == RoleAdmin
}

type User struct {
	ID        int64     `gorm:"primaryKey"`
	NIK       string    `gorm:"column:nik;uniqueIndex;not null"`
	Password  string    `gorm:"column:password;not null"`
	Name      string    `gorm:"column:name;not null"`
	Role      Role      `gorm:"column:role;not null"`
	FCMToken  *string   `gorm:"column:fcm_token"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
