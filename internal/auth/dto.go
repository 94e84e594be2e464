package auth

import (
	errors "github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	NIK         string  `json:"nik"`
	Password    string  `json:"password"`
	DeviceToken *string `json:"fcm_token,omitempty"`
}

func (d LoginDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("nik", d.NIK).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}
