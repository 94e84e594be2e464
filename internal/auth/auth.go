package auth

import (
	"context"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/user"
)

// Claims represents JWT token claims
type Claims struct {
	UserID int64     `json:"user_id"`
	NIK    string    `json:"nik"`
	Role   user.Role `json:"role"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into the request identity.
func (c *Claims) Principal() *internal.Principal {
	return &internal.Principal{
		UserID: c.UserID,
		NIK:    c.NIK,
		Role:   c.Role,
	}
}

func (c *Claims) subject() string {
	return strconv.FormatInt(c.UserID, 10)
}

// TokenGenerator issues and verifies signed access tokens.
type TokenGenerator interface {
	GenerateAccessToken(u *user.User) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// CredentialStore is the slice of the user repository the session issuer needs.
type CredentialStore interface {
	GetByNIK(ctx context.Context, nik string) (*user.User, error)
	UpdateDeviceToken(ctx context.Context, id int64, token *string) error
}

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*LoginResult, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

// LoginResult is the response of a successful login.
type LoginResult struct {
	User  user.Profile `json:"user"`
	Token string       `json:"token"`
}
