package internal

import (
	"context"

	userDatamodel "github.com/frahmantamala/vehicle-permit/internal/core/datamodel/user"
)

type ctxKey string

const ContextPrincipalKey ctxKey = "principal"

// Principal is the caller identity taken from a verified token.
type Principal struct {
	UserID int64
	NIK    string
	Role   userDatamodel.Role
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(*Principal)
	return p, ok && p != nil
}

func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ContextPrincipalKey, p)
}
