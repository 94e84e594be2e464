package auth

import (
	"github.com/frahmantamala/vehicle-permit/internal"
	"github.com/frahmantamala/vehicle-permit/internal/user"
)

// SubmissionPolicy decides who may file a permit on behalf of which NIK.
type SubmissionPolicy struct {
	SelfServiceOnly bool
}

func NewSubmissionPolicy(selfServiceOnly bool) *SubmissionPolicy {
	return &SubmissionPolicy{SelfServiceOnly: selfServiceOnly}
}

// CanSubmitFor returns ErrInsufficientPermissions when an employee files for
// someone else while self-service mode is on. HR and Admin are never restricted.
func (p *SubmissionPolicy) CanSubmitFor(principal *internal.Principal, requesterNIK string) error {
	if principal == nil {
		return internal.ErrTokenInvalidOrExpired
	}
	if !p.SelfServiceOnly {
		return nil
	}
	if principal.Role == user.RoleEmployee && principal.NIK != requesterNIK {
		return internal.ErrInsufficientPermissions.WithDetails(map[string]string{
			"reason": "employees may only submit permits for their own NIK",
		})
	}
	return nil
}
