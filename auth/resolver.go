package auth

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/medisys-health/diagnostics/errors"
)

var (
	ErrInsufficientPermissions = fmt.Errorf("%w: user is not assigned to an authorized group", errors.Forbidden)
	ErrAccountMisconfigured    = fmt.Errorf("%w: lab user has no clinic_id", errors.AccountMisconfigured)
)

// AccessContext is the effective role and tenant scope of a request
type AccessContext struct {
	Role     Role   `json:"role"`
	ClinicId string `json:"clinicId,omitempty"`
}

func (a AccessContext) IsLab() bool {
	return a.Role == RoleLab
}

// Resolve picks the highest priority role from the group memberships, falling back
// to the custom role attribute. Only lab users are scoped to a clinic.
func Resolve(claims Claims) (AccessContext, error) {
	groups := mapset.NewThreadUnsafeSet[string]()
	for _, group := range claims.Groups {
		groups.Add(strings.TrimSpace(group))
	}

	var role Role
	for _, candidate := range RolePriority {
		if groups.Contains(string(candidate)) {
			role = candidate
			break
		}
	}
	if role == "" {
		parsed, ok := ParseRole(strings.TrimSpace(claims.CustomRole))
		if !ok {
			return AccessContext{}, ErrInsufficientPermissions
		}
		role = parsed
	}

	access := AccessContext{Role: role}
	if role == RoleLab {
		access.ClinicId = strings.TrimSpace(claims.ClinicId)
		if access.ClinicId == "" {
			return AccessContext{}, ErrAccountMisconfigured
		}
	}

	return access, nil
}
