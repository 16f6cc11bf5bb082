package middleware

import "gripelogger/backend/internal/models"

// Decision is the outcome of the role gate: where a caller should land
// given their authentication state and resolved role.
type Decision string

const (
	DecisionLogin       Decision = "login"
	DecisionLoading     Decision = "loading"
	DecisionStudentArea Decision = "student"
	DecisionAdminArea   Decision = "admin"
)

// ResolveArea maps session state and role onto a routing decision.
// Unauthenticated callers go to login. An authenticated caller whose
// role has not resolved yet stays on loading; protected content is never
// offered early. A caller asking for an area that is not theirs is sent
// to their own area, not to login: the failure is treated as misrouting,
// not denial.
func ResolveArea(authenticated bool, role, required models.Role) Decision {
	if !authenticated {
		return DecisionLogin
	}
	if role == "" {
		return DecisionLoading
	}
	if required != "" && role != required {
		return areaFor(role)
	}
	if required != "" {
		return areaFor(required)
	}
	return areaFor(role)
}

func areaFor(role models.Role) Decision {
	if role == models.RoleAdmin {
		return DecisionAdminArea
	}
	return DecisionStudentArea
}

// AreaPath is the dashboard path for a role, used in redirect bodies.
func AreaPath(role models.Role) string {
	if role == models.RoleAdmin {
		return "/admin"
	}
	return "/student"
}
