package auth

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleHealthcare Role = "healthcare"
	RoleLab        Role = "lab"
)

// RolePriority ranks group memberships, highest privilege first
var RolePriority = []Role{RoleAdmin, RoleHealthcare, RoleLab}

func ParseRole(value string) (Role, bool) {
	for _, role := range RolePriority {
		if string(role) == value {
			return role, true
		}
	}
	return "", false
}

func (r Role) String() string {
	return string(r)
}
