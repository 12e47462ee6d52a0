package entity

import "strings"

// Role is the marketplace role carried by every user and every token.
type Role string

const (
	RoleBuyer      Role = "BUYER"
	RoleSeller     Role = "SELLER"
	RoleManager    Role = "MANAGER"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// roleLevels is the total order used for "at least" checks.
var roleLevels = map[Role]int{
	RoleBuyer:      1,
	RoleSeller:     2,
	RoleManager:    3,
	RoleSuperAdmin: 4,
}

// Level returns the hierarchy level of r, 0 for unknown roles.
func (r Role) Level() int {
	return roleLevels[r]
}

func (r Role) Valid() bool {
	return r.Level() > 0
}

// AtLeast reports whether r sits at or above min in the hierarchy.
// Unknown roles never satisfy the check.
func (r Role) AtLeast(min Role) bool {
	if !r.Valid() || !min.Valid() {
		return false
	}
	return r.Level() >= min.Level()
}

// ParseRole accepts the canonical names case-insensitively.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Roles lists every role from lowest to highest.
func Roles() []Role {
	return []Role{RoleBuyer, RoleSeller, RoleManager, RoleSuperAdmin}
}
