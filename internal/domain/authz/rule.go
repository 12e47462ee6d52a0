package authz

import "github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"

// Rule declares what a route or action requires.
//   - MinRole: caller must sit at or above this role in the hierarchy.
//   - Roles: explicit allow-list, matched exactly.
//   - Capabilities: every listed capability must be granted to the caller's role.
//
// Zero fields are not checked, so the zero Rule only requires a known role.
type Rule struct {
	MinRole      entity.Role
	Roles        []entity.Role
	Capabilities []Capability
}

func SuperAdminOnly() Rule { return Rule{MinRole: entity.RoleSuperAdmin} }
func ManagerOnly() Rule    { return Rule{MinRole: entity.RoleManager} }
func SellerOnly() Rule     { return Rule{MinRole: entity.RoleSeller} }
func BuyerOnly() Rule      { return Rule{Roles: []entity.Role{entity.RoleBuyer}} }

// Require builds a capability-only rule.
func Require(caps ...Capability) Rule {
	return Rule{Capabilities: caps}
}

// With returns a copy of r that additionally requires caps.
func (r Rule) With(caps ...Capability) Rule {
	out := Rule{MinRole: r.MinRole}
	out.Roles = append(out.Roles, r.Roles...)
	out.Capabilities = append(append(out.Capabilities, r.Capabilities...), caps...)
	return out
}
