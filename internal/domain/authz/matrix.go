package authz

import (
	"errors"
	"slices"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
)

var (
	ErrUnknownRole       = errors.New("unknown role")
	ErrRoleNotAllowed    = errors.New("role not allowed")
	ErrMissingCapability = errors.New("missing capability")
)

// Matrix maps each role to its ordered capability list. A Matrix is never
// mutated after construction; lookups hand out copies.
type Matrix struct {
	grants map[entity.Role][]Capability
}

// NewMatrix copies grants so later changes to the argument cannot leak in.
func NewMatrix(grants map[entity.Role][]Capability) Matrix {
	m := Matrix{grants: make(map[entity.Role][]Capability, len(grants))}
	for role, caps := range grants {
		m.grants[role] = slices.Clone(caps)
	}
	return m
}

// DefaultMatrix is the marketplace's role/capability table.
func DefaultMatrix() Matrix {
	return NewMatrix(map[entity.Role][]Capability{
		entity.RoleSuperAdmin: {
			CapUserManage,
			CapProductCreate,
			CapProductSubmit,
			CapProductApprove,
			CapProductPublish,
			CapOrderViewAll,
			CapReviewModerate,
			CapSettingsManage,
			CapReportsView,
		},
		entity.RoleManager: {
			CapProductApprove,
			CapProductPublish,
			CapOrderViewAll,
			CapReviewModerate,
			CapReportsView,
		},
		entity.RoleSeller: {
			CapProductCreate,
			CapProductSubmit,
			CapOrderViewOwn,
		},
		entity.RoleBuyer: {
			CapOrderViewOwn,
		},
	})
}

func (m Matrix) Has(role entity.Role, c Capability) bool {
	return slices.Contains(m.grants[role], c)
}

func (m Matrix) HasAll(role entity.Role, caps ...Capability) bool {
	for _, c := range caps {
		if !m.Has(role, c) {
			return false
		}
	}
	return true
}

func (m Matrix) HasAny(role entity.Role, caps ...Capability) bool {
	for _, c := range caps {
		if m.Has(role, c) {
			return true
		}
	}
	return false
}

// Capabilities returns a copy of the role's grants, nil for unknown roles.
func (m Matrix) Capabilities(role entity.Role) []Capability {
	return slices.Clone(m.grants[role])
}

// Authorize applies the coarse role check and then the fine capability
// check of rule. A nil error means access is granted.
func (m Matrix) Authorize(role entity.Role, rule Rule) error {
	if !role.Valid() {
		return ErrUnknownRole
	}
	if rule.MinRole != "" && !role.AtLeast(rule.MinRole) {
		return ErrRoleNotAllowed
	}
	if len(rule.Roles) > 0 && !slices.Contains(rule.Roles, role) {
		return ErrRoleNotAllowed
	}
	if !m.HasAll(role, rule.Capabilities...) {
		return ErrMissingCapability
	}
	return nil
}

func (m Matrix) Allows(role entity.Role, rule Rule) bool {
	return m.Authorize(role, rule) == nil
}
