package authz

import (
	"errors"
	"testing"

	"github.com/oksasatya/go-ddd-marketplace/internal/domain/entity"
)

func TestDefaultMatrix_SuperAdmin(t *testing.T) {
	m := DefaultMatrix()
	all := []Capability{
		CapUserManage, CapProductCreate, CapProductSubmit, CapProductApprove,
		CapProductPublish, CapOrderViewAll, CapReviewModerate, CapSettingsManage,
		CapReportsView,
	}
	for _, c := range all {
		if !m.Has(entity.RoleSuperAdmin, c) {
			t.Errorf("super admin should have %s", c)
		}
	}
	if m.Has(entity.RoleSuperAdmin, CapOrderViewOwn) {
		t.Errorf("super admin should NOT have %s", CapOrderViewOwn)
	}
}

func TestDefaultMatrix_Manager(t *testing.T) {
	m := DefaultMatrix()
	should := []Capability{CapProductApprove, CapProductPublish, CapOrderViewAll, CapReviewModerate, CapReportsView}
	shouldNot := []Capability{CapUserManage, CapSettingsManage, CapProductCreate}

	for _, c := range should {
		if !m.Has(entity.RoleManager, c) {
			t.Errorf("manager should have %s", c)
		}
	}
	for _, c := range shouldNot {
		if m.Has(entity.RoleManager, c) {
			t.Errorf("manager should NOT have %s", c)
		}
	}
}

func TestDefaultMatrix_SellerAndBuyer(t *testing.T) {
	m := DefaultMatrix()
	if !m.HasAll(entity.RoleSeller, CapProductCreate, CapProductSubmit, CapOrderViewOwn) {
		t.Error("seller should create, submit and view own orders")
	}
	if m.HasAny(entity.RoleSeller, CapProductApprove, CapOrderViewAll) {
		t.Error("seller should not approve products or view all orders")
	}
	if got := m.Capabilities(entity.RoleBuyer); len(got) != 1 || got[0] != CapOrderViewOwn {
		t.Errorf("buyer capabilities = %v", got)
	}
}

func TestMatrix_UnknownRole(t *testing.T) {
	m := DefaultMatrix()
	if m.Has(entity.Role("GUEST"), CapOrderViewOwn) {
		t.Error("unknown role should have no capabilities")
	}
	if m.Capabilities(entity.Role("GUEST")) != nil {
		t.Error("unknown role should have nil capability list")
	}
	if err := m.Authorize(entity.Role("GUEST"), Rule{}); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole, got %v", err)
	}
}

func TestMatrix_IsImmutable(t *testing.T) {
	grants := map[entity.Role][]Capability{entity.RoleBuyer: {CapOrderViewOwn}}
	m := NewMatrix(grants)

	grants[entity.RoleBuyer][0] = CapUserManage
	caps := m.Capabilities(entity.RoleBuyer)
	caps[0] = CapSettingsManage

	if !m.Has(entity.RoleBuyer, CapOrderViewOwn) || m.Has(entity.RoleBuyer, CapUserManage) {
		t.Fatal("matrix changed through caller-held slices")
	}
}

func TestAuthorize_HierarchySupersedesExactMatch(t *testing.T) {
	m := DefaultMatrix()
	rule := SellerOnly()

	if err := m.Authorize(entity.RoleBuyer, rule); !errors.Is(err, ErrRoleNotAllowed) {
		t.Fatalf("buyer on seller route: got %v", err)
	}
	for _, r := range []entity.Role{entity.RoleSeller, entity.RoleManager, entity.RoleSuperAdmin} {
		if err := m.Authorize(r, rule); err != nil {
			t.Fatalf("%s on seller route: got %v", r, err)
		}
	}
}

func TestAuthorize_BuyerOnlyIsExact(t *testing.T) {
	m := DefaultMatrix()
	if !m.Allows(entity.RoleBuyer, BuyerOnly()) {
		t.Fatal("buyer should pass BuyerOnly")
	}
	if m.Allows(entity.RoleSuperAdmin, BuyerOnly()) {
		t.Fatal("super admin should not pass exact BuyerOnly")
	}
}

func TestAuthorize_CoarseAndFineBothApply(t *testing.T) {
	m := DefaultMatrix()
	rule := ManagerOnly().With(CapUserManage)

	if err := m.Authorize(entity.RoleManager, rule); !errors.Is(err, ErrMissingCapability) {
		t.Fatalf("manager without user.manage: got %v", err)
	}
	if err := m.Authorize(entity.RoleSuperAdmin, rule); err != nil {
		t.Fatalf("super admin: got %v", err)
	}
	if err := m.Authorize(entity.RoleSeller, Require(CapProductApprove)); !errors.Is(err, ErrMissingCapability) {
		t.Fatalf("seller approving products: got %v", err)
	}
}

func TestRule_WithDoesNotAliasOriginal(t *testing.T) {
	base := Require(CapReportsView)
	extended := base.With(CapOrderViewAll)
	if len(base.Capabilities) != 1 {
		t.Fatalf("base rule mutated: %v", base.Capabilities)
	}
	if len(extended.Capabilities) != 2 {
		t.Fatalf("extended rule = %v", extended.Capabilities)
	}
}
