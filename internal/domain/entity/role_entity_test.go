package entity

import "testing"

func TestRole_AtLeast(t *testing.T) {
	cases := []struct {
		role, min Role
		want      bool
	}{
		{RoleBuyer, RoleBuyer, true},
		{RoleBuyer, RoleSeller, false},
		{RoleManager, RoleSeller, true},
		{RoleSuperAdmin, RoleManager, true},
		{RoleSeller, RoleSuperAdmin, false},
		{Role("GUEST"), RoleBuyer, false},
		{RoleSuperAdmin, Role(""), false},
	}
	for _, tc := range cases {
		if got := tc.role.AtLeast(tc.min); got != tc.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tc.role, tc.min, got, tc.want)
		}
	}
}

func TestRoles_StrictlyIncreasing(t *testing.T) {
	prev := 0
	for _, r := range Roles() {
		if r.Level() <= prev {
			t.Fatalf("role %s level %d is not above %d", r, r.Level(), prev)
		}
		prev = r.Level()
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" manager "); !ok || r != RoleManager {
		t.Fatalf("ParseRole(manager) = %q, %v", r, ok)
	}
	if _, ok := ParseRole("gestor"); ok {
		t.Fatal("unknown role should not parse")
	}
}
