package rbac

import (
	"errors"
	"testing"
)

func TestTableCoversEveryRole(t *testing.T) {
	for _, role := range AllRoles() {
		if _, ok := rolePermissions[role]; !ok {
			t.Errorf("role %s has no entry in the role-permission table", role)
		}
	}
}

func TestPermissionsForRoleReturnsCopy(t *testing.T) {
	perms := PermissionsForRole(RoleUser)
	if len(perms) == 0 {
		t.Fatal("user role must have permissions")
	}
	perms[0] = Permission("mutated")
	if PermissionsForRole(RoleUser)[0] == Permission("mutated") {
		t.Error("PermissionsForRole must not expose the table's backing array")
	}
}

func TestParseRole(t *testing.T) {
	for _, role := range AllRoles() {
		parsed, err := ParseRole(role.String())
		if err != nil {
			t.Fatalf("ParseRole(%s): %v", role, err)
		}
		if parsed != role {
			t.Errorf("ParseRole(%s) = %s", role, parsed)
		}
	}

	_, err := ParseRole("superuser")
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
	var unknown *UnknownRoleError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownRoleError, got %T", err)
	}
	if unknown.Value != "superuser" {
		t.Errorf("UnknownRoleError.Value = %q", unknown.Value)
	}
}
