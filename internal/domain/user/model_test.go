package user

import "testing"

func TestPrincipalIsStaff(t *testing.T) {
	t.Parallel()

	for _, role := range []Role{RoleStaff, RoleCoreTeam, RoleAdmin} {
		if !(Principal{UserID: "u", Role: role}).IsStaff() {
			t.Fatalf("expected role %s to be staff", role)
		}
	}
	for _, role := range []Role{RoleMember, "", "guest"} {
		if (Principal{UserID: "u", Role: role}).IsStaff() {
			t.Fatalf("expected role %q to not be staff", role)
		}
	}
}
