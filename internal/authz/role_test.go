package authz

import "testing"

func TestLevelOrdering(t *testing.T) {
	ordered := []Role{RoleMember, RoleModerator, RoleAdmin, RolePresident}
	for i := 1; i < len(ordered); i++ {
		if Level(ordered[i]) <= Level(ordered[i-1]) {
			t.Errorf("Level(%v) = %d, want > Level(%v) = %d",
				ordered[i], Level(ordered[i]), ordered[i-1], Level(ordered[i-1]))
		}
	}
}

func TestAtLeastMonotonic(t *testing.T) {
	roles := []Role{RoleMember, RoleModerator, RoleAdmin, RolePresident}
	// Higher role never loses access a lower role already had.
	for _, r1 := range roles {
		for _, r2 := range roles {
			if Level(r2) < Level(r1) {
				continue
			}
			for _, required := range roles {
				if AtLeast(r1, required) && !AtLeast(r2, required) {
					t.Errorf("AtLeast(%v, %v) true but AtLeast(%v, %v) false", r1, required, r2, required)
				}
			}
		}
	}
}

func TestAtLeast(t *testing.T) {
	tests := []struct {
		role, required Role
		want           bool
	}{
		{RoleMember, RoleMember, true},
		{RoleMember, RoleModerator, false},
		{RoleModerator, RoleMember, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RolePresident, false},
		{RolePresident, RoleMember, true},
	}
	for _, tt := range tests {
		if got := AtLeast(tt.role, tt.required); got != tt.want {
			t.Errorf("AtLeast(%v, %v) = %v, want %v", tt.role, tt.required, got, tt.want)
		}
	}
}

func TestParseRoleRoundTrip(t *testing.T) {
	for _, r := range []Role{RoleMember, RoleModerator, RoleAdmin, RolePresident} {
		got, err := ParseRole(r.String())
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", r.String(), err)
		}
		if got != r {
			t.Errorf("ParseRole(%q) = %v, want %v", r.String(), got, r)
		}
	}
}

func TestParseRoleUnknown(t *testing.T) {
	if _, err := ParseRole("owner"); err == nil {
		t.Error("ParseRole(\"owner\"): want error, got nil")
	}
}
