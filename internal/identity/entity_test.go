// AngelaMos | 2026
// entity_test.go

package identity

import "testing"

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role      Role
		canWrite  bool
		canDelete bool
	}{
		{RoleViewer, false, false},
		{RoleStaff, true, false},
		{RoleAdmin, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.CanWrite(); got != tt.canWrite {
				t.Errorf("CanWrite: got %v, want %v", got, tt.canWrite)
			}
			if got := tt.role.CanDelete(); got != tt.canDelete {
				t.Errorf("CanDelete: got %v, want %v", got, tt.canDelete)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"viewer", RoleViewer},
		{"staff", RoleStaff},
		{"admin", RoleAdmin},
		{"", RoleViewer},
		{"superuser", RoleViewer},
		{"ADMIN", RoleViewer},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseRole(tt.input); got != tt.want {
				t.Errorf("ParseRole(%q): got %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleViewer, RoleStaff, RoleAdmin} {
		if !role.Valid() {
			t.Errorf("%s should be valid", role)
		}
	}

	for _, role := range []Role{"", "root", "Viewer"} {
		if role.Valid() {
			t.Errorf("%q should be invalid", role)
		}
	}
}
