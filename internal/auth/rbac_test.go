package auth

import "testing"

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleManager, RoleAgent} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "superuser", "Admin"} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true, want false", role)
		}
	}
}

func TestHasPermissions(t *testing.T) {
	tests := []struct {
		role  string
		perms []string
		want  bool
	}{
		{RoleAdmin, []string{PermDeleteUser}, true},
		{RoleAdmin, []string{PermCreateCustomer, PermDeleteCampaign}, true},
		{RoleManager, []string{PermAssignCustomer}, true},
		{RoleManager, []string{PermDeleteCustomer}, false},
		{RoleManager, []string{PermReadUser, PermDeleteUser}, false},
		{RoleAgent, []string{PermReadCustomer}, true},
		{RoleAgent, []string{PermUpdateCustomer, PermReadCampaign}, true},
		{RoleAgent, []string{PermCreateCustomer}, false},
		{RoleAgent, []string{PermAssignCustomer}, false},
		{"unknown", []string{PermReadCustomer}, false},
	}

	for _, tt := range tests {
		if got := HasPermissions(tt.role, tt.perms...); got != tt.want {
			t.Errorf("HasPermissions(%q, %v) = %v, want %v", tt.role, tt.perms, got, tt.want)
		}
	}
}
