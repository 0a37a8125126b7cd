package auth

// Roles an authenticated subject can hold.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleAgent   = "agent"
)

// Permissions gate the HTTP CRUD surface.
const (
	PermCreateUser     = "create_user"
	PermReadUser       = "read_user"
	PermUpdateUser     = "update_user"
	PermDeleteUser     = "delete_user"
	PermCreateCustomer = "create_customer"
	PermReadCustomer   = "read_customer"
	PermUpdateCustomer = "update_customer"
	PermDeleteCustomer = "delete_customer"
	PermCreateCampaign = "create_campaign"
	PermReadCampaign   = "read_campaign"
	PermUpdateCampaign = "update_campaign"
	PermDeleteCampaign = "delete_campaign"
	PermAssignCustomer = "assign_customer"
)

var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermCreateUser, PermReadUser, PermUpdateUser, PermDeleteUser,
		PermCreateCustomer, PermReadCustomer, PermUpdateCustomer, PermDeleteCustomer,
		PermCreateCampaign, PermReadCampaign, PermUpdateCampaign, PermDeleteCampaign,
		PermAssignCustomer,
	},
	RoleManager: {
		PermReadUser,
		PermCreateCustomer, PermReadCustomer, PermUpdateCustomer,
		PermCreateCampaign, PermReadCampaign, PermUpdateCampaign,
		PermAssignCustomer,
	},
	RoleAgent: {
		PermReadCustomer, PermUpdateCustomer, PermReadCampaign,
	},
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleAgent:
		return true
	}
	return false
}

// HasPermissions reports whether the role grants every listed permission.
func HasPermissions(role string, perms ...string) bool {
	granted, ok := rolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		found := false
		for _, g := range granted {
			if g == p {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
