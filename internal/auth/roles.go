package auth

// Admin role constants. Traders can resettle and void wagers; viewers only
// read.
const (
	RoleViewer     = "viewer"
	RoleTrader     = "trader"
	RoleSuperAdmin = "superadmin"
)

// AllAdminRoles returns all valid admin roles.
func AllAdminRoles() []string {
	return []string{RoleViewer, RoleTrader, RoleSuperAdmin}
}

// WriteRoles returns roles that can modify data.
func WriteRoles() []string {
	return []string{RoleTrader, RoleSuperAdmin}
}
