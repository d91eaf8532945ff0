package domain

// Role is the coarse access level of a user.
type Role string

const (
	RoleSuperAdmin      Role = "super_admin"
	RoleDepartmentAdmin Role = "department_admin"
	RoleEmployee        Role = "employee"
)

// IsValid checks if the role is a known value.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleDepartmentAdmin, RoleEmployee:
		return true
	}
	return false
}

// Permission names checked by the authorization service.
const (
	PermOrgManage       = "org:manage"
	PermTicketsCreate   = "tickets:create"
	PermTicketsReadAll  = "tickets:read:all"
	PermTicketsReadDept = "tickets:read:department"
	PermTicketsReadOwn  = "tickets:read:own"
	PermTicketsWork     = "tickets:work"
	PermCommentsCreate  = "comments:create"
	PermAssetsManage    = "assets:manage"
	PermAssetsReadAll   = "assets:read:all"
	PermReportsView     = "reports:view"
	PermRealtime        = "realtime:subscribe"
)

var rolePermissions = map[Role][]string{
	RoleSuperAdmin: {
		PermOrgManage,
		PermTicketsReadAll,
		PermAssetsReadAll,
		PermReportsView,
	},
	RoleDepartmentAdmin: {
		PermTicketsReadDept,
		PermTicketsWork,
		PermCommentsCreate,
		PermAssetsManage,
		PermReportsView,
		PermRealtime,
	},
	RoleEmployee: {
		PermTicketsCreate,
		PermTicketsReadOwn,
		PermCommentsCreate,
	},
}

// Permissions returns a copy of the permissions granted to the role.
func (r Role) Permissions() []string {
	perms := rolePermissions[r]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// Has reports whether the role grants the permission.
func (r Role) Has(permission string) bool {
	for _, p := range rolePermissions[r] {
		if p == permission {
			return true
		}
	}
	return false
}
