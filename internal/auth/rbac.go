package auth

import "hrportal/internal/model"

// SuperuserRole is the role that bypasses ordinary RBAC checks.
const SuperuserRole = "admin"

// HasAnyRole reports whether the user holds at least one of the required
// roles. A user with zero roles never matches.
func HasAnyRole(user *model.User, required []string) bool {
	for _, role := range user.Roles {
		for _, name := range required {
			if role.Name == name {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission reports whether at least one of the required permission
// names appears in the union of permissions across all of the user's roles.
// Checks are OR across the required list; AND composition happens by stacking
// independent gates, not here.
func HasAnyPermission(user *model.User, required []string) bool {
	for _, role := range user.Roles {
		for _, perm := range role.Permissions {
			for _, name := range required {
				if perm.Name == name {
					return true
				}
			}
		}
	}
	return false
}

// IsSuperuser reports whether the user holds the admin role.
func IsSuperuser(user *model.User) bool {
	return HasAnyRole(user, []string{SuperuserRole})
}
