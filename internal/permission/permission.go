// Package permission holds the role decision functions used by the admin
// surface. The functions are pure: they never touch storage and never
// return an error. A caller that ignores a false result and proceeds
// anyway is a caller bug, not a permission bug.
package permission

import "github.com/forno/pizza-shop-api/internal/model"

// IsStaff reports whether role may reach the admin surface at all.
func IsStaff(role model.UserRole) bool {
	return role == model.RoleAdmin || role == model.RoleSuperAdmin
}

// CanEditUser reports whether actor may edit target's account. Super
// admins may edit anyone; admins may edit ordinary users only.
func CanEditUser(actor, target model.UserRole) bool {
	if actor == model.RoleSuperAdmin {
		return true
	}
	if actor == model.RoleAdmin {
		return target == model.RoleUser
	}
	return false
}

// CanDeleteUser follows the same table as CanEditUser.
func CanDeleteUser(actor, target model.UserRole) bool {
	if actor == model.RoleSuperAdmin {
		return true
	}
	if actor == model.RoleAdmin {
		return target == model.RoleUser
	}
	return false
}

// CanChangeUserRole reports whether actor may move target to newRole.
// Super admins may perform any transition; admins may only promote
// ordinary users to admin.
func CanChangeUserRole(actor, target, newRole model.UserRole) bool {
	if actor == model.RoleSuperAdmin {
		return true
	}
	if actor == model.RoleAdmin {
		return target == model.RoleUser && newRole == model.RoleAdmin
	}
	return false
}

// CanEditUserData reports whether actor may change target's profile
// fields. Self-edits are always allowed, before any role check. Admins
// may only fill in missing profile data for ordinary users, never
// overwrite existing data.
func CanEditUserData(actor, target model.UserRole, hasEmptyRequiredFields, isOwnProfile bool) bool {
	if isOwnProfile {
		return true
	}
	if actor == model.RoleSuperAdmin {
		return true
	}
	if actor == model.RoleAdmin {
		return target == model.RoleUser && hasEmptyRequiredFields
	}
	return false
}

// Capabilities is the per-role capability set exposed to the admin UI.
type Capabilities struct {
	ManageUsers      bool `json:"manage_users"`
	ManageAdmins     bool `json:"manage_admins"`
	EditAdminData    bool `json:"edit_admin_data"`
	DeleteAdmin      bool `json:"delete_admin"`
	EditUserData     bool `json:"edit_user_data"`
	DeleteUser       bool `json:"delete_user"`
	ManageProducts   bool `json:"manage_products"`
	ManageCategories bool `json:"manage_categories"`
	ManageOrders     bool `json:"manage_orders"`
}

// For returns the capability set for role. Unknown roles get the
// ordinary-user (all false) set.
func For(role model.UserRole) Capabilities {
	switch role {
	case model.RoleSuperAdmin:
		return Capabilities{
			ManageUsers:      true,
			ManageAdmins:     true,
			EditAdminData:    true,
			DeleteAdmin:      true,
			EditUserData:     true,
			DeleteUser:       true,
			ManageProducts:   true,
			ManageCategories: true,
			ManageOrders:     true,
		}
	case model.RoleAdmin:
		return Capabilities{
			ManageUsers:      true,
			EditUserData:     true,
			DeleteUser:       true,
			ManageProducts:   true,
			ManageCategories: true,
			ManageOrders:     true,
		}
	default:
		return Capabilities{}
	}
}
