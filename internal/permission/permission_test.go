package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forno/pizza-shop-api/internal/model"
)

var allRoles = []model.UserRole{model.RoleUser, model.RoleAdmin, model.RoleSuperAdmin}

func TestCanEditUser(t *testing.T) {
	cases := []struct {
		actor, target model.UserRole
		want          bool
	}{
		{model.RoleSuperAdmin, model.RoleUser, true},
		{model.RoleSuperAdmin, model.RoleAdmin, true},
		{model.RoleSuperAdmin, model.RoleSuperAdmin, true},
		{model.RoleAdmin, model.RoleUser, true},
		{model.RoleAdmin, model.RoleAdmin, false},
		{model.RoleAdmin, model.RoleSuperAdmin, false},
		{model.RoleUser, model.RoleUser, false},
		{model.RoleUser, model.RoleAdmin, false},
		{model.RoleUser, model.RoleSuperAdmin, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanEditUser(tc.actor, tc.target),
			"actor=%s target=%s", tc.actor, tc.target)
	}
}

func TestCanDeleteUser_AgreesWithCanEditUser(t *testing.T) {
	for _, actor := range allRoles {
		for _, target := range allRoles {
			assert.Equal(t, CanEditUser(actor, target), CanDeleteUser(actor, target),
				"actor=%s target=%s", actor, target)
		}
	}
}

func TestCanChangeUserRole(t *testing.T) {
	for _, actor := range allRoles {
		for _, target := range allRoles {
			for _, newRole := range allRoles {
				got := CanChangeUserRole(actor, target, newRole)
				want := actor == model.RoleSuperAdmin ||
					(actor == model.RoleAdmin && target == model.RoleUser && newRole == model.RoleAdmin)
				assert.Equal(t, want, got, "actor=%s target=%s new=%s", actor, target, newRole)
			}
		}
	}
}

func TestCanEditUserData_OwnProfileAlwaysWins(t *testing.T) {
	for _, actor := range allRoles {
		for _, target := range allRoles {
			assert.True(t, CanEditUserData(actor, target, false, true))
		}
	}
}

func TestCanEditUserData(t *testing.T) {
	// Super admin edits anything.
	assert.True(t, CanEditUserData(model.RoleSuperAdmin, model.RoleAdmin, false, false))

	// Admin may only fill empty fields, and only for ordinary users.
	assert.True(t, CanEditUserData(model.RoleAdmin, model.RoleUser, true, false))
	assert.False(t, CanEditUserData(model.RoleAdmin, model.RoleUser, false, false))
	assert.False(t, CanEditUserData(model.RoleAdmin, model.RoleAdmin, true, false))

	assert.False(t, CanEditUserData(model.RoleUser, model.RoleUser, true, false))
}

func TestIsStaff(t *testing.T) {
	assert.False(t, IsStaff(model.RoleUser))
	assert.True(t, IsStaff(model.RoleAdmin))
	assert.True(t, IsStaff(model.RoleSuperAdmin))
}

func TestCapabilities(t *testing.T) {
	assert.True(t, For(model.RoleSuperAdmin).ManageAdmins)
	admin := For(model.RoleAdmin)
	assert.True(t, admin.ManageUsers)
	assert.False(t, admin.ManageAdmins)
	assert.False(t, admin.DeleteAdmin)
	assert.Equal(t, Capabilities{}, For(model.RoleUser))
}
