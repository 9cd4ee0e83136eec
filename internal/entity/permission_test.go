package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetUserPermissionsPrefersCustomList(t *testing.T) {
	custom := []Permission{PermLeadsRead}
	u := &UserProfile{Role: RoleSuperAdmin, Permissions: custom, IsActive: true}

	assert.Equal(t, custom, GetUserPermissions(u))
	assert.False(t, HasPermission(u, PermUsersWrite))
}

func TestGetUserPermissionsFallsBackToRole(t *testing.T) {
	for role, def := range SystemRoles {
		u := &UserProfile{Role: role, IsActive: true}
		assert.Equal(t, def.Permissions, GetUserPermissions(u), string(role))

		u.Permissions = []Permission{}
		assert.Equal(t, def.Permissions, GetUserPermissions(u), string(role))
	}
}

func TestRolesAreNested(t *testing.T) {
	chain := []Role{RoleViewer, RoleCRMUser, RoleAdmin, RoleSuperAdmin}
	for i := 1; i < len(chain); i++ {
		lower := &UserProfile{Role: chain[i-1], IsActive: true}
		upper := &UserProfile{Role: chain[i], IsActive: true}
		assert.True(t, HasAllPermissions(upper, GetUserPermissions(lower)...), "%s should include %s", chain[i], chain[i-1])
		assert.Greater(t, len(GetUserPermissions(upper)), len(GetUserPermissions(lower)))
	}
}

func TestInactiveUserHasNoPermissions(t *testing.T) {
	u := &UserProfile{Role: RoleSuperAdmin, IsActive: false}

	assert.False(t, HasPermission(u, PermLeadsRead))
	assert.False(t, HasAnyPermission(u, PermLeadsRead, PermUsersWrite))
	assert.False(t, HasAllPermissions(u))
}

func TestPermissionCombinators(t *testing.T) {
	u := &UserProfile{Role: RoleCRMUser, IsActive: true}

	assert.True(t, HasAnyPermission(u, PermUsersWrite, PermSalesWrite))
	assert.False(t, HasAnyPermission(u, PermUsersWrite, PermAccessWrite))
	assert.True(t, HasAllPermissions(u, PermLeadsWrite, PermSalesWrite))
	assert.False(t, HasAllPermissions(u, PermLeadsWrite, PermAccessWrite))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("crm_user")
	assert.NoError(t, err)
	assert.Equal(t, RoleCRMUser, r)

	_, err = ParseRole("owner")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
