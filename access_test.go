package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessMerge(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(AccessAllowed, AccessUndefined.merge(AccessAllowed))
	assert.Equal(AccessAllowed, AccessAllowed.merge(AccessAllowed))
	assert.Equal(AccessAllowed, AccessAllowed.merge(AccessUndefined))
	assert.Equal(AccessAllowed, AccessForbidden.merge(AccessAllowed))

	assert.Equal(AccessUndefined, AccessUndefined.merge(AccessUndefined))

	assert.Equal(AccessForbidden, AccessUndefined.merge(AccessForbidden))
	assert.Equal(AccessForbidden, AccessForbidden.merge(AccessForbidden))
	assert.Equal(AccessForbidden, AccessForbidden.merge(AccessUndefined))
	assert.Equal(AccessForbidden, AccessAllowed.merge(AccessForbidden))

	rolePermitted := Role{Permissions: map[PermissionName]bool{PermissionProfileReadAll: true}}
	roleUndefined := Role{Permissions: map[PermissionName]bool{}}
	roleForbidden := Role{Permissions: map[PermissionName]bool{PermissionProfileReadAll: false}}
	allowedCases := []Roles{
		{rolePermitted},
		{roleUndefined, rolePermitted, rolePermitted},
		{rolePermitted, roleUndefined, rolePermitted},
	}
	for _, equalCase := range allowedCases {
		assert.Equal(AccessAllowed, equalCase.Access(PermissionProfileReadAll))
	}

	forbiddenCases := []Roles{
		{roleForbidden},
		{roleUndefined, rolePermitted, roleForbidden},
		{rolePermitted, roleUndefined, roleForbidden},
		{roleForbidden, roleUndefined, roleForbidden},
		{roleForbidden, rolePermitted, roleForbidden},
	}
	for i, equalCase := range forbiddenCases {
		assert.Equal(AccessForbidden, equalCase.Access(PermissionProfileReadAll), "access index: %d", i)
	}
}

func TestMapRolesById(t *testing.T) {
	assert := assert.New(t)

	roleAdmin := AllRoles[RoleIdAdmin]
	roleDev := AllRoles[RoleIdDev]

	rolesMapped := mapRolesById(roleAdmin, roleDev)
	assert.Equal(roleAdmin, rolesMapped[RoleIdAdmin])
	assert.Equal(roleDev, rolesMapped[RoleIdDev])

	assert.Panics(func() {
		mapRolesById(roleAdmin, roleAdmin)
	})
	assert.Panics(func() {
		mapRolesById(roleDev, roleDev, roleAdmin)
	})
}

func TestRolesByIds(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Roles{AllRoles[RoleIdDev]}, RolesByIds([]RoleId{RoleIdDev, "UNDEFINED role"}))
	assert.Equal(Roles{AllRoles[RoleIdGuest]}, RolesByIds(nil))
	assert.Equal(Roles{AllRoles[RoleIdGuest]}, RolesByIds([]RoleId{"root"}))
	assert.Equal([]RoleId{RoleIdAdmin, RoleIdManager},
		RolesByIds([]RoleId{RoleIdAdmin, RoleIdManager}).Ids())
	assert.True(RolesByIds([]RoleId{RoleIdManager}).Has(RoleIdManager))
	assert.False(RolesByIds([]RoleId{RoleIdManager}).Has(RoleIdAdmin))
}

func TestAuthorize(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		roles  Roles
		action Action
		scope  Scope
	}{
		{RolesByIds([]RoleId{RoleIdAdmin}), ActionReadProfile, ScopeAll},
		{RolesByIds([]RoleId{RoleIdAdmin}), ActionWriteProfile, ScopeOwn},
		{RolesByIds([]RoleId{RoleIdManager}), ActionReadProfile, ScopeOwn},
		{RolesByIds([]RoleId{RoleIdDev}), ActionReadProfile, ScopeOwn},
		{RolesByIds([]RoleId{RoleIdDev}), ActionWriteProfile, ScopeOwn},
		{RolesByIds([]RoleId{RoleIdGuest}), ActionReadProfile, ScopeOwn},
		{RolesByIds([]RoleId{RoleIdGuest}), ActionWriteProfile, ScopeOwn},
		{RolesByIds([]RoleId{RoleIdDev, RoleIdAdmin}), ActionReadProfile, ScopeAll},
		{Roles{}, ActionReadProfile, ScopeNone},
		{Roles{}, ActionWriteProfile, ScopeNone},
		{Roles{{Id: "muted", Permissions: map[PermissionName]bool{PermissionProfileWriteOwn: false}}},
			ActionWriteProfile, ScopeNone},
		{RolesByIds([]RoleId{RoleIdAdmin}), Action(99), ScopeNone},
	}
	for i, tc := range cases {
		assert.Equal(tc.scope, Authorize(tc.roles, tc.action), "case index: %d", i)
	}
}
