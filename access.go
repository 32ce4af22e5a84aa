package tracker

type Access byte

const (
	AccessUndefined Access = 0
	AccessForbidden Access = 1
	AccessAllowed   Access = 2
)

func (a Access) merge(b Access) Access {
	switch {
	case a == AccessUndefined:
		return b
	case b == AccessUndefined:
		return a
	default:
		return b
	}
}

type PermissionName string

const (
	PermissionProfileReadOwn  PermissionName = "profile.read.own"
	PermissionProfileReadAll  PermissionName = "profile.read.all"
	PermissionProfileWriteOwn PermissionName = "profile.write.own"
	PermissionAdminDashboard  PermissionName = "admin.dashboard"
)

type RoleId string

type Role struct {
	Id          RoleId
	Permissions map[PermissionName]bool
}

var (
	RoleIdAdmin   RoleId = "admin"
	RoleIdManager RoleId = "manager"
	RoleIdDev     RoleId = "dev"
	RoleIdGuest   RoleId = "guest"
)

var AllRoles map[RoleId]Role = mapRolesById(
	Role{
		Id: RoleIdAdmin,
		Permissions: map[PermissionName]bool{
			PermissionProfileReadOwn:  true,
			PermissionProfileReadAll:  true,
			PermissionProfileWriteOwn: true,
			PermissionAdminDashboard:  true,
		},
	},
	Role{
		Id: RoleIdManager,
		Permissions: map[PermissionName]bool{
			PermissionProfileReadOwn:  true,
			PermissionProfileWriteOwn: true,
		},
	},
	Role{
		Id: RoleIdDev,
		Permissions: map[PermissionName]bool{
			PermissionProfileReadOwn:  true,
			PermissionProfileWriteOwn: true,
		},
	},
	Role{
		Id: RoleIdGuest,
		Permissions: map[PermissionName]bool{
			PermissionProfileReadOwn:  true,
			PermissionProfileWriteOwn: true,
			PermissionAdminDashboard:  false,
		},
	},
)

func mapRolesById(roles ...Role) map[RoleId]Role {
	rolesMap := make(map[RoleId]Role)
	for _, role := range roles {
		if _, ok := rolesMap[role.Id]; ok {
			panic("Duplicated role id: `" + role.Id + "`!")
		}
		rolesMap[role.Id] = role
	}
	return rolesMap
}

func (role Role) Access(name PermissionName) Access {
	hasPermission, ok := role.Permissions[name]
	switch {
	case !ok:
		return AccessUndefined
	case hasPermission:
		return AccessAllowed
	default:
		return AccessForbidden
	}
}

type Roles []Role

// RolesByIds maps role ids to known roles. Unknown ids are skipped and
// a user left without any role is treated as a guest.
func RolesByIds(ids []RoleId) Roles {
	roles := make(Roles, 0, len(ids))
	for _, id := range ids {
		if role, ok := AllRoles[id]; ok {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		roles = append(roles, AllRoles[RoleIdGuest])
	}
	return roles
}

func (roles Roles) Ids() []RoleId {
	ids := make([]RoleId, len(roles))
	for i, role := range roles {
		ids[i] = role.Id
	}
	return ids
}

func (roles Roles) Has(id RoleId) bool {
	for _, role := range roles {
		if role.Id == id {
			return true
		}
	}
	return false
}

func (roles Roles) Access(permission PermissionName) Access {
	access := AccessUndefined
	for _, role := range roles {
		access = access.merge(role.Access(permission))
	}
	return access
}

type Action byte

const (
	ActionReadProfile  Action = 1
	ActionWriteProfile Action = 2
)

// Scope is the set of profiles an action may touch.
type Scope byte

const (
	ScopeNone Scope = 0
	ScopeOwn  Scope = 1
	ScopeAll  Scope = 2
)

// Authorize decides how far an action reaches for the given roles.
// Writes are always limited to the caller's own profile.
func Authorize(roles Roles, action Action) Scope {
	switch action {
	case ActionReadProfile:
		switch {
		case roles.Access(PermissionProfileReadAll) == AccessAllowed:
			return ScopeAll
		case roles.Access(PermissionProfileReadOwn) == AccessAllowed:
			return ScopeOwn
		}
	case ActionWriteProfile:
		if roles.Access(PermissionProfileWriteOwn) == AccessAllowed {
			return ScopeOwn
		}
	}
	return ScopeNone
}
