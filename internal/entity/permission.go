package entity

import "sort"

type Permission string

const (
	PermLeadsRead          Permission = "leads:read"
	PermLeadsWrite         Permission = "leads:write"
	PermSalesRead          Permission = "sales:read"
	PermSalesWrite         Permission = "sales:write"
	PermAccessWrite        Permission = "access:write"
	PermUsersRead          Permission = "users:read"
	PermUsersWrite         Permission = "users:write"
	PermAdLinksRead        Permission = "adlinks:read"
	PermAdLinksWrite       Permission = "adlinks:write"
	PermContentWrite       Permission = "content:write"
	PermHallOfFameModerate Permission = "halloffame:moderate"
	PermAnalyticsRead      Permission = "analytics:read"
)

var knownPermissions = map[Permission]struct{}{
	PermLeadsRead: {}, PermLeadsWrite: {}, PermSalesRead: {}, PermSalesWrite: {},
	PermAccessWrite: {}, PermUsersRead: {}, PermUsersWrite: {}, PermAdLinksRead: {},
	PermAdLinksWrite: {}, PermContentWrite: {}, PermHallOfFameModerate: {}, PermAnalyticsRead: {},
}

func IsKnownPermission(p Permission) bool {
	_, ok := knownPermissions[p]
	return ok
}

// Capability groups. Roles are unions of these so that the superset
// relation between roles holds by construction.
var (
	capReadCRM    = []Permission{PermLeadsRead, PermSalesRead, PermAnalyticsRead}
	capWriteCRM   = []Permission{PermLeadsWrite, PermSalesWrite}
	capOperations = []Permission{PermAccessWrite, PermAdLinksRead, PermAdLinksWrite, PermContentWrite, PermHallOfFameModerate, PermUsersRead}
	capUserAdmin  = []Permission{PermUsersWrite}
)

type RoleDefinition struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}

func union(groups ...[]Permission) []Permission {
	seen := map[Permission]struct{}{}
	var out []Permission
	for _, g := range groups {
		for _, p := range g {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var SystemRoles = map[Role]RoleDefinition{
	RoleViewer: {
		Name:        "Observador",
		Description: "Solo lectura de leads, ventas y métricas",
		Permissions: union(capReadCRM),
	},
	RoleCRMUser: {
		Name:        "Usuario CRM",
		Description: "Gestiona leads y registra ventas y pagos",
		Permissions: union(capReadCRM, capWriteCRM),
	},
	RoleAdmin: {
		Name:        "Administrador",
		Description: "Gestiona accesos al curso, enlaces de anuncios y contenido",
		Permissions: union(capReadCRM, capWriteCRM, capOperations),
	},
	RoleSuperAdmin: {
		Name:        "Super administrador",
		Description: "Acceso total, incluida la gestión de usuarios",
		Permissions: union(capReadCRM, capWriteCRM, capOperations, capUserAdmin),
	},
}

// GetUserPermissions returns the custom override when present, else the role's set.
func GetUserPermissions(u *UserProfile) []Permission {
	if u == nil {
		return nil
	}
	if len(u.Permissions) > 0 {
		return u.Permissions
	}
	return SystemRoles[u.Role].Permissions
}

func HasPermission(u *UserProfile, perm Permission) bool {
	if u == nil || !u.IsActive {
		return false
	}
	for _, p := range GetUserPermissions(u) {
		if p == perm {
			return true
		}
	}
	return false
}

func HasAnyPermission(u *UserProfile, perms ...Permission) bool {
	for _, p := range perms {
		if HasPermission(u, p) {
			return true
		}
	}
	return false
}

func HasAllPermissions(u *UserProfile, perms ...Permission) bool {
	if u == nil || !u.IsActive {
		return false
	}
	for _, p := range perms {
		if !HasPermission(u, p) {
			return false
		}
	}
	return true
}
