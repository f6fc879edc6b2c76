package events

import "milkchain/core/types"

const (
	// TypeRoleGranted is emitted when an account joins a role.
	TypeRoleGranted = "access.role.granted"
	// TypeRoleRevoked is emitted when an account leaves a role, either through
	// revocation or renunciation.
	TypeRoleRevoked = "access.role.revoked"
	// TypeRoleAdminChanged is emitted when the admin role of a role changes.
	TypeRoleAdminChanged = "access.role.admin_changed"
)

// RoleGranted captures a new role membership within a registry namespace.
type RoleGranted struct {
	Namespace string
	Role      [32]byte
	RoleName  string
	Account   [20]byte
	Sender    [20]byte
}

func (RoleGranted) EventType() string { return TypeRoleGranted }

func (e RoleGranted) Event() *types.Event {
	return &types.Event{Type: TypeRoleGranted, Attributes: roleAttributes(e.Namespace, e.Role, e.RoleName, e.Account, e.Sender)}
}

// RoleRevoked captures a removed role membership.
type RoleRevoked struct {
	Namespace string
	Role      [32]byte
	RoleName  string
	Account   [20]byte
	Sender    [20]byte
}

func (RoleRevoked) EventType() string { return TypeRoleRevoked }

func (e RoleRevoked) Event() *types.Event {
	return &types.Event{Type: TypeRoleRevoked, Attributes: roleAttributes(e.Namespace, e.Role, e.RoleName, e.Account, e.Sender)}
}

type RoleAdminChanged struct {
	Namespace     string
	Role          [32]byte
	PreviousAdmin [32]byte
	NewAdmin      [32]byte
}

func (RoleAdminChanged) EventType() string { return TypeRoleAdminChanged }

func (e RoleAdminChanged) Event() *types.Event {
	return &types.Event{Type: TypeRoleAdminChanged, Attributes: map[string]string{
		"namespace":     e.Namespace,
		"role":          formatHash(e.Role),
		"previousAdmin": formatHash(e.PreviousAdmin),
		"newAdmin":      formatHash(e.NewAdmin),
	}}
}

func roleAttributes(namespace string, role [32]byte, name string, account, sender [20]byte) map[string]string {
	attrs := map[string]string{
		"namespace": namespace,
		"role":      formatHash(role),
		"account":   formatAccount(account),
		"sender":    formatAccount(sender),
	}
	if name != "" {
		attrs["roleName"] = name
	}
	return attrs
}
