package access

import (
	"fmt"
	"strings"

	"milkchain/core/events"
)

type registryState interface {
	SetRole(role string, addr []byte) (bool, error)
	RemoveRole(role string, addr []byte) (bool, error)
	HasRole(role string, addr []byte) bool
	RoleMembers(role string) ([][]byte, error)
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// Registry owns role membership for a single namespace. Every gated operation
// elsewhere consults it through HasRole or Require before touching state.
type Registry struct {
	st        registryState
	namespace string
	emitter   events.Emitter
}

// NewRegistry creates a registry scoped to the provided namespace and backed by
// the supplied state manager.
func NewRegistry(st registryState, namespace string) *Registry {
	return &Registry{
		st:        st,
		namespace: strings.TrimSpace(namespace),
		emitter:   events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter used to broadcast membership
// changes. Passing nil resets the emitter to a no-op implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// Namespace returns the scope this registry guards.
func (r *Registry) Namespace() string { return r.namespace }

func (r *Registry) memberKey(role Role) string {
	return r.namespace + "/" + role.Hex()
}

func (r *Registry) adminKey(role Role) []byte {
	return []byte("access/" + r.namespace + "/admin/" + role.Hex())
}

func (r *Registry) initKey() []byte {
	return []byte("access/" + r.namespace + "/initialized")
}

// Initialize grants DefaultAdminRole to the deploying account. It may only run
// once per namespace.
func (r *Registry) Initialize(admin [20]byte) error {
	if r == nil || r.st == nil {
		return errNilState
	}
	done, err := r.st.KVGet(r.initKey(), nil)
	if err != nil {
		return err
	}
	if done {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, r.namespace)
	}
	if err := r.grant(DefaultAdminRole, admin, admin); err != nil {
		return err
	}
	return r.st.KVPut(r.initKey(), true)
}

// Initialized reports whether Initialize has run for this namespace.
func (r *Registry) Initialized() bool {
	if r == nil || r.st == nil {
		return false
	}
	done, err := r.st.KVGet(r.initKey(), nil)
	return err == nil && done
}

// HasRole reports whether the account holds the role.
func (r *Registry) HasRole(role Role, account [20]byte) bool {
	if r == nil || r.st == nil {
		return false
	}
	return r.st.HasRole(r.memberKey(role), account[:])
}

// Require returns an *UnauthorizedError when the account lacks the role.
func (r *Registry) Require(role Role, account [20]byte) error {
	if r == nil || r.st == nil {
		return errNilState
	}
	if !r.HasRole(role, account) {
		return &UnauthorizedError{Namespace: r.namespace, Account: account, Role: role}
	}
	return nil
}

// RoleAdmin returns the role whose holders may grant and revoke the provided
// role.
func (r *Registry) RoleAdmin(role Role) (Role, error) {
	if r == nil || r.st == nil {
		return Role{}, errNilState
	}
	var stored [32]byte
	ok, err := r.st.KVGet(r.adminKey(role), &stored)
	if err != nil {
		return Role{}, err
	}
	if !ok {
		return DefaultAdminRole, nil
	}
	return Role(stored), nil
}

func (r *Registry) requireAdmin(role Role, caller [20]byte) error {
	admin, err := r.RoleAdmin(role)
	if err != nil {
		return err
	}
	return r.Require(admin, caller)
}

// GrantRole adds the account to the role. The caller must hold the role's
// admin role. Granting a role that is already held is a no-op.
func (r *Registry) GrantRole(caller [20]byte, role Role, account [20]byte) error {
	if err := r.requireAdmin(role, caller); err != nil {
		return err
	}
	return r.grant(role, account, caller)
}

// RevokeRole removes the account from the role. The caller must hold the
// role's admin role. Revoking a role that is not held is a no-op.
func (r *Registry) RevokeRole(caller [20]byte, role Role, account [20]byte) error {
	if err := r.requireAdmin(role, caller); err != nil {
		return err
	}
	return r.revoke(role, account, caller)
}

// RenounceRole lets an account drop one of its own roles.
func (r *Registry) RenounceRole(caller [20]byte, role Role, account [20]byte) error {
	if r == nil || r.st == nil {
		return errNilState
	}
	if caller != account {
		return ErrRenounceForOther
	}
	return r.revoke(role, account, caller)
}

// SetRoleAdmin replaces the admin role of role. The caller must hold the
// current admin role.
func (r *Registry) SetRoleAdmin(caller [20]byte, role, admin Role) error {
	previous, err := r.RoleAdmin(role)
	if err != nil {
		return err
	}
	if err := r.Require(previous, caller); err != nil {
		return err
	}
	if err := r.st.KVPut(r.adminKey(role), [32]byte(admin)); err != nil {
		return err
	}
	r.emitter.Emit(events.RoleAdminChanged{
		Namespace:     r.namespace,
		Role:          role,
		PreviousAdmin: previous,
		NewAdmin:      admin,
	})
	return nil
}

// Members lists the accounts holding the role in ascending byte order.
func (r *Registry) Members(role Role) ([][20]byte, error) {
	if r == nil || r.st == nil {
		return nil, errNilState
	}
	raw, err := r.st.RoleMembers(r.memberKey(role))
	if err != nil {
		return nil, err
	}
	out := make([][20]byte, 0, len(raw))
	for _, member := range raw {
		var addr [20]byte
		copy(addr[:], member)
		out = append(out, addr)
	}
	return out, nil
}

func (r *Registry) grant(role Role, account, sender [20]byte) error {
	changed, err := r.st.SetRole(r.memberKey(role), account[:])
	if err != nil {
		return err
	}
	if changed {
		r.emitter.Emit(events.RoleGranted{
			Namespace: r.namespace,
			Role:      role,
			RoleName:  role.Name(),
			Account:   account,
			Sender:    sender,
		})
	}
	return nil
}

func (r *Registry) revoke(role Role, account, sender [20]byte) error {
	changed, err := r.st.RemoveRole(r.memberKey(role), account[:])
	if err != nil {
		return err
	}
	if changed {
		r.emitter.Emit(events.RoleRevoked{
			Namespace: r.namespace,
			Role:      role,
			RoleName:  role.Name(),
			Account:   account,
			Sender:    sender,
		})
	}
	return nil
}
