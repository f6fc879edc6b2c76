package access

import (
	"bytes"
	"errors"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"milkchain/core/events"
	"milkchain/core/state"
	"milkchain/storage"
)

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

func newTestRegistry(t *testing.T) (*Registry, *events.Recorder, [20]byte) {
	t.Helper()
	mgr := state.NewManager(storage.NewMemDB())
	reg := NewRegistry(mgr, "milk")
	rec := &events.Recorder{}
	reg.SetEmitter(rec)
	deployer := newTestAddress(0x01)
	if err := reg.Initialize(deployer); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return reg, rec, deployer
}

func TestRoleIdentifiersMatchKeccakOfName(t *testing.T) {
	cases := map[string]Role{
		"ADMIN_ROLE":     AdminRole,
		"MASTER_ROLE":    MasterRole,
		"DEPOSITOR_ROLE": DepositorRole,
		"CONTRACT_ROLE":  ContractRole,
	}
	for name, role := range cases {
		want := ethcrypto.Keccak256([]byte(name))
		if !bytes.Equal(role[:], want) {
			t.Fatalf("%s: unexpected id %s", name, role.Hex())
		}
		if role.Name() != name || ParseRole(name) != role {
			t.Fatalf("%s: name round trip failed", name)
		}
	}
	if DefaultAdminRole != (Role{}) {
		t.Fatalf("default admin role must be the zero hash")
	}
	if ParseRole("CUSTOM_ROLE") != RoleID("CUSTOM_ROLE") {
		t.Fatalf("custom roles should hash their name")
	}
}

func TestInitializeOnlyOnce(t *testing.T) {
	reg, _, deployer := newTestRegistry(t)
	if !reg.HasRole(DefaultAdminRole, deployer) {
		t.Fatalf("deployer should hold the default admin role")
	}
	if !reg.Initialized() {
		t.Fatalf("registry should report initialization")
	}
	if err := reg.Initialize(newTestAddress(0x02)); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestGrantRequiresAdminAndIsIdempotent(t *testing.T) {
	reg, rec, deployer := newTestRegistry(t)
	depositor := newTestAddress(0x02)
	outsider := newTestAddress(0x03)

	err := reg.GrantRole(outsider, DepositorRole, depositor)
	var unauthorized *UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected UnauthorizedError, got %v", err)
	}
	if unauthorized.Role != DefaultAdminRole || unauthorized.Account != outsider {
		t.Fatalf("unexpected error detail: %+v", unauthorized)
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected error to unwrap to ErrUnauthorized")
	}
	if reg.HasRole(DepositorRole, depositor) {
		t.Fatalf("failed grant must not add membership")
	}

	before := len(rec.OfType(events.TypeRoleGranted))
	if err := reg.GrantRole(deployer, DepositorRole, depositor); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := reg.GrantRole(deployer, DepositorRole, depositor); err != nil {
		t.Fatalf("repeat grant should be a no-op, got %v", err)
	}
	if got := len(rec.OfType(events.TypeRoleGranted)) - before; got != 1 {
		t.Fatalf("expected a single grant event, got %d", got)
	}
	members, err := reg.Members(DepositorRole)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0] != depositor {
		t.Fatalf("unexpected members: %v", members)
	}
}

func TestRevokeAndRenounce(t *testing.T) {
	reg, rec, deployer := newTestRegistry(t)
	master := newTestAddress(0x04)

	if err := reg.GrantRole(deployer, MasterRole, master); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := reg.RevokeRole(master, MasterRole, master); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-admin revoke should fail, got %v", err)
	}
	if err := reg.RevokeRole(deployer, MasterRole, master); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if reg.HasRole(MasterRole, master) {
		t.Fatalf("role should be revoked")
	}
	if len(rec.OfType(events.TypeRoleRevoked)) != 1 {
		t.Fatalf("expected revoke event")
	}

	if err := reg.GrantRole(deployer, MasterRole, master); err != nil {
		t.Fatalf("regrant: %v", err)
	}
	if err := reg.RenounceRole(deployer, MasterRole, master); !errors.Is(err, ErrRenounceForOther) {
		t.Fatalf("expected ErrRenounceForOther, got %v", err)
	}
	if err := reg.RenounceRole(master, MasterRole, master); err != nil {
		t.Fatalf("renounce: %v", err)
	}
	if reg.HasRole(MasterRole, master) {
		t.Fatalf("role should be renounced")
	}
}

func TestSetRoleAdminDelegatesGrants(t *testing.T) {
	reg, rec, deployer := newTestRegistry(t)
	admin := newTestAddress(0x05)
	contract := newTestAddress(0x06)

	if err := reg.GrantRole(deployer, AdminRole, admin); err != nil {
		t.Fatalf("grant admin: %v", err)
	}
	if err := reg.SetRoleAdmin(admin, ContractRole, AdminRole); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("only the current admin may change the admin role, got %v", err)
	}
	if err := reg.SetRoleAdmin(deployer, ContractRole, AdminRole); err != nil {
		t.Fatalf("set role admin: %v", err)
	}
	current, err := reg.RoleAdmin(ContractRole)
	if err != nil || current != AdminRole {
		t.Fatalf("unexpected role admin %s (%v)", current, err)
	}
	if len(rec.OfType(events.TypeRoleAdminChanged)) != 1 {
		t.Fatalf("expected admin changed event")
	}

	if err := reg.GrantRole(deployer, ContractRole, contract); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("default admin no longer administers CONTRACT_ROLE, got %v", err)
	}
	if err := reg.GrantRole(admin, ContractRole, contract); err != nil {
		t.Fatalf("delegated grant: %v", err)
	}
	if !reg.HasRole(ContractRole, contract) {
		t.Fatalf("contract role should be granted")
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	mgr := state.NewManager(storage.NewMemDB())
	milk := NewRegistry(mgr, "milk")
	factory := NewRegistry(mgr, "itemfactory")
	deployer := newTestAddress(0x01)

	if err := milk.Initialize(deployer); err != nil {
		t.Fatalf("init milk: %v", err)
	}
	if factory.HasRole(DefaultAdminRole, deployer) {
		t.Fatalf("roles must not leak across namespaces")
	}
	if err := factory.Initialize(deployer); err != nil {
		t.Fatalf("init factory: %v", err)
	}
	if err := milk.GrantRole(deployer, ContractRole, newTestAddress(0x07)); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if factory.HasRole(ContractRole, newTestAddress(0x07)) {
		t.Fatalf("grant in one namespace must not affect another")
	}
}
