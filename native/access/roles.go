package access

import (
	"encoding/hex"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Role identifies a capability. Roles are the keccak256 digest of their
// canonical name, except DefaultAdminRole which is the zero hash.
type Role [32]byte

// RoleID derives the identifier for the provided canonical role name.
func RoleID(name string) Role {
	return Role(ethcrypto.Keccak256Hash([]byte(name)))
}

var (
	// DefaultAdminRole administers every role that has no explicit admin.
	DefaultAdminRole = Role{}
	AdminRole        = RoleID("ADMIN_ROLE")
	MasterRole       = RoleID("MASTER_ROLE")
	DepositorRole    = RoleID("DEPOSITOR_ROLE")
	ContractRole     = RoleID("CONTRACT_ROLE")
)

var knownRoles = map[Role]string{
	DefaultAdminRole: "DEFAULT_ADMIN_ROLE",
	AdminRole:        "ADMIN_ROLE",
	MasterRole:       "MASTER_ROLE",
	DepositorRole:    "DEPOSITOR_ROLE",
	ContractRole:     "CONTRACT_ROLE",
}

// ParseRole resolves a canonical role name to its identifier. Unknown names
// are hashed so custom roles remain addressable.
func ParseRole(name string) Role {
	for role, known := range knownRoles {
		if known == name {
			return role
		}
	}
	return RoleID(name)
}

// Name returns the canonical name for well-known roles and an empty string
// otherwise.
func (r Role) Name() string {
	return knownRoles[r]
}

func (r Role) Hex() string {
	return "0x" + hex.EncodeToString(r[:])
}

func (r Role) String() string {
	if name := r.Name(); name != "" {
		return name
	}
	return r.Hex()
}
