package crypto

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/common"
)

// AddressPrefix defines the human-readable prefix used for bech32 accounts.
type AddressPrefix string

const MilkPrefix AddressPrefix = "milk"

// Address represents a 20-byte account with a specific bech32 prefix.
type Address struct {
	prefix AddressPrefix
	bytes  [20]byte
}

func NewAddress(prefix AddressPrefix, b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, fmt.Errorf("address must be 20 bytes long, got %d", len(b))
	}
	var out Address
	out.prefix = prefix
	copy(out.bytes[:], b)
	return out, nil
}

func MustNewAddress(prefix AddressPrefix, b []byte) Address {
	addr, err := NewAddress(prefix, b)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

func (a Address) Bytes() [20]byte {
	return a.bytes
}

func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("error converting bits: %w", err)
	}
	return NewAddress(AddressPrefix(prefix), conv)
}

// ParseAccount accepts either a 0x-prefixed hex account or a bech32 account
// and returns its raw bytes.
func ParseAccount(s string) ([20]byte, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return [20]byte{}, fmt.Errorf("account must not be empty")
	}
	if common.IsHexAddress(trimmed) {
		return common.HexToAddress(trimmed), nil
	}
	addr, err := DecodeAddress(trimmed)
	if err != nil {
		return [20]byte{}, fmt.Errorf("account %q: %w", trimmed, err)
	}
	return addr.Bytes(), nil
}

// FormatAccount renders raw account bytes as checksummed hex.
func FormatAccount(addr [20]byte) string {
	return common.Address(addr).Hex()
}

// FormatBech32 renders raw account bytes with the milk bech32 prefix.
func FormatBech32(addr [20]byte) string {
	return MustNewAddress(MilkPrefix, addr[:]).String()
}

// ModuleAddress derives the deterministic account owned by a native module.
func ModuleAddress(name string) [20]byte {
	return common.BytesToAddress(Keccak([]byte("module/" + strings.TrimSpace(name))))
}
