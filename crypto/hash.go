package crypto

import ethcrypto "github.com/ethereum/go-ethereum/crypto"

// Keccak returns the keccak256 digest of the concatenated inputs.
func Keccak(data ...[]byte) []byte {
	return ethcrypto.Keccak256(data...)
}
