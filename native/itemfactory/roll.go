package itemfactory

import (
	"math/big"

	"github.com/holiman/uint256"

	"milkchain/crypto"
	"milkchain/native/rewards"
)

// claimSeed hashes the 32-byte big-endian encodings of account, timestamp and
// nonce. The result is fully determined by its inputs, so anyone can reproduce
// a claim and, by the same token, predict it before submitting.
func claimSeed(account [20]byte, timestamp, nonce uint64) [32]byte {
	var acct, ts, n [32]byte
	copy(acct[12:], account[:])
	uint256.NewInt(timestamp).WriteToArray32(&ts)
	uint256.NewInt(nonce).WriteToArray32(&n)
	var seed [32]byte
	copy(seed[:], crypto.Keccak(acct[:], ts[:], n[:]))
	return seed
}

// rollFromSeed reduces the seed into [0, maxRoll).
func rollFromSeed(seed [32]byte, maxRoll uint64) uint64 {
	if maxRoll == 0 {
		return 0
	}
	v := new(uint256.Int).SetBytes32(seed[:])
	return v.Mod(v, uint256.NewInt(maxRoll)).Uint64()
}

// categorySeed derives an independent stream for a reward category.
func categorySeed(seed [32]byte, category rewards.Category, salt byte) [32]byte {
	var out [32]byte
	copy(out[:], crypto.Keccak(seed[:], []byte{byte(category), salt}))
	return out
}

// drawInRange picks a value in [min, max] from the seed.
func drawInRange(seed [32]byte, min, max *big.Int) *big.Int {
	span := new(big.Int).Sub(max, min)
	span.Add(span, big.NewInt(1))
	offset := new(big.Int).SetBytes(seed[:])
	offset.Mod(offset, span)
	return offset.Add(offset, min)
}

// pickIndex selects an index into a list of length n from the seed.
func pickIndex(seed [32]byte, n int) int {
	if n <= 1 {
		return 0
	}
	v := new(uint256.Int).SetBytes32(seed[:])
	return int(v.Mod(v, uint256.NewInt(uint64(n))).Uint64())
}
