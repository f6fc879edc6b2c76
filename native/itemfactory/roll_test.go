package itemfactory

import (
	"math/big"
	"testing"
)

func TestRollStaysBelowMax(t *testing.T) {
	account := testAddr(0x42)
	for nonce := uint64(0); nonce < 200; nonce++ {
		seed := claimSeed(account, 1_700_000_000, nonce)
		if roll := rollFromSeed(seed, 100); roll >= 100 {
			t.Fatalf("nonce %d: roll %d out of range", nonce, roll)
		}
	}
	if rollFromSeed(claimSeed(account, 1, 1), 0) != 0 {
		t.Fatalf("zero max roll must yield zero")
	}
}

func TestSeedDependsOnEveryInput(t *testing.T) {
	base := claimSeed(testAddr(0x01), 10, 0)
	if base == claimSeed(testAddr(0x02), 10, 0) {
		t.Fatalf("seed ignores the account")
	}
	if base == claimSeed(testAddr(0x01), 11, 0) {
		t.Fatalf("seed ignores the timestamp")
	}
	if base == claimSeed(testAddr(0x01), 10, 1) {
		t.Fatalf("seed ignores the nonce")
	}
	if base != claimSeed(testAddr(0x01), 10, 0) {
		t.Fatalf("seed is not reproducible")
	}
}

func TestDrawInRangeIsInclusive(t *testing.T) {
	min, max := big.NewInt(3), big.NewInt(3)
	if got := drawInRange(claimSeed(testAddr(0x01), 1, 1), min, max); got.Cmp(min) != 0 {
		t.Fatalf("degenerate range should yield its bound, got %s", got)
	}
	min, max = big.NewInt(1), big.NewInt(5)
	for nonce := uint64(0); nonce < 100; nonce++ {
		got := drawInRange(claimSeed(testAddr(0x01), 1, nonce), min, max)
		if got.Cmp(min) < 0 || got.Cmp(max) > 0 {
			t.Fatalf("draw %s outside [1, 5]", got)
		}
	}
	if idx := pickIndex(claimSeed(testAddr(0x01), 1, 1), 1); idx != 0 {
		t.Fatalf("single element list must pick index 0")
	}
}
