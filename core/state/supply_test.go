package state

import (
	"math/big"
	"testing"

	"milkchain/storage"
)

func TestAdjustTokenSupply(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()

	manager := NewManager(db)

	total, err := manager.TokenSupply("MILK")
	if err != nil {
		t.Fatalf("initial supply: %v", err)
	}
	if total.Sign() != 0 {
		t.Fatalf("expected zero supply, got %s", total)
	}

	updated, err := manager.AdjustTokenSupply("milk", big.NewInt(1000))
	if err != nil {
		t.Fatalf("adjust supply: %v", err)
	}
	if updated.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("unexpected supply after mint: %s", updated)
	}

	updated, err = manager.AdjustTokenSupply("MILK", big.NewInt(-250))
	if err != nil {
		t.Fatalf("burn supply: %v", err)
	}
	if updated.Cmp(big.NewInt(750)) != 0 {
		t.Fatalf("unexpected supply after burn: %s", updated)
	}

	if _, err = manager.AdjustTokenSupply("MILK", big.NewInt(-1000)); err == nil {
		t.Fatalf("expected underflow protection")
	}
	if _, err = manager.TokenSupply("  "); err == nil {
		t.Fatalf("expected empty symbol to be rejected")
	}
}

func TestBalancesRejectNegativeAndDropZero(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	addr := []byte{0x01, 0x02}

	if err := manager.SetBalance(addr, "MILK", big.NewInt(-1)); err == nil {
		t.Fatalf("expected negative balance to be rejected")
	}
	if err := manager.SetBalance(addr, "milk", big.NewInt(42)); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	got, err := manager.Balance(addr, "MILK")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if got.Cmp(big.NewInt(42)) != 0 {
		t.Fatalf("unexpected balance %s", got)
	}
	if err := manager.SetBalance(addr, "MILK", big.NewInt(0)); err != nil {
		t.Fatalf("zero balance: %v", err)
	}
	if _, err := manager.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	got, err = manager.Balance(addr, "MILK")
	if err != nil {
		t.Fatalf("balance after commit: %v", err)
	}
	if got.Sign() != 0 {
		t.Fatalf("expected zero balance, got %s", got)
	}
}
