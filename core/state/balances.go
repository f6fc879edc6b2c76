package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
)

var balancePrefix = []byte("balance:")

func balanceKey(addr []byte, symbol string) []byte {
	buf := make([]byte, len(balancePrefix)+len(symbol)+1+len(addr))
	copy(buf, balancePrefix)
	copy(buf[len(balancePrefix):], symbol)
	buf[len(balancePrefix)+len(symbol)] = ':'
	copy(buf[len(balancePrefix)+len(symbol)+1:], addr)
	return kvKey(buf)
}

// SetBalance stores an account balance for the provided token. Zero balances
// are removed from state.
func (m *Manager) SetBalance(addr []byte, symbol string, amount *big.Int) error {
	if len(addr) == 0 {
		return fmt.Errorf("address must not be empty")
	}
	if amount == nil {
		amount = big.NewInt(0)
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("negative balance not allowed")
	}
	normalized, err := normalizeSymbol(symbol)
	if err != nil {
		return err
	}
	key := balanceKey(addr, normalized)
	if amount.Sign() == 0 {
		m.remove(key)
		return nil
	}
	encoded, err := rlp.EncodeToBytes(amount)
	if err != nil {
		return err
	}
	m.update(key, encoded)
	return nil
}

// Balance retrieves a token balance for the provided account and token.
func (m *Manager) Balance(addr []byte, symbol string) (*big.Int, error) {
	normalized, err := normalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	data, err := m.get(balanceKey(addr, normalized))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return big.NewInt(0), nil
	}
	amount := new(big.Int)
	if err := rlp.DecodeBytes(data, amount); err != nil {
		return nil, err
	}
	return amount, nil
}
