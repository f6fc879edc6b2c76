package itemfactory

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"milkchain/core/events"
	"milkchain/native/access"
)

var uriKey = []byte("itemfactory/uri")

func itemIDBytes(id *big.Int) []byte {
	var buf [32]byte
	id.FillBytes(buf[:])
	return buf[:]
}

func itemBalanceKey(account [20]byte, id *big.Int) []byte {
	key := append([]byte("itemfactory/balance/"), itemIDBytes(id)...)
	return append(key, account[:]...)
}

func itemSupplyKey(id *big.Int) []byte {
	return append([]byte("itemfactory/supply/"), itemIDBytes(id)...)
}

func operatorKey(owner, operator [20]byte) []byte {
	key := append([]byte("itemfactory/operator/"), owner[:]...)
	return append(key, operator[:]...)
}

func validateItemID(id *big.Int) error {
	if id == nil || id.Sign() < 0 {
		return fmt.Errorf("%w: item id", ErrInvalidAmount)
	}
	if _, overflow := uint256.FromBig(id); overflow {
		return fmt.Errorf("%w: item id exceeds 256 bits", ErrInvalidAmount)
	}
	return nil
}

func validateQuantity(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e *Engine) readBig(key []byte) (*big.Int, error) {
	out := new(big.Int)
	ok, err := e.st.KVGet(key, out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return out, nil
}

func (e *Engine) writeBig(key []byte, v *big.Int) error {
	if v.Sign() == 0 {
		return e.st.KVDelete(key)
	}
	return e.st.KVPut(key, v)
}

// ItemBalance returns how many units of item id the account holds.
func (e *Engine) ItemBalance(account [20]byte, id *big.Int) (*big.Int, error) {
	if e == nil || e.st == nil {
		return nil, errNilState
	}
	if err := validateItemID(id); err != nil {
		return nil, err
	}
	return e.readBig(itemBalanceKey(account, id))
}

// ItemSupply returns the number of units of item id in circulation.
func (e *Engine) ItemSupply(id *big.Int) (*big.Int, error) {
	if e == nil || e.st == nil {
		return nil, errNilState
	}
	if err := validateItemID(id); err != nil {
		return nil, err
	}
	return e.readBig(itemSupplyKey(id))
}

// URI returns the metadata URI template shared by every item. Clients
// substitute the hex encoded id for the "{id}" placeholder.
func (e *Engine) URI(*big.Int) string {
	if e == nil || e.st == nil {
		return ""
	}
	var stored string
	ok, err := e.st.KVGet(uriKey, &stored)
	if err != nil || !ok {
		return e.uri
	}
	return stored
}

// SetURI replaces the metadata URI. The caller must hold ADMIN_ROLE.
func (e *Engine) SetURI(caller [20]byte, uri string) error {
	if err := e.gate(access.AdminRole, caller); err != nil {
		return err
	}
	uri = strings.TrimSpace(uri)
	if err := e.st.KVPut(uriKey, uri); err != nil {
		return err
	}
	e.emitter.Emit(events.URIUpdated{URI: uri, Sender: caller})
	return nil
}

// IsApprovedForAll reports whether operator may move every item owned by
// owner.
func (e *Engine) IsApprovedForAll(owner, operator [20]byte) (bool, error) {
	if e == nil || e.st == nil {
		return false, errNilState
	}
	var approved bool
	if _, err := e.st.KVGet(operatorKey(owner, operator), &approved); err != nil {
		return false, err
	}
	return approved, nil
}

// SetApprovalForAll toggles operator's permission over the caller's items.
func (e *Engine) SetApprovalForAll(caller, operator [20]byte, approved bool) error {
	if err := e.guard(); err != nil {
		return err
	}
	if caller == operator {
		return ErrSelfApproval
	}
	if operator == ([20]byte{}) {
		return fmt.Errorf("%w: operator", ErrZeroAddress)
	}
	key := operatorKey(caller, operator)
	var err error
	if approved {
		err = e.st.KVPut(key, true)
	} else {
		err = e.st.KVDelete(key)
	}
	if err != nil {
		return err
	}
	e.emitter.Emit(events.ItemApproval{Owner: caller, Operator: operator, Approved: approved})
	return nil
}

// SafeTransferFrom moves amount units of item id from from to to. The caller
// must be from or an operator approved by from.
func (e *Engine) SafeTransferFrom(caller, from, to [20]byte, id, amount *big.Int) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := validateItemID(id); err != nil {
		return err
	}
	if err := validateQuantity(amount); err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return fmt.Errorf("%w: recipient", ErrZeroAddress)
	}
	if caller != from {
		approved, err := e.IsApprovedForAll(from, caller)
		if err != nil {
			return err
		}
		if !approved {
			return ErrNotOwnerNorApproved
		}
	}
	fromBalance, err := e.readBig(itemBalanceKey(from, id))
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientItems, fromBalance, amount)
	}
	if from != to {
		toBalance, err := e.readBig(itemBalanceKey(to, id))
		if err != nil {
			return err
		}
		if err := e.writeBig(itemBalanceKey(from, id), new(big.Int).Sub(fromBalance, amount)); err != nil {
			return err
		}
		if err := e.writeBig(itemBalanceKey(to, id), new(big.Int).Add(toBalance, amount)); err != nil {
			return err
		}
	}
	e.emitter.Emit(events.ItemTransfer{Operator: caller, From: from, To: to, ID: new(big.Int).Set(id), Amount: new(big.Int).Set(amount)})
	return nil
}

// checkItemMint validates a mint without writing anything.
func (e *Engine) checkItemMint(to [20]byte, id, amount *big.Int) error {
	if err := validateItemID(id); err != nil {
		return err
	}
	if err := validateQuantity(amount); err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return fmt.Errorf("%w: recipient", ErrZeroAddress)
	}
	supply, err := e.readBig(itemSupplyKey(id))
	if err != nil {
		return err
	}
	if _, overflow := uint256.FromBig(new(big.Int).Add(supply, amount)); overflow {
		return ErrItemSupplyOverflow
	}
	return nil
}

func (e *Engine) mintItem(to [20]byte, id, amount *big.Int) error {
	if err := e.checkItemMint(to, id, amount); err != nil {
		return err
	}
	supply, err := e.readBig(itemSupplyKey(id))
	if err != nil {
		return err
	}
	balance, err := e.readBig(itemBalanceKey(to, id))
	if err != nil {
		return err
	}
	if err := e.writeBig(itemBalanceKey(to, id), new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	if err := e.writeBig(itemSupplyKey(id), new(big.Int).Add(supply, amount)); err != nil {
		return err
	}
	e.emitter.Emit(events.ItemTransfer{Operator: e.address, To: to, ID: new(big.Int).Set(id), Amount: new(big.Int).Set(amount)})
	return nil
}
