package milk

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"milkchain/core/events"
	"milkchain/crypto"
	"milkchain/native/access"
	nativecommon "milkchain/native/common"
)

const (
	// ModuleName scopes the ledger's access registry, pauses and module
	// account.
	ModuleName = "milk"

	DefaultName     = "Milk"
	DefaultSymbol   = "MILK"
	DefaultDecimals = uint8(18)
)

var metadataKey = []byte("milk/metadata")

type ledgerState interface {
	Balance(addr []byte, symbol string) (*big.Int, error)
	SetBalance(addr []byte, symbol string, amount *big.Int) error
	TokenSupply(symbol string) (*big.Int, error)
	AdjustTokenSupply(symbol string, delta *big.Int) (*big.Int, error)
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
}

// Metadata describes the fungible token served by the ledger.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

func (m Metadata) normalized() Metadata {
	out := Metadata{
		Name:     strings.TrimSpace(m.Name),
		Symbol:   strings.ToUpper(strings.TrimSpace(m.Symbol)),
		Decimals: m.Decimals,
	}
	if out.Name == "" {
		out.Name = DefaultName
	}
	if out.Symbol == "" {
		out.Symbol = DefaultSymbol
	}
	if out.Decimals == 0 {
		out.Decimals = DefaultDecimals
	}
	return out
}

// Ledger owns MILK balances and total supply. Every mutation validates all of
// its inputs before writing, so a rejected call leaves state untouched.
type Ledger struct {
	st      ledgerState
	roles   *access.Registry
	meta    Metadata
	address [20]byte
	emitter events.Emitter
	pauses  nativecommon.PauseView
}

// NewLedger creates a ledger backed by the provided state and gated by the
// supplied access registry.
func NewLedger(st ledgerState, roles *access.Registry, meta Metadata) *Ledger {
	return &Ledger{
		st:      st,
		roles:   roles,
		meta:    meta.normalized(),
		address: crypto.ModuleAddress(ModuleName),
		emitter: events.NoopEmitter{},
	}
}

// SetEmitter configures the event emitter used to broadcast ledger updates.
// Passing nil resets the emitter to a no-op implementation.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

func (l *Ledger) SetPauses(p nativecommon.PauseView) {
	if l == nil {
		return
	}
	l.pauses = p
}

// Address is the ledger's own account. Game burns are parked here.
func (l *Ledger) Address() [20]byte { return l.address }

// Roles exposes the registry gating the ledger.
func (l *Ledger) Roles() *access.Registry { return l.roles }

// Initialize grants the deployer DefaultAdminRole and persists the token
// metadata. It may only run once.
func (l *Ledger) Initialize(deployer [20]byte) error {
	if l == nil || l.st == nil {
		return errNilState
	}
	if err := l.roles.Initialize(deployer); err != nil {
		return err
	}
	return l.st.KVPut(metadataKey, &l.meta)
}

// Metadata returns the persisted token metadata, falling back to the
// configured values before initialisation.
func (l *Ledger) Metadata() Metadata {
	if l == nil || l.st == nil {
		return Metadata{}
	}
	var stored Metadata
	ok, err := l.st.KVGet(metadataKey, &stored)
	if err != nil || !ok {
		return l.meta
	}
	return stored
}

func (l *Ledger) symbol() string { return l.meta.Symbol }

// BalanceOf returns the balance held by account.
func (l *Ledger) BalanceOf(account [20]byte) (*big.Int, error) {
	if l == nil || l.st == nil {
		return nil, errNilState
	}
	return l.st.Balance(account[:], l.symbol())
}

// TotalSupply returns the sum of all balances.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	if l == nil || l.st == nil {
		return nil, errNilState
	}
	return l.st.TokenSupply(l.symbol())
}

// Allowance returns the amount spender may move on behalf of owner.
func (l *Ledger) Allowance(owner, spender [20]byte) (*big.Int, error) {
	if l == nil || l.st == nil {
		return nil, errNilState
	}
	stored := new(big.Int)
	ok, err := l.st.KVGet(allowanceKey(owner, spender), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return stored, nil
}

// Deposit mints the amount carried by an ABI encoded bridge payload. The
// caller must hold DEPOSITOR_ROLE.
func (l *Ledger) Deposit(caller, to [20]byte, payload []byte) error {
	if err := l.gate(access.DepositorRole, caller); err != nil {
		return err
	}
	amount, err := DecodeDeposit(payload)
	if err != nil {
		return err
	}
	return l.mint(events.SupplyDeposit, to, amount)
}

// Mint creates tokens for to. The caller must hold MASTER_ROLE.
func (l *Ledger) Mint(caller, to [20]byte, amount *big.Int) error {
	if err := l.gate(access.MasterRole, caller); err != nil {
		return err
	}
	return l.mint(events.SupplyMint, to, amount)
}

// GameMint creates tokens for to on behalf of a game contract. The caller
// must hold CONTRACT_ROLE.
func (l *Ledger) GameMint(caller, to [20]byte, amount *big.Int) error {
	if err := l.gate(access.ContractRole, caller); err != nil {
		return err
	}
	return l.mint(events.SupplyGameMint, to, amount)
}

// GameBurn moves tokens from owner into the ledger account. Supply is
// unchanged. The caller must hold CONTRACT_ROLE.
func (l *Ledger) GameBurn(caller, owner [20]byte, amount *big.Int) error {
	if err := l.gate(access.ContractRole, caller); err != nil {
		return err
	}
	return l.transfer("game burn", owner, l.address, amount)
}

// GameWithdraw destroys tokens held by owner. The caller must hold
// CONTRACT_ROLE.
func (l *Ledger) GameWithdraw(caller, owner [20]byte, amount *big.Int) error {
	if err := l.gate(access.ContractRole, caller); err != nil {
		return err
	}
	return l.burn(events.SupplyGameWithdraw, owner, amount)
}

// GameTransferFrom moves tokens between two players without an allowance. The
// caller must hold CONTRACT_ROLE.
func (l *Ledger) GameTransferFrom(caller, from, to [20]byte, amount *big.Int) error {
	if err := l.gate(access.ContractRole, caller); err != nil {
		return err
	}
	return l.transfer("game transfer", from, to, amount)
}

// Withdraw destroys tokens from the caller's own balance.
func (l *Ledger) Withdraw(caller [20]byte, amount *big.Int) error {
	if err := l.guard(); err != nil {
		return err
	}
	return l.burn(events.SupplyWithdraw, caller, amount)
}

// Transfer moves tokens from the caller to to.
func (l *Ledger) Transfer(caller, to [20]byte, amount *big.Int) error {
	if err := l.guard(); err != nil {
		return err
	}
	return l.transfer("transfer", caller, to, amount)
}

// Approve sets the allowance spender may draw from the caller.
func (l *Ledger) Approve(caller, spender [20]byte, amount *big.Int) error {
	if err := l.guard(); err != nil {
		return err
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	if caller == ([20]byte{}) {
		return &ZeroAddressError{Op: "approve", Side: SideSender}
	}
	if spender == ([20]byte{}) {
		return &ZeroAddressError{Op: "approve", Side: SideSpender}
	}
	if err := l.writeAllowance(caller, spender, amount); err != nil {
		return err
	}
	l.emitter.Emit(events.Approval{Asset: l.symbol(), Owner: caller, Spender: spender, Amount: new(big.Int).Set(amount)})
	return nil
}

// TransferFrom moves tokens from from to to using the caller's allowance.
func (l *Ledger) TransferFrom(caller, from, to [20]byte, amount *big.Int) error {
	if err := l.guard(); err != nil {
		return err
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	allowance, err := l.Allowance(from, caller)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return &InsufficientAllowanceError{Owner: from, Spender: caller, Required: new(big.Int).Set(amount), Available: allowance}
	}
	if err := l.transfer("transfer", from, to, amount); err != nil {
		return err
	}
	return l.writeAllowance(from, caller, new(big.Int).Sub(allowance, amount))
}

func (l *Ledger) guard() error {
	if l == nil || l.st == nil {
		return errNilState
	}
	return nativecommon.Guard(l.pauses, ModuleName)
}

func (l *Ledger) gate(role access.Role, caller [20]byte) error {
	if err := l.guard(); err != nil {
		return err
	}
	return l.roles.Require(role, caller)
}

func (l *Ledger) mint(reason events.SupplyReason, to [20]byte, amount *big.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return &ZeroAddressError{Op: opName(reason), Side: SideRecipient}
	}
	supply, err := l.st.TokenSupply(l.symbol())
	if err != nil {
		return err
	}
	if _, overflow := uint256.FromBig(new(big.Int).Add(supply, amount)); overflow {
		return fmt.Errorf("%w: minting %s onto %s", ErrSupplyOverflow, amount, supply)
	}
	balance, err := l.st.Balance(to[:], l.symbol())
	if err != nil {
		return err
	}
	if err := l.st.SetBalance(to[:], l.symbol(), new(big.Int).Add(balance, amount)); err != nil {
		return err
	}
	total, err := l.st.AdjustTokenSupply(l.symbol(), amount)
	if err != nil {
		return err
	}
	l.emitter.Emit(events.Transfer{Asset: l.symbol(), To: to, Amount: new(big.Int).Set(amount)})
	l.emitter.Emit(events.TokenSupply{Token: l.symbol(), Account: to, Amount: new(big.Int).Set(amount), Total: total, Reason: reason})
	return nil
}

func (l *Ledger) burn(reason events.SupplyReason, owner [20]byte, amount *big.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if owner == ([20]byte{}) {
		return &ZeroAddressError{Op: opName(reason), Side: SideSender}
	}
	balance, err := l.st.Balance(owner[:], l.symbol())
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return &InsufficientBalanceError{Account: owner, Required: new(big.Int).Set(amount), Available: balance}
	}
	if err := l.st.SetBalance(owner[:], l.symbol(), new(big.Int).Sub(balance, amount)); err != nil {
		return err
	}
	total, err := l.st.AdjustTokenSupply(l.symbol(), new(big.Int).Neg(amount))
	if err != nil {
		return err
	}
	l.emitter.Emit(events.Transfer{Asset: l.symbol(), From: owner, Amount: new(big.Int).Set(amount)})
	l.emitter.Emit(events.TokenSupply{Token: l.symbol(), Account: owner, Amount: new(big.Int).Set(amount), Total: total, Reason: reason})
	return nil
}

func opName(reason events.SupplyReason) string {
	return strings.ReplaceAll(string(reason), "_", " ")
}

func (l *Ledger) transfer(op string, from, to [20]byte, amount *big.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if from == ([20]byte{}) {
		return &ZeroAddressError{Op: op, Side: SideSender}
	}
	if to == ([20]byte{}) {
		return &ZeroAddressError{Op: op, Side: SideRecipient}
	}
	fromBalance, err := l.st.Balance(from[:], l.symbol())
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return &InsufficientBalanceError{Account: from, Required: new(big.Int).Set(amount), Available: fromBalance}
	}
	if from != to {
		toBalance, err := l.st.Balance(to[:], l.symbol())
		if err != nil {
			return err
		}
		if err := l.st.SetBalance(from[:], l.symbol(), new(big.Int).Sub(fromBalance, amount)); err != nil {
			return err
		}
		if err := l.st.SetBalance(to[:], l.symbol(), new(big.Int).Add(toBalance, amount)); err != nil {
			return err
		}
	}
	l.emitter.Emit(events.Transfer{Asset: l.symbol(), From: from, To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

func (l *Ledger) writeAllowance(owner, spender [20]byte, amount *big.Int) error {
	key := allowanceKey(owner, spender)
	if amount.Sign() == 0 {
		return l.st.KVDelete(key)
	}
	return l.st.KVPut(key, amount)
}

func allowanceKey(owner, spender [20]byte) []byte {
	key := make([]byte, 0, len("milk/allowance/")+40)
	key = append(key, "milk/allowance/"...)
	key = append(key, owner[:]...)
	return append(key, spender[:]...)
}

func validateAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}
