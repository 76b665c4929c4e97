package token

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidAmount         = errors.New("token: amount must be non-negative")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrUnauthorized          = errors.New("token: caller is not the token authority")
	ErrZeroAddress           = errors.New("token: zero address")
)

// TransferHook observes a transfer before any balance is mutated. The balance
// arguments are the PRE-transfer balances of both parties; returning an error
// aborts the transfer.
type TransferHook func(from, to common.Address, amount, fromBalance, toBalance *big.Int) error

// Token is a minimal fungible ledger. Supply changes are restricted to the
// configured authority; the yield accrual engine is the authority for claim
// tokens, vault simulators for their share tokens.
type Token struct {
	mu sync.RWMutex

	addr      common.Address
	name      string
	symbol    string
	decimals  uint8
	authority common.Address

	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
	hook        TransferHook
}

// New constructs an empty ledger owned by the given authority.
func New(addr common.Address, name, symbol string, decimals uint8, authority common.Address) *Token {
	return &Token{
		addr:        addr,
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		authority:   authority,
		totalSupply: big.NewInt(0),
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
	}
}

func (t *Token) Address() common.Address { return t.addr }
func (t *Token) Name() string            { return t.name }
func (t *Token) Symbol() string          { return t.symbol }
func (t *Token) Decimals() uint8         { return t.decimals }

// TotalSupply returns a copy of the outstanding supply.
func (t *Token) TotalSupply() *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.totalSupply)
}

// BalanceOf returns a copy of the holder's balance, zero when unknown.
func (t *Token) BalanceOf(holder common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if bal, ok := t.balances[holder]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

// SetTransferHook installs the pre-transfer hook. Authority only; installing
// nil clears it.
func (t *Token) SetTransferHook(caller common.Address, hook TransferHook) error {
	if caller != t.authority {
		return ErrUnauthorized
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hook = hook
	return nil
}

// Mint credits freshly created tokens to the recipient. Authority only.
func (t *Token) Mint(caller, to common.Address, amount *big.Int) error {
	if caller != t.authority {
		return ErrUnauthorized
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.credit(to, amount)
	t.totalSupply = new(big.Int).Add(t.totalSupply, amount)
	return nil
}

// Burn destroys tokens held by the holder. Authority only.
func (t *Token) Burn(caller, holder common.Address, amount *big.Int) error {
	if caller != t.authority {
		return ErrUnauthorized
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.debit(holder, amount); err != nil {
		return err
	}
	t.totalSupply = new(big.Int).Sub(t.totalSupply, amount)
	return nil
}

// Transfer moves tokens between holders. The pre-transfer hook, when
// installed, runs with the balances both parties held before this transfer
// and can abort it.
func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}

	t.mu.Lock()
	hook := t.hook
	fromBalance := t.balanceLocked(from)
	toBalance := t.balanceLocked(to)
	t.mu.Unlock()

	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	// The hook runs outside the ledger lock: it calls back into the engine,
	// which reads this token's supply and balances.
	if hook != nil {
		if err := hook(from, to, amount, fromBalance, toBalance); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.debit(from, amount); err != nil {
		return err
	}
	t.credit(to, amount)
	return nil
}

// Approve sets spender's allowance over the owner's balance, replacing any
// previous value.
func (t *Token) Approve(owner, spender common.Address, amount *big.Int) error {
	if spender == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	byOwner, ok := t.allowances[owner]
	if !ok {
		byOwner = make(map[common.Address]*big.Int)
		t.allowances[owner] = byOwner
	}
	byOwner[spender] = new(big.Int).Set(amount)
	return nil
}

// Allowance returns a copy of spender's remaining allowance over owner.
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if byOwner, ok := t.allowances[owner]; ok {
		if amount, ok := byOwner[spender]; ok {
			return new(big.Int).Set(amount)
		}
	}
	return big.NewInt(0)
}

// TransferFrom moves tokens on behalf of the holder, consuming the spender's
// allowance. Runs the pre-transfer hook the same way Transfer does.
func (t *Token) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	if spender != from {
		if t.Allowance(from, spender).Cmp(amount) < 0 {
			return ErrInsufficientAllowance
		}
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	if spender != from {
		t.mu.Lock()
		remaining := new(big.Int).Sub(t.allowances[from][spender], amount)
		t.allowances[from][spender] = remaining
		t.mu.Unlock()
	}
	return nil
}

func (t *Token) balanceLocked(holder common.Address) *big.Int {
	if bal, ok := t.balances[holder]; ok {
		return new(big.Int).Set(bal)
	}
	return big.NewInt(0)
}

func (t *Token) credit(holder common.Address, amount *big.Int) {
	if bal, ok := t.balances[holder]; ok {
		t.balances[holder] = new(big.Int).Add(bal, amount)
		return
	}
	t.balances[holder] = new(big.Int).Set(amount)
}

func (t *Token) debit(holder common.Address, amount *big.Int) error {
	bal, ok := t.balances[holder]
	if !ok || bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	t.balances[holder] = new(big.Int).Sub(bal, amount)
	return nil
}
