package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	testAuthority = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	alice         = common.HexToAddress("0x0000000000000000000000000000000000000001")
	bob           = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

func newTestToken() *Token {
	return New(common.HexToAddress("0x00000000000000000000000000000000000000f0"), "Test Token", "TST", 18, testAuthority)
}

func TestMintRequiresAuthority(t *testing.T) {
	tok := newTestToken()
	if err := tok.Mint(alice, alice, big.NewInt(100)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := tok.Mint(testAuthority, alice, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if got := tok.BalanceOf(alice); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("unexpected balance: %s", got)
	}
	if got := tok.TotalSupply(); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("unexpected supply: %s", got)
	}
}

func TestBurn(t *testing.T) {
	tok := newTestToken()
	if err := tok.Mint(testAuthority, alice, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := tok.Burn(testAuthority, alice, big.NewInt(150)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := tok.Burn(testAuthority, alice, big.NewInt(40)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if got := tok.BalanceOf(alice); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("unexpected balance: %s", got)
	}
	if got := tok.TotalSupply(); got.Cmp(big.NewInt(60)) != 0 {
		t.Fatalf("unexpected supply: %s", got)
	}
}

func TestTransfer(t *testing.T) {
	tok := newTestToken()
	if err := tok.Mint(testAuthority, alice, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := tok.Transfer(alice, bob, big.NewInt(30)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := tok.BalanceOf(alice); got.Cmp(big.NewInt(70)) != 0 {
		t.Fatalf("unexpected sender balance: %s", got)
	}
	if got := tok.BalanceOf(bob); got.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("unexpected recipient balance: %s", got)
	}
	if err := tok.Transfer(alice, bob, big.NewInt(1000)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := tok.Transfer(alice, bob, big.NewInt(0)); err != nil {
		t.Fatalf("zero transfer should be a no-op: %v", err)
	}
}

func TestTransferHookSeesPreTransferBalances(t *testing.T) {
	tok := newTestToken()
	if err := tok.Mint(testAuthority, alice, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := tok.Mint(testAuthority, bob, big.NewInt(5)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	var sawFrom, sawTo *big.Int
	hook := func(from, to common.Address, amount, fromBalance, toBalance *big.Int) error {
		sawFrom = fromBalance
		sawTo = toBalance
		return nil
	}
	if err := tok.SetTransferHook(alice, hook); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := tok.SetTransferHook(testAuthority, hook); err != nil {
		t.Fatalf("set hook: %v", err)
	}

	if err := tok.Transfer(alice, bob, big.NewInt(30)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if sawFrom == nil || sawFrom.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("hook saw sender balance %s, want 100", sawFrom)
	}
	if sawTo == nil || sawTo.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("hook saw recipient balance %s, want 5", sawTo)
	}
}

func TestTransferHookAbortsTransfer(t *testing.T) {
	tok := newTestToken()
	if err := tok.Mint(testAuthority, alice, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	boom := errors.New("boom")
	if err := tok.SetTransferHook(testAuthority, func(common.Address, common.Address, *big.Int, *big.Int, *big.Int) error {
		return boom
	}); err != nil {
		t.Fatalf("set hook: %v", err)
	}
	if err := tok.Transfer(alice, bob, big.NewInt(10)); !errors.Is(err, boom) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if got := tok.BalanceOf(alice); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("balance mutated despite aborted transfer: %s", got)
	}
}

func TestApproveAndTransferFrom(t *testing.T) {
	tok := newTestToken()
	if err := tok.Mint(testAuthority, alice, big.NewInt(100)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := tok.TransferFrom(bob, alice, bob, big.NewInt(10)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}

	if err := tok.Approve(alice, bob, big.NewInt(40)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := tok.Allowance(alice, bob); got.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("allowance = %s, want 40", got)
	}

	if err := tok.TransferFrom(bob, alice, bob, big.NewInt(30)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	if got := tok.BalanceOf(bob); got.Cmp(big.NewInt(30)) != 0 {
		t.Fatalf("recipient balance = %s, want 30", got)
	}
	if got := tok.Allowance(alice, bob); got.Cmp(big.NewInt(10)) != 0 {
		t.Fatalf("remaining allowance = %s, want 10", got)
	}

	if err := tok.TransferFrom(bob, alice, bob, big.NewInt(11)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
}

func TestTransferFromSelfNeedsNoAllowance(t *testing.T) {
	tok := newTestToken()
	if err := tok.Mint(testAuthority, alice, big.NewInt(50)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := tok.TransferFrom(alice, alice, bob, big.NewInt(20)); err != nil {
		t.Fatalf("transferFrom self: %v", err)
	}
	if got := tok.BalanceOf(bob); got.Cmp(big.NewInt(20)) != 0 {
		t.Fatalf("recipient balance = %s, want 20", got)
	}
}
