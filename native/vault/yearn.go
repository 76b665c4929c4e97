package vault

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/timeless-fi/timeless/fixedmath"
	"github.com/timeless-fi/timeless/native/token"
)

// YearnVault is the v2-style vault surface: a native price-per-share quote
// and withdrawal denominated in shares.
type YearnVault interface {
	Address() common.Address
	Asset() *token.Token
	ShareToken() *token.Token
	PricePerShare() *big.Int
	Deposit(caller common.Address, amount *big.Int) (*big.Int, error)
	WithdrawShares(caller common.Address, shares *big.Int, recipient common.Address) (*big.Int, error)
}

// YearnAdapter adapts a price-per-share vault. Underlying withdrawals are
// converted to a share burn rounded up, so the payout is never below the
// request when enough shares are held.
type YearnAdapter struct {
	vault  YearnVault
	engine common.Address
}

var _ Adapter = (*YearnAdapter)(nil)

func NewYearnAdapter(v YearnVault, engine common.Address) *YearnAdapter {
	return &YearnAdapter{vault: v, engine: engine}
}

func (a *YearnAdapter) Vault() common.Address         { return a.vault.Address() }
func (a *YearnAdapter) UnderlyingAsset() *token.Token { return a.vault.Asset() }
func (a *YearnAdapter) SharesTransferable() bool      { return true }
func (a *YearnAdapter) ShareToken() *token.Token      { return a.vault.ShareToken() }

func (a *YearnAdapter) PricePerShare() (*big.Int, error) {
	return a.vault.PricePerShare(), nil
}

func (a *YearnAdapter) ShareBalanceHeld() *big.Int {
	return a.vault.ShareToken().BalanceOf(a.engine)
}

func (a *YearnAdapter) DepositUnderlying(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	_, err := a.vault.Deposit(a.engine, amount)
	return err
}

func (a *YearnAdapter) WithdrawUnderlying(amount *big.Int, recipient common.Address, capToAvailable bool) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	scale := fixedmath.Pow10(a.vault.Asset().Decimals())
	price := a.vault.PricePerShare()
	cost, err := fixedmath.FullMulDivUp(amount, scale, price)
	if err != nil {
		return nil, err
	}
	held := a.ShareBalanceHeld()
	if cost.Cmp(held) > 0 {
		if !capToAvailable {
			return nil, ErrInsufficientShares
		}
		cost = held
	}
	return a.vault.WithdrawShares(a.engine, cost, recipient)
}
