package vault

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/timeless-fi/timeless/fixedmath"
	"github.com/timeless-fi/timeless/native/token"
)

// SimYearn is an in-process price-per-share vault (for testing). The share
// price is an explicit lever; tests raising it must also fund the vault
// address with underlying so withdrawals stay solvent.
type SimYearn struct {
	addr   common.Address
	asset  *token.Token
	shares *token.Token
	pps    *big.Int
}

var _ YearnVault = (*SimYearn)(nil)

// NewSimYearn creates an empty vault priced at 1.0 underlying per share.
func NewSimYearn(addr, shareAddr common.Address, asset *token.Token) *SimYearn {
	shares := token.New(
		shareAddr,
		fmt.Sprintf("%s Yearn Vault Share", asset.Symbol()),
		"yv"+asset.Symbol(),
		asset.Decimals(),
		addr,
	)
	return &SimYearn{
		addr:   addr,
		asset:  asset,
		shares: shares,
		pps:    fixedmath.Pow10(asset.Decimals()),
	}
}

func (v *SimYearn) Address() common.Address  { return v.addr }
func (v *SimYearn) Asset() *token.Token      { return v.asset }
func (v *SimYearn) ShareToken() *token.Token { return v.shares }

func (v *SimYearn) PricePerShare() *big.Int {
	return new(big.Int).Set(v.pps)
}

// SetPricePerShare moves the share price; only upward moves model yield, but
// downward moves are allowed so tests can exercise the engine's
// no-negative-yield behaviour.
func (v *SimYearn) SetPricePerShare(pps *big.Int) {
	if pps == nil || pps.Sign() <= 0 {
		return
	}
	v.pps = new(big.Int).Set(pps)
}

func (v *SimYearn) Deposit(caller common.Address, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	scale := fixedmath.Pow10(v.asset.Decimals())
	minted, err := fixedmath.FullMulDiv(amount, scale, v.pps)
	if err != nil {
		return nil, err
	}
	if err := v.asset.Transfer(caller, v.addr, amount); err != nil {
		return nil, err
	}
	if err := v.shares.Mint(v.addr, caller, minted); err != nil {
		return nil, err
	}
	return minted, nil
}

func (v *SimYearn) WithdrawShares(caller common.Address, shares *big.Int, recipient common.Address) (*big.Int, error) {
	if shares == nil || shares.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if shares.Sign() == 0 {
		return big.NewInt(0), nil
	}
	scale := fixedmath.Pow10(v.asset.Decimals())
	amount, err := fixedmath.FullMulDiv(shares, v.pps, scale)
	if err != nil {
		return nil, err
	}
	if v.asset.BalanceOf(v.addr).Cmp(amount) < 0 {
		return nil, ErrInsufficientVaultAssets
	}
	if err := v.shares.Burn(v.addr, caller, shares); err != nil {
		return nil, err
	}
	if err := v.asset.Transfer(v.addr, recipient, amount); err != nil {
		return nil, err
	}
	return amount, nil
}
