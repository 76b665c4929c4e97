package vault

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/timeless-fi/timeless/fixedmath"
	"github.com/timeless-fi/timeless/native/token"
)

// Sim4626 is an in-process ERC-4626 vault (for testing). Its asset balance is
// whatever the ledger says it holds, so donating underlying to the vault
// address raises the share price exactly like on-chain yield does.
type Sim4626 struct {
	addr   common.Address
	asset  *token.Token
	shares *token.Token
}

var _ ERC4626 = (*Sim4626)(nil)

// NewSim4626 creates an empty vault over the given asset ledger. The share
// token is owned by the vault itself.
func NewSim4626(addr, shareAddr common.Address, asset *token.Token) *Sim4626 {
	shares := token.New(
		shareAddr,
		fmt.Sprintf("%s 4626 Vault Share", asset.Symbol()),
		"v"+asset.Symbol(),
		asset.Decimals(),
		addr,
	)
	return &Sim4626{addr: addr, asset: asset, shares: shares}
}

func (v *Sim4626) Address() common.Address { return v.addr }
func (v *Sim4626) Asset() *token.Token     { return v.asset }
func (v *Sim4626) ShareToken() *token.Token {
	return v.shares
}

func (v *Sim4626) TotalAssets() *big.Int {
	return v.asset.BalanceOf(v.addr)
}

// ConvertToAssets quotes shares in underlying, rounding down. An empty vault
// quotes 1:1.
func (v *Sim4626) ConvertToAssets(shares *big.Int) (*big.Int, error) {
	supply := v.shares.TotalSupply()
	if supply.Sign() == 0 {
		return new(big.Int).Set(shares), nil
	}
	return fixedmath.FullMulDiv(shares, v.TotalAssets(), supply)
}

func (v *Sim4626) convertToShares(assets *big.Int) (*big.Int, error) {
	supply := v.shares.TotalSupply()
	if supply.Sign() == 0 {
		return new(big.Int).Set(assets), nil
	}
	return fixedmath.FullMulDiv(assets, supply, v.TotalAssets())
}

// PreviewWithdraw returns the share cost of withdrawing assets, rounded up.
func (v *Sim4626) PreviewWithdraw(assets *big.Int) (*big.Int, error) {
	supply := v.shares.TotalSupply()
	if supply.Sign() == 0 {
		return new(big.Int).Set(assets), nil
	}
	return fixedmath.FullMulDivUp(assets, supply, v.TotalAssets())
}

func (v *Sim4626) Deposit(caller common.Address, assets *big.Int) (*big.Int, error) {
	if assets == nil || assets.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	minted, err := v.convertToShares(assets)
	if err != nil {
		return nil, err
	}
	if err := v.asset.Transfer(caller, v.addr, assets); err != nil {
		return nil, err
	}
	if err := v.shares.Mint(v.addr, caller, minted); err != nil {
		return nil, err
	}
	return minted, nil
}

func (v *Sim4626) Withdraw(caller common.Address, assets *big.Int, receiver common.Address) error {
	if assets == nil || assets.Sign() < 0 {
		return ErrInvalidAmount
	}
	cost, err := v.PreviewWithdraw(assets)
	if err != nil {
		return err
	}
	if err := v.shares.Burn(v.addr, caller, cost); err != nil {
		return err
	}
	if err := v.asset.Transfer(v.addr, receiver, assets); err != nil {
		return fmt.Errorf("vault: pay out withdrawal: %w", err)
	}
	return nil
}

func (v *Sim4626) Redeem(caller common.Address, shares *big.Int, receiver common.Address) (*big.Int, error) {
	if shares == nil || shares.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if shares.Sign() == 0 {
		return big.NewInt(0), nil
	}
	assets, err := v.ConvertToAssets(shares)
	if err != nil {
		return nil, err
	}
	if err := v.shares.Burn(v.addr, caller, shares); err != nil {
		return nil, err
	}
	if err := v.asset.Transfer(v.addr, receiver, assets); err != nil {
		return nil, fmt.Errorf("vault: pay out redemption: %w", err)
	}
	return assets, nil
}
