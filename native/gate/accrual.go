package gate

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/timeless-fi/timeless/fixedmath"
	"github.com/timeless-fi/timeless/native/token"
	"github.com/timeless-fi/timeless/native/vault"
)

// computeYieldPerToken advances the accumulator without persisting anything.
// The result never goes below the stored value: with no claim tokens
// outstanding there is nothing to accrue into, and price growth must be
// strictly positive to register.
func computeYieldPerToken(vs *VaultState, supply, shareBalance, currentPrice, scale *big.Int) (*big.Int, error) {
	if supply.Sign() == 0 {
		return new(big.Int).Set(vs.YieldPerTokenStored), nil
	}
	if currentPrice.Cmp(vs.PricePerShareStored) <= 0 {
		return new(big.Int).Set(vs.YieldPerTokenStored), nil
	}
	delta := new(big.Int).Sub(currentPrice, vs.PricePerShareStored)
	newYield, err := fixedmath.FullMulDiv(delta, shareBalance, scale)
	if err != nil {
		return nil, err
	}
	increment, err := fixedmath.FullMulDiv(newYield, Precision, supply)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Add(vs.YieldPerTokenStored, increment), nil
}

// accrueYield settles the vault's global accumulator and the user's banked
// yield, using balance as the user's claim-token balance over the settled
// interval. Both records are persisted before returning.
func (g *Gate) accrueYield(vaultAddr common.Address, adapter vault.Adapter, pyt *token.Token, user common.Address, balance *big.Int) (*VaultState, *UserState, error) {
	vs, err := g.ensureVaultState(vaultAddr)
	if err != nil {
		return nil, nil, err
	}
	us, err := g.ensureUserState(vaultAddr, user)
	if err != nil {
		return nil, nil, err
	}

	currentPrice, err := adapter.PricePerShare()
	if err != nil {
		return nil, nil, err
	}
	scale := fixedmath.Pow10(adapter.UnderlyingAsset().Decimals())
	updated, err := computeYieldPerToken(vs, pyt.TotalSupply(), adapter.ShareBalanceHeld(), currentPrice, scale)
	if err != nil {
		return nil, nil, err
	}

	if us.YieldPerTokenStored.Sign() != 0 {
		previous := new(big.Int).Sub(us.YieldPerTokenStored, oneShift)
		span := new(big.Int).Sub(updated, previous)
		if span.Sign() > 0 && balance != nil && balance.Sign() > 0 {
			owed, err := fixedmath.FullMulDiv(balance, span, Precision)
			if err != nil {
				return nil, nil, err
			}
			us.AccruedYield = new(big.Int).Add(us.AccruedYield, owed)
		}
	}
	us.YieldPerTokenStored = new(big.Int).Add(updated, oneShift)

	vs.YieldPerTokenStored = updated
	if currentPrice.Cmp(vs.PricePerShareStored) > 0 {
		vs.PricePerShareStored = new(big.Int).Set(currentPrice)
	}

	if err := g.state.PutVaultState(vaultAddr, vs); err != nil {
		return nil, nil, err
	}
	if err := g.state.PutUserState(vaultAddr, user, us); err != nil {
		return nil, nil, err
	}

	g.metrics.SetYieldPerToken(vaultAddr.Hex(), accumulatorValue(updated))
	return vs, us, nil
}

func (g *Gate) ensureVaultState(vaultAddr common.Address) (*VaultState, error) {
	vs, err := g.state.VaultState(vaultAddr)
	if err != nil {
		return nil, err
	}
	if vs == nil {
		vs = &VaultState{}
	}
	if vs.PricePerShareStored == nil {
		vs.PricePerShareStored = big.NewInt(0)
	}
	if vs.YieldPerTokenStored == nil {
		vs.YieldPerTokenStored = big.NewInt(0)
	}
	return vs, nil
}

func (g *Gate) ensureUserState(vaultAddr, user common.Address) (*UserState, error) {
	us, err := g.state.UserState(vaultAddr, user)
	if err != nil {
		return nil, err
	}
	if us == nil {
		us = &UserState{}
	}
	if us.YieldPerTokenStored == nil {
		us.YieldPerTokenStored = big.NewInt(0)
	}
	if us.AccruedYield == nil {
		us.AccruedYield = big.NewInt(0)
	}
	return us, nil
}

// accumulatorValue renders the precision-scaled accumulator as a float for
// gauges; precision loss only affects observability, never accounting.
func accumulatorValue(v *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(v), new(big.Float).SetInt(Precision)).Float64()
	return f
}

// baseUnits renders an underlying amount as a float for counters.
func baseUnits(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
