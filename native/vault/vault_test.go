package vault

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/timeless-fi/timeless/fixedmath"
	"github.com/timeless-fi/timeless/native/token"
)

var (
	deployer  = common.HexToAddress("0x00000000000000000000000000000000000000dd")
	engine    = common.HexToAddress("0x00000000000000000000000000000000000000ee")
	receiver  = common.HexToAddress("0x0000000000000000000000000000000000000011")
	vaultAddr = common.HexToAddress("0x0000000000000000000000000000000000000100")
	shareAddr = common.HexToAddress("0x0000000000000000000000000000000000000101")
)

func newAsset(t *testing.T, decimals uint8) *token.Token {
	t.Helper()
	return token.New(common.HexToAddress("0x0000000000000000000000000000000000000099"), "Test USD", "TUSD", decimals, deployer)
}

func units(n int64, decimals uint8) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), fixedmath.Pow10(decimals))
}

func TestERC4626AdapterPriceTracksDonations(t *testing.T) {
	asset := newAsset(t, 18)
	sim := NewSim4626(vaultAddr, shareAddr, asset)
	adapter := NewERC4626Adapter(sim, engine)

	require.NoError(t, asset.Mint(deployer, engine, units(1000, 18)))
	require.NoError(t, adapter.DepositUnderlying(units(1000, 18)))

	price, err := adapter.PricePerShare()
	require.NoError(t, err)
	require.Zero(t, price.Cmp(fixedmath.Pow10(18)), "fresh vault should price 1.0")

	// Donated underlying is yield: 10% on 1000 deposited.
	require.NoError(t, asset.Mint(deployer, vaultAddr, units(100, 18)))
	price, err = adapter.PricePerShare()
	require.NoError(t, err)
	want := new(big.Int).Div(new(big.Int).Mul(fixedmath.Pow10(18), big.NewInt(11)), big.NewInt(10))
	require.Zero(t, price.Cmp(want), "got %s want %s", price, want)
}

func TestERC4626AdapterWithdrawStrictVsCapped(t *testing.T) {
	asset := newAsset(t, 6)
	sim := NewSim4626(vaultAddr, shareAddr, asset)
	adapter := NewERC4626Adapter(sim, engine)

	require.NoError(t, asset.Mint(deployer, engine, units(500, 6)))
	require.NoError(t, adapter.DepositUnderlying(units(500, 6)))

	// Strict withdrawal of more than the engine's shares cover fails.
	_, err := adapter.WithdrawUnderlying(units(600, 6), receiver, false)
	require.ErrorIs(t, err, ErrInsufficientShares)
	require.Zero(t, asset.BalanceOf(receiver).Sign())

	// Capped withdrawal drains what the shares cover.
	got, err := adapter.WithdrawUnderlying(units(600, 6), receiver, true)
	require.NoError(t, err)
	require.Zero(t, got.Cmp(units(500, 6)))
	require.Zero(t, asset.BalanceOf(receiver).Cmp(units(500, 6)))
	require.Zero(t, adapter.ShareBalanceHeld().Sign())
}

func TestERC4626AdapterExactWithdraw(t *testing.T) {
	asset := newAsset(t, 18)
	sim := NewSim4626(vaultAddr, shareAddr, asset)
	adapter := NewERC4626Adapter(sim, engine)

	require.NoError(t, asset.Mint(deployer, engine, units(100, 18)))
	require.NoError(t, adapter.DepositUnderlying(units(100, 18)))

	got, err := adapter.WithdrawUnderlying(units(40, 18), receiver, false)
	require.NoError(t, err)
	require.Zero(t, got.Cmp(units(40, 18)))
	require.Zero(t, asset.BalanceOf(receiver).Cmp(units(40, 18)))
}

func TestYearnAdapterPriceAndWithdraw(t *testing.T) {
	asset := newAsset(t, 18)
	sim := NewSimYearn(vaultAddr, shareAddr, asset)
	adapter := NewYearnAdapter(sim, engine)

	require.NoError(t, asset.Mint(deployer, engine, units(1000, 18)))
	require.NoError(t, adapter.DepositUnderlying(units(1000, 18)))
	require.Zero(t, adapter.ShareBalanceHeld().Cmp(units(1000, 18)))

	// Raise price to 1.25 and fund the vault to stay solvent.
	pps := new(big.Int).Div(new(big.Int).Mul(fixedmath.Pow10(18), big.NewInt(5)), big.NewInt(4))
	sim.SetPricePerShare(pps)
	require.NoError(t, asset.Mint(deployer, vaultAddr, units(250, 18)))

	price, err := adapter.PricePerShare()
	require.NoError(t, err)
	require.Zero(t, price.Cmp(pps))

	got, err := adapter.WithdrawUnderlying(units(500, 18), receiver, false)
	require.NoError(t, err)
	require.Zero(t, got.Cmp(units(500, 18)))
	// 500 underlying at 1.25 costs 400 shares.
	require.Zero(t, adapter.ShareBalanceHeld().Cmp(units(600, 18)))
}

func TestYearnAdapterCapsToHeldShares(t *testing.T) {
	asset := newAsset(t, 18)
	sim := NewSimYearn(vaultAddr, shareAddr, asset)
	adapter := NewYearnAdapter(sim, engine)

	require.NoError(t, asset.Mint(deployer, engine, units(100, 18)))
	require.NoError(t, adapter.DepositUnderlying(units(100, 18)))

	_, err := adapter.WithdrawUnderlying(units(150, 18), receiver, false)
	require.ErrorIs(t, err, ErrInsufficientShares)

	got, err := adapter.WithdrawUnderlying(units(150, 18), receiver, true)
	require.NoError(t, err)
	require.Zero(t, got.Cmp(units(100, 18)))
}

func TestSimYearnRejectsInsolventWithdraw(t *testing.T) {
	asset := newAsset(t, 18)
	sim := NewSimYearn(vaultAddr, shareAddr, asset)

	require.NoError(t, asset.Mint(deployer, engine, units(10, 18)))
	_, err := sim.Deposit(engine, units(10, 18))
	require.NoError(t, err)

	// Price doubles but nobody funded the vault.
	sim.SetPricePerShare(units(2, 18))
	_, err = sim.WithdrawShares(engine, units(10, 18), receiver)
	require.ErrorIs(t, err, ErrInsufficientVaultAssets)
}
