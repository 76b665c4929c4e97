package vault

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/timeless-fi/timeless/fixedmath"
	"github.com/timeless-fi/timeless/native/token"
)

// ERC4626 is the slice of the tokenized-vault standard the adapter consumes.
// Share math rounds in the vault's favour: deposits and redeems round down,
// withdrawals charge shares rounded up.
type ERC4626 interface {
	Address() common.Address
	Asset() *token.Token
	ShareToken() *token.Token
	TotalAssets() *big.Int
	ConvertToAssets(shares *big.Int) (*big.Int, error)
	PreviewWithdraw(assets *big.Int) (*big.Int, error)
	Deposit(caller common.Address, assets *big.Int) (*big.Int, error)
	Withdraw(caller common.Address, assets *big.Int, receiver common.Address) error
	Redeem(caller common.Address, shares *big.Int, receiver common.Address) (*big.Int, error)
}

// ERC4626Adapter adapts a standard tokenized vault. Shares are always a
// transferable fungible token under this standard.
type ERC4626Adapter struct {
	vault  ERC4626
	engine common.Address
}

var _ Adapter = (*ERC4626Adapter)(nil)

func NewERC4626Adapter(v ERC4626, engine common.Address) *ERC4626Adapter {
	return &ERC4626Adapter{vault: v, engine: engine}
}

func (a *ERC4626Adapter) Vault() common.Address         { return a.vault.Address() }
func (a *ERC4626Adapter) UnderlyingAsset() *token.Token { return a.vault.Asset() }
func (a *ERC4626Adapter) SharesTransferable() bool      { return true }
func (a *ERC4626Adapter) ShareToken() *token.Token      { return a.vault.ShareToken() }

func (a *ERC4626Adapter) PricePerShare() (*big.Int, error) {
	one := fixedmath.Pow10(a.vault.Asset().Decimals())
	return a.vault.ConvertToAssets(one)
}

func (a *ERC4626Adapter) ShareBalanceHeld() *big.Int {
	return a.vault.ShareToken().BalanceOf(a.engine)
}

func (a *ERC4626Adapter) DepositUnderlying(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	_, err := a.vault.Deposit(a.engine, amount)
	return err
}

func (a *ERC4626Adapter) WithdrawUnderlying(amount *big.Int, recipient common.Address, capToAvailable bool) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	held := a.ShareBalanceHeld()
	cost, err := a.vault.PreviewWithdraw(amount)
	if err != nil {
		return nil, err
	}
	if cost.Cmp(held) > 0 {
		if !capToAvailable {
			return nil, ErrInsufficientShares
		}
		// Rounding dust: redeem everything we hold instead.
		return a.vault.Redeem(a.engine, held, recipient)
	}
	if err := a.vault.Withdraw(a.engine, amount, recipient); err != nil {
		return nil, err
	}
	return new(big.Int).Set(amount), nil
}
