// Package vault abstracts the external yield-bearing vaults the protocol
// deposits into. Each vault protocol has its own share pricing and withdrawal
// semantics; an Adapter normalises them behind one capability interface so
// the accrual engine never branches on the vault flavour.
package vault

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/timeless-fi/timeless/native/token"
)

var (
	ErrInvalidAmount           = errors.New("vault: amount must be non-negative")
	ErrInsufficientShares      = errors.New("vault: insufficient vault shares held")
	ErrSharesNotTransferable   = errors.New("vault: shares are not a transferable fungible asset")
	ErrInsufficientVaultAssets = errors.New("vault: vault cannot cover requested underlying")
)

// Adapter is the engine-facing view of one vault instance. Amounts are in the
// underlying asset's native decimal scale; prices are underlying per one whole
// share unit (10^decimals shares).
type Adapter interface {
	// Vault identifies the vault instance the adapter is bound to.
	Vault() common.Address
	// UnderlyingAsset returns the ledger of the vault's deposit asset.
	UnderlyingAsset() *token.Token
	// PricePerShare is the current underlying value of one whole share.
	PricePerShare() (*big.Int, error)
	// ShareBalanceHeld is the engine's current custodied share balance.
	ShareBalanceHeld() *big.Int
	// SharesTransferable reports whether the share token can be moved as a
	// fungible asset. ShareToken returns nil when it cannot.
	SharesTransferable() bool
	ShareToken() *token.Token
	// DepositUnderlying moves amount of underlying from engine custody into
	// the vault, converting to shares held by the engine.
	DepositUnderlying(amount *big.Int) error
	// WithdrawUnderlying redeems engine-held shares for amount of underlying
	// paid to recipient. With capToAvailable it withdraws the lesser of the
	// request and what the held shares cover, returning the actual amount;
	// otherwise a shortfall is an error.
	WithdrawUnderlying(amount *big.Int, recipient common.Address, capToAvailable bool) (*big.Int, error)
}
