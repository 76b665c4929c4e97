package events

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// TypeEnterVault captures a deposit split into a claim-token pair.
	TypeEnterVault = "gate.enter"
	// TypeExitVault captures a claim-token burn redeemed for principal.
	TypeExitVault = "gate.exit"
	// TypeClaimYield captures a yield payout (or compounding re-entry).
	TypeClaimYield = "gate.claimYield"
	// TypeDeployTokenPair is emitted when a vault's claim-token pair is created.
	TypeDeployTokenPair = "factory.deployYieldTokenPair"
	// TypeProtocolFeeUpdated is emitted when governance changes the fee config.
	TypeProtocolFeeUpdated = "factory.protocolFeeUpdated"
	// TypeOwnershipTransferred is emitted when the factory owner changes.
	TypeOwnershipTransferred = "factory.ownershipTransferred"
)

// EnterVault records a principal deposit minting a claim-token pair.
type EnterVault struct {
	Caller    common.Address
	Recipient common.Address
	Vault     common.Address
	// Shares is true when the caller paid in vault shares rather than
	// underlying.
	Shares bool
	Amount *big.Int
}

func (EnterVault) EventType() string { return TypeEnterVault }

func (e EnterVault) Attributes() map[string]string {
	attrs := map[string]string{
		"caller":    e.Caller.Hex(),
		"recipient": e.Recipient.Hex(),
		"vault":     e.Vault.Hex(),
		"amount":    formatAmount(e.Amount),
	}
	if e.Shares {
		attrs["denomination"] = "vaultShares"
	}
	return attrs
}

// ExitVault records a claim-token burn redeeming principal.
type ExitVault struct {
	Caller    common.Address
	Recipient common.Address
	Vault     common.Address
	Shares    bool
	Amount    *big.Int
}

func (ExitVault) EventType() string { return TypeExitVault }

func (e ExitVault) Attributes() map[string]string {
	attrs := map[string]string{
		"caller":    e.Caller.Hex(),
		"recipient": e.Recipient.Hex(),
		"vault":     e.Vault.Hex(),
		"amount":    formatAmount(e.Amount),
	}
	if e.Shares {
		attrs["denomination"] = "vaultShares"
	}
	return attrs
}

// ClaimYield records a yield settlement payout.
type ClaimYield struct {
	Caller    common.Address
	Recipient common.Address
	Vault     common.Address
	Amount    *big.Int
	Fee       *big.Int
	// Compounded is true when the yield re-entered the vault as new
	// principal instead of being withdrawn.
	Compounded bool
}

func (ClaimYield) EventType() string { return TypeClaimYield }

func (e ClaimYield) Attributes() map[string]string {
	attrs := map[string]string{
		"caller":    e.Caller.Hex(),
		"recipient": e.Recipient.Hex(),
		"vault":     e.Vault.Hex(),
		"amount":    formatAmount(e.Amount),
	}
	if e.Fee != nil && e.Fee.Sign() > 0 {
		attrs["fee"] = formatAmount(e.Fee)
	}
	if e.Compounded {
		attrs["compounded"] = "true"
	}
	return attrs
}

// DeployTokenPair records the creation of a vault's claim-token pair.
type DeployTokenPair struct {
	Gate                common.Address
	Vault               common.Address
	NegativeYieldToken  common.Address
	PerpetualYieldToken common.Address
}

func (DeployTokenPair) EventType() string { return TypeDeployTokenPair }

func (e DeployTokenPair) Attributes() map[string]string {
	return map[string]string{
		"gate":  e.Gate.Hex(),
		"vault": e.Vault.Hex(),
		"nyt":   e.NegativeYieldToken.Hex(),
		"pyt":   e.PerpetualYieldToken.Hex(),
	}
}

// ProtocolFeeUpdated records a governance fee change.
type ProtocolFeeUpdated struct {
	FeeSteps  uint8
	Recipient common.Address
}

func (ProtocolFeeUpdated) EventType() string { return TypeProtocolFeeUpdated }

func (e ProtocolFeeUpdated) Attributes() map[string]string {
	return map[string]string{
		"feeSteps":  formatUint(uint64(e.FeeSteps)),
		"recipient": e.Recipient.Hex(),
	}
}

// OwnershipTransferred records a factory ownership handover.
type OwnershipTransferred struct {
	PreviousOwner common.Address
	NewOwner      common.Address
}

func (OwnershipTransferred) EventType() string { return TypeOwnershipTransferred }

func (e OwnershipTransferred) Attributes() map[string]string {
	return map[string]string{
		"previousOwner": e.PreviousOwner.Hex(),
		"newOwner":      e.NewOwner.Hex(),
	}
}
