// Package factory deploys and registers the claim-token pairs minted against
// yield vaults, and holds the protocol fee configuration read by the accrual
// engine at claim time.
package factory

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/timeless-fi/timeless/events"
	"github.com/timeless-fi/timeless/native/token"
)

var (
	ErrPairAlreadyDeployed = errors.New("factory: yield token pair already deployed")
	ErrPairNotDeployed     = errors.New("factory: yield token pair not deployed")
	ErrNotOwner            = errors.New("factory: caller is not the owner")
	ErrFeeRecipientZero    = errors.New("factory: nonzero fee requires a fee recipient")
	ErrOwnerZero           = errors.New("factory: owner cannot be the zero address")
)

// Domain separators folded into the deterministic token addresses, playing
// the role of a fixed bytecode hash: two tokens deployed for the same
// (gate, vault) pair land at different, predictable addresses.
var (
	nytKindHash = ethcrypto.Keccak256([]byte("timeless/negative-yield-token/v1"))
	pytKindHash = ethcrypto.Keccak256([]byte("timeless/perpetual-yield-token/v1"))
)

// ProtocolFeeInfo is the fee configuration applied to claimed yield.
// FeeSteps is in 0.1% increments: 0-255 covers 0%-25.5%.
type ProtocolFeeInfo struct {
	FeeSteps  uint8
	Recipient common.Address
}

// YieldTokenPair bundles the two claim tokens deployed for one vault.
type YieldTokenPair struct {
	NegativeYieldToken  *token.Token
	PerpetualYieldToken *token.Token
}

type pairKey struct {
	gate  common.Address
	vault common.Address
}

// Factory is the claim-pair registry. A pair deploys at most once per
// (gate, vault); redeploying is an error, not a no-op.
type Factory struct {
	addr   common.Address
	logger *slog.Logger

	mu      sync.RWMutex
	owner   common.Address
	fee     ProtocolFeeInfo
	pairs   map[pairKey]*YieldTokenPair
	emitter events.Emitter
}

// Option configures optional factory collaborators.
type Option func(*Factory)

// WithEmitter wires an event emitter; the default discards events.
func WithEmitter(e events.Emitter) Option {
	return func(f *Factory) {
		if e != nil {
			f.emitter = e
		}
	}
}

// WithLogger wires a structured logger; the default is silent.
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// New constructs a factory owned by owner.
func New(addr, owner common.Address, opts ...Option) (*Factory, error) {
	if owner == (common.Address{}) {
		return nil, ErrOwnerZero
	}
	f := &Factory{
		addr:    addr,
		owner:   owner,
		pairs:   make(map[pairKey]*YieldTokenPair),
		emitter: events.NoopEmitter{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Factory) Address() common.Address { return f.addr }

// Owner returns the current governance owner.
func (f *Factory) Owner() common.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.owner
}

// ProtocolFee returns the fee configuration snapshot read at claim time.
func (f *Factory) ProtocolFee() ProtocolFeeInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.fee
}

// SetProtocolFee updates the fee configuration. Owner only; a nonzero fee
// with a zero recipient is rejected.
func (f *Factory) SetProtocolFee(caller common.Address, fee ProtocolFeeInfo) error {
	f.mu.Lock()
	if caller != f.owner {
		f.mu.Unlock()
		return ErrNotOwner
	}
	if fee.FeeSteps != 0 && fee.Recipient == (common.Address{}) {
		f.mu.Unlock()
		return ErrFeeRecipientZero
	}
	f.fee = fee
	f.mu.Unlock()

	f.emitter.Emit(events.ProtocolFeeUpdated{FeeSteps: fee.FeeSteps, Recipient: fee.Recipient})
	if f.logger != nil {
		f.logger.Info("protocol fee updated", "feeSteps", fee.FeeSteps, "recipient", fee.Recipient.Hex())
	}
	return nil
}

// SetOwner hands governance to a new owner. Owner only.
func (f *Factory) SetOwner(caller, newOwner common.Address) error {
	if newOwner == (common.Address{}) {
		return ErrOwnerZero
	}
	f.mu.Lock()
	if caller != f.owner {
		f.mu.Unlock()
		return ErrNotOwner
	}
	previous := f.owner
	f.owner = newOwner
	f.mu.Unlock()

	f.emitter.Emit(events.OwnershipTransferred{PreviousOwner: previous, NewOwner: newOwner})
	return nil
}

// DeployYieldTokenPair creates the claim-token pair for (gate, vault) at
// their deterministic addresses. The gate is the supply authority of both
// tokens; hook is installed as the perpetual yield token's pre-transfer
// hook. Fails fast when the pair already exists.
func (f *Factory) DeployYieldTokenPair(gate, vaultAddr common.Address, underlyingDecimals uint8, hook token.TransferHook) (*YieldTokenPair, error) {
	key := pairKey{gate: gate, vault: vaultAddr}

	f.mu.Lock()
	if _, exists := f.pairs[key]; exists {
		f.mu.Unlock()
		return nil, ErrPairAlreadyDeployed
	}

	short := vaultAddr.Hex()[2:10]
	nyt := token.New(
		f.PredictNegativeYieldTokenAddress(gate, vaultAddr),
		fmt.Sprintf("Timeless %s Negative Yield Token", short),
		"NYT-"+short,
		underlyingDecimals,
		gate,
	)
	pyt := token.New(
		f.PredictPerpetualYieldTokenAddress(gate, vaultAddr),
		fmt.Sprintf("Timeless %s Perpetual Yield Token", short),
		"PYT-"+short,
		underlyingDecimals,
		gate,
	)
	if hook != nil {
		if err := pyt.SetTransferHook(gate, hook); err != nil {
			f.mu.Unlock()
			return nil, err
		}
	}

	pair := &YieldTokenPair{NegativeYieldToken: nyt, PerpetualYieldToken: pyt}
	f.pairs[key] = pair
	f.mu.Unlock()

	f.emitter.Emit(events.DeployTokenPair{
		Gate:                gate,
		Vault:               vaultAddr,
		NegativeYieldToken:  nyt.Address(),
		PerpetualYieldToken: pyt.Address(),
	})
	if f.logger != nil {
		f.logger.Info("yield token pair deployed",
			"vault", vaultAddr.Hex(), "nyt", nyt.Address().Hex(), "pyt", pyt.Address().Hex())
	}
	return pair, nil
}

// Pair returns the deployed pair for (gate, vault), or ErrPairNotDeployed.
func (f *Factory) Pair(gate, vaultAddr common.Address) (*YieldTokenPair, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	pair, ok := f.pairs[pairKey{gate: gate, vault: vaultAddr}]
	if !ok {
		return nil, ErrPairNotDeployed
	}
	return pair, nil
}

// PairDeployed reports whether the pair for (gate, vault) exists.
func (f *Factory) PairDeployed(gate, vaultAddr common.Address) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.pairs[pairKey{gate: gate, vault: vaultAddr}]
	return ok
}

// PredictNegativeYieldTokenAddress computes the NYT address for (gate, vault)
// without deploying it.
func (f *Factory) PredictNegativeYieldTokenAddress(gate, vaultAddr common.Address) common.Address {
	return f.deriveAddress(gate, vaultAddr, nytKindHash)
}

// PredictPerpetualYieldTokenAddress computes the PYT address for (gate, vault)
// without deploying it.
func (f *Factory) PredictPerpetualYieldTokenAddress(gate, vaultAddr common.Address) common.Address {
	return f.deriveAddress(gate, vaultAddr, pytKindHash)
}

// deriveAddress is the CREATE2 recipe: keccak256(0xff ++ factory ++ salt ++
// kindHash)[12:], with salt binding the gate and vault identities.
func (f *Factory) deriveAddress(gate, vaultAddr common.Address, kindHash []byte) common.Address {
	salt := ethcrypto.Keccak256(gate.Bytes(), vaultAddr.Bytes())
	digest := ethcrypto.Keccak256([]byte{0xff}, f.addr.Bytes(), salt, kindHash)
	return common.BytesToAddress(digest[12:])
}
