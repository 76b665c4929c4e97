// Package gate implements the yield accrual engine: it splits vault deposits
// into negative-yield and perpetual-yield claim tokens and attributes the
// vault's yield stream to perpetual-yield holders with O(1) per-operation
// settlement, no holder iteration.
package gate

import (
	"errors"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/timeless-fi/timeless/events"
	"github.com/timeless-fi/timeless/fixedmath"
	nativecommon "github.com/timeless-fi/timeless/native/common"
	"github.com/timeless-fi/timeless/native/factory"
	"github.com/timeless-fi/timeless/native/token"
	"github.com/timeless-fi/timeless/native/vault"
	"github.com/timeless-fi/timeless/observability/metrics"
)

var (
	errNilState           = errors.New("gate: state not configured")
	errNilFactory         = errors.New("gate: factory not configured")
	errNilAdapter         = errors.New("gate: nil vault adapter")
	errInvalidAmount      = errors.New("gate: amount must be non-negative")
	errZeroRecipient      = errors.New("gate: recipient cannot be the zero address")
	errVaultNotRegistered = errors.New("gate: vault not registered")
	errVaultRegistered    = errors.New("gate: vault already registered")
	errUnauthorizedHook   = errors.New("gate: hook caller is not the vault's perpetual yield token")
)

const moduleName = "gate"

// Precision is the protocol-wide accumulator scale: yield-per-token values
// are fixed-point numbers with 27 decimals.
var Precision = new(big.Int).Exp(big.NewInt(10), big.NewInt(27), nil)

// feeDenominator converts fee steps (0.1% each) to a fraction.
var feeDenominator = big.NewInt(1000)

// oneShift is the sentinel offset distinguishing "never settled" from a
// legitimate zero accumulator snapshot.
var oneShift = big.NewInt(1)

// Gate is the yield accrual engine. One Gate serves many vaults; each vault's
// accumulator state is fully independent.
type Gate struct {
	addr    common.Address
	state   State
	factory *factory.Factory

	mu       sync.RWMutex
	adapters map[common.Address]vault.Adapter

	emitter events.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger
	pauses  nativecommon.PauseView
	guard   nativecommon.ReentrancyGuard
}

// Option configures optional gate collaborators.
type Option func(*Gate)

func WithEmitter(e events.Emitter) Option {
	return func(g *Gate) {
		if e != nil {
			g.emitter = e
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithPauses wires the governance pause switch covering all state-mutating
// entry points.
func WithPauses(p nativecommon.PauseView) Option {
	return func(g *Gate) { g.pauses = p }
}

// New constructs a gate bound to its persistence layer and claim-token
// factory.
func New(addr common.Address, state State, f *factory.Factory, opts ...Option) (*Gate, error) {
	if state == nil {
		return nil, errNilState
	}
	if f == nil {
		return nil, errNilFactory
	}
	g := &Gate{
		addr:     addr,
		state:    state,
		factory:  f,
		adapters: make(map[common.Address]vault.Adapter),
		emitter:  events.NoopEmitter{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Gate) Address() common.Address { return g.addr }

// RegisterVault makes a vault available to the engine through its adapter.
// Registration is idempotent-hostile: a vault registers once.
func (g *Gate) RegisterVault(adapter vault.Adapter) error {
	if adapter == nil {
		return errNilAdapter
	}
	vaultAddr := adapter.Vault()
	if vaultAddr == (common.Address{}) {
		return errNilAdapter
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.adapters[vaultAddr]; exists {
		return errVaultRegistered
	}
	g.adapters[vaultAddr] = adapter
	return nil
}

func (g *Gate) adapterFor(vaultAddr common.Address) (vault.Adapter, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	adapter, ok := g.adapters[vaultAddr]
	if !ok {
		return nil, errVaultNotRegistered
	}
	return adapter, nil
}

// DeployTokenPair creates the claim-token pair for a registered vault at its
// deterministic addresses. Redeploying an existing pair fails.
func (g *Gate) DeployTokenPair(vaultAddr common.Address) (*factory.YieldTokenPair, error) {
	adapter, err := g.adapterFor(vaultAddr)
	if err != nil {
		return nil, err
	}
	return g.deployPair(vaultAddr, adapter)
}

func (g *Gate) deployPair(vaultAddr common.Address, adapter vault.Adapter) (*factory.YieldTokenPair, error) {
	pytAddr := g.factory.PredictPerpetualYieldTokenAddress(g.addr, vaultAddr)
	hook := func(from, to common.Address, amount, fromBalance, toBalance *big.Int) error {
		return g.BeforePerpetualYieldTokenTransfer(pytAddr, vaultAddr, from, to, amount, fromBalance, toBalance)
	}
	return g.factory.DeployYieldTokenPair(g.addr, vaultAddr, adapter.UnderlyingAsset().Decimals(), hook)
}

// TokenPair returns the claim-token pair deployed for the vault.
func (g *Gate) TokenPair(vaultAddr common.Address) (*factory.YieldTokenPair, error) {
	return g.factory.Pair(g.addr, vaultAddr)
}

// ensureTokenPair lazily deploys the pair on first enter.
func (g *Gate) ensureTokenPair(vaultAddr common.Address, adapter vault.Adapter) (*factory.YieldTokenPair, error) {
	pair, err := g.factory.Pair(g.addr, vaultAddr)
	if err == nil {
		return pair, nil
	}
	if !errors.Is(err, factory.ErrPairNotDeployed) {
		return nil, err
	}
	return g.deployPair(vaultAddr, adapter)
}

// EnterWithUnderlying pulls amount of underlying from the caller, deposits it
// into the vault, and mints amount of both claim tokens to the recipient.
// A zero amount is a no-op returning zero.
func (g *Gate) EnterWithUnderlying(caller, recipient, vaultAddr common.Address, amount *big.Int) (*big.Int, error) {
	release, err := g.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	if err := nativecommon.Guard(g.pauses, moduleName); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, errInvalidAmount
	}
	if recipient == (common.Address{}) {
		return nil, errZeroRecipient
	}
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}

	adapter, err := g.adapterFor(vaultAddr)
	if err != nil {
		return nil, err
	}
	pair, err := g.ensureTokenPair(vaultAddr, adapter)
	if err != nil {
		return nil, err
	}
	pyt := pair.PerpetualYieldToken

	if _, _, err := g.accrueYield(vaultAddr, adapter, pyt, recipient, pyt.BalanceOf(recipient)); err != nil {
		return nil, err
	}

	underlying := adapter.UnderlyingAsset()
	if err := underlying.Transfer(caller, g.addr, amount); err != nil {
		return nil, err
	}
	if err := adapter.DepositUnderlying(amount); err != nil {
		return nil, err
	}
	if err := g.mintPair(pair, recipient, amount); err != nil {
		return nil, err
	}

	g.emitter.Emit(events.EnterVault{Caller: caller, Recipient: recipient, Vault: vaultAddr, Amount: amount})
	g.metrics.RecordEnter(vaultAddr.Hex())
	g.log("enter", "vault", vaultAddr.Hex(), "recipient", recipient.Hex(), "amount", amount.String())
	return new(big.Int).Set(amount), nil
}

// EnterWithVaultShares takes custody of the caller's vault shares directly
// and mints claim tokens for their current underlying value. Requires a
// transferable share token.
func (g *Gate) EnterWithVaultShares(caller, recipient, vaultAddr common.Address, shares *big.Int) (*big.Int, error) {
	release, err := g.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	if err := nativecommon.Guard(g.pauses, moduleName); err != nil {
		return nil, err
	}
	if shares == nil || shares.Sign() < 0 {
		return nil, errInvalidAmount
	}
	if recipient == (common.Address{}) {
		return nil, errZeroRecipient
	}
	if shares.Sign() == 0 {
		return big.NewInt(0), nil
	}

	adapter, err := g.adapterFor(vaultAddr)
	if err != nil {
		return nil, err
	}
	if !adapter.SharesTransferable() {
		return nil, vault.ErrSharesNotTransferable
	}
	pair, err := g.ensureTokenPair(vaultAddr, adapter)
	if err != nil {
		return nil, err
	}
	pyt := pair.PerpetualYieldToken

	mintAmount, err := g.sharesToUnderlying(adapter, shares)
	if err != nil {
		return nil, err
	}

	if _, _, err := g.accrueYield(vaultAddr, adapter, pyt, recipient, pyt.BalanceOf(recipient)); err != nil {
		return nil, err
	}
	if err := adapter.ShareToken().Transfer(caller, g.addr, shares); err != nil {
		return nil, err
	}
	if err := g.mintPair(pair, recipient, mintAmount); err != nil {
		return nil, err
	}

	g.emitter.Emit(events.EnterVault{Caller: caller, Recipient: recipient, Vault: vaultAddr, Shares: true, Amount: mintAmount})
	g.metrics.RecordEnter(vaultAddr.Hex())
	g.log("enter with shares", "vault", vaultAddr.Hex(), "recipient", recipient.Hex(), "amount", mintAmount.String())
	return mintAmount, nil
}

// ExitToUnderlying burns amount of both claim tokens from the caller and
// withdraws exactly amount of underlying from the vault to the recipient.
// A vault-side rounding shortfall fails the whole call; the exact-amount
// guarantee is the point of this operation.
func (g *Gate) ExitToUnderlying(caller, recipient, vaultAddr common.Address, amount *big.Int) (*big.Int, error) {
	release, err := g.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	if err := nativecommon.Guard(g.pauses, moduleName); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, errInvalidAmount
	}
	if recipient == (common.Address{}) {
		return nil, errZeroRecipient
	}
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}

	adapter, err := g.adapterFor(vaultAddr)
	if err != nil {
		return nil, err
	}
	pair, err := g.factory.Pair(g.addr, vaultAddr)
	if err != nil {
		return nil, err
	}
	pyt := pair.PerpetualYieldToken

	if _, _, err := g.accrueYield(vaultAddr, adapter, pyt, caller, pyt.BalanceOf(caller)); err != nil {
		return nil, err
	}
	// Check the burn before paying out: once the withdrawal has left the
	// vault there is no way back.
	if err := g.checkBurnPair(pair, caller, amount); err != nil {
		return nil, err
	}
	if _, err := adapter.WithdrawUnderlying(amount, recipient, false); err != nil {
		return nil, err
	}
	if err := g.burnPair(pair, caller, amount); err != nil {
		return nil, err
	}

	g.emitter.Emit(events.ExitVault{Caller: caller, Recipient: recipient, Vault: vaultAddr, Amount: amount})
	g.metrics.RecordExit(vaultAddr.Hex())
	g.log("exit", "vault", vaultAddr.Hex(), "recipient", recipient.Hex(), "amount", amount.String())
	return new(big.Int).Set(amount), nil
}

// ExitToVaultShares burns claim tokens worth the shares' current underlying
// value and hands the shares to the recipient. Requires a transferable share
// token.
func (g *Gate) ExitToVaultShares(caller, recipient, vaultAddr common.Address, shares *big.Int) (*big.Int, error) {
	release, err := g.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	if err := nativecommon.Guard(g.pauses, moduleName); err != nil {
		return nil, err
	}
	if shares == nil || shares.Sign() < 0 {
		return nil, errInvalidAmount
	}
	if recipient == (common.Address{}) {
		return nil, errZeroRecipient
	}
	if shares.Sign() == 0 {
		return big.NewInt(0), nil
	}

	adapter, err := g.adapterFor(vaultAddr)
	if err != nil {
		return nil, err
	}
	if !adapter.SharesTransferable() {
		return nil, vault.ErrSharesNotTransferable
	}
	pair, err := g.factory.Pair(g.addr, vaultAddr)
	if err != nil {
		return nil, err
	}
	pyt := pair.PerpetualYieldToken

	burnAmount, err := g.sharesToUnderlying(adapter, shares)
	if err != nil {
		return nil, err
	}

	if _, _, err := g.accrueYield(vaultAddr, adapter, pyt, caller, pyt.BalanceOf(caller)); err != nil {
		return nil, err
	}
	if err := g.checkBurnPair(pair, caller, burnAmount); err != nil {
		return nil, err
	}
	if err := adapter.ShareToken().Transfer(g.addr, recipient, shares); err != nil {
		return nil, err
	}
	if err := g.burnPair(pair, caller, burnAmount); err != nil {
		return nil, err
	}

	g.emitter.Emit(events.ExitVault{Caller: caller, Recipient: recipient, Vault: vaultAddr, Shares: true, Amount: burnAmount})
	g.metrics.RecordExit(vaultAddr.Hex())
	return burnAmount, nil
}

// ClaimYieldInUnderlying settles and withdraws the caller's accrued yield to
// the recipient, minus the protocol fee. Rounding shortfalls cap to the
// vault's available balance so dust can never lock a claim.
func (g *Gate) ClaimYieldInUnderlying(caller, recipient, vaultAddr common.Address) (*big.Int, error) {
	release, err := g.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	if err := nativecommon.Guard(g.pauses, moduleName); err != nil {
		return nil, err
	}
	if recipient == (common.Address{}) {
		return nil, errZeroRecipient
	}

	adapter, _, us, yieldAmount, err := g.settleClaim(caller, vaultAddr)
	if err != nil {
		return nil, err
	}
	if yieldAmount.Sign() == 0 {
		return big.NewInt(0), nil
	}

	// The payout and the bank reset commit before the fee leaves the vault.
	// A failure on the fee withdrawal then forfeits only the fee itself; a
	// retried claim starts from an empty bank and cannot pay anyone twice.
	feeAmount, payout, feeRecipient := g.splitFee(yieldAmount)
	actual, err := adapter.WithdrawUnderlying(payout, recipient, true)
	if err != nil {
		return nil, err
	}
	if err := g.clearAccrued(vaultAddr, caller, us); err != nil {
		return nil, err
	}
	if feeAmount.Sign() > 0 {
		if _, err := adapter.WithdrawUnderlying(feeAmount, feeRecipient, true); err != nil {
			return nil, err
		}
	}

	g.emitter.Emit(events.ClaimYield{Caller: caller, Recipient: recipient, Vault: vaultAddr, Amount: actual, Fee: feeAmount})
	g.metrics.RecordClaim(vaultAddr.Hex())
	if feeAmount.Sign() > 0 {
		g.metrics.AddFeeCollected(vaultAddr.Hex(), baseUnits(feeAmount))
	}
	g.log("yield claimed", "vault", vaultAddr.Hex(), "recipient", recipient.Hex(), "amount", actual.String(), "fee", feeAmount.String())
	return actual, nil
}

// ClaimYieldInVaultShares pays the claim in vault shares instead of
// withdrawing underlying. Requires a transferable share token.
func (g *Gate) ClaimYieldInVaultShares(caller, recipient, vaultAddr common.Address) (*big.Int, error) {
	release, err := g.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	if err := nativecommon.Guard(g.pauses, moduleName); err != nil {
		return nil, err
	}
	if recipient == (common.Address{}) {
		return nil, errZeroRecipient
	}

	preAdapter, err := g.adapterFor(vaultAddr)
	if err != nil {
		return nil, err
	}
	if !preAdapter.SharesTransferable() {
		return nil, vault.ErrSharesNotTransferable
	}

	adapter, _, us, yieldAmount, err := g.settleClaim(caller, vaultAddr)
	if err != nil {
		return nil, err
	}
	if yieldAmount.Sign() == 0 {
		return big.NewInt(0), nil
	}

	feeAmount, payout, feeRecipient := g.splitFee(yieldAmount)
	price, err := adapter.PricePerShare()
	if err != nil {
		return nil, err
	}
	scale := fixedmath.Pow10(adapter.UnderlyingAsset().Decimals())

	// Payout shares and the bank reset commit first; a failing fee transfer
	// afterwards forfeits only the fee, never the caller's claim, and a
	// retried claim cannot pay twice. Rounding dust therefore shorts the fee
	// rather than the caller.
	held := adapter.ShareBalanceHeld()
	shareToken := adapter.ShareToken()
	payoutShares, err := fixedmath.FullMulDiv(payout, scale, price)
	if err != nil {
		return nil, err
	}
	if payoutShares.Cmp(held) > 0 {
		payoutShares = new(big.Int).Set(held)
	}
	if err := shareToken.Transfer(g.addr, recipient, payoutShares); err != nil {
		return nil, err
	}
	if err := g.clearAccrued(vaultAddr, caller, us); err != nil {
		return nil, err
	}
	if feeAmount.Sign() > 0 {
		held = new(big.Int).Sub(held, payoutShares)
		feeShares, err := fixedmath.FullMulDiv(feeAmount, scale, price)
		if err != nil {
			return nil, err
		}
		if feeShares.Cmp(held) > 0 {
			feeShares = new(big.Int).Set(held)
		}
		if err := shareToken.Transfer(g.addr, feeRecipient, feeShares); err != nil {
			return nil, err
		}
	}

	g.emitter.Emit(events.ClaimYield{Caller: caller, Recipient: recipient, Vault: vaultAddr, Amount: payout, Fee: feeAmount})
	g.metrics.RecordClaim(vaultAddr.Hex())
	if feeAmount.Sign() > 0 {
		g.metrics.AddFeeCollected(vaultAddr.Hex(), baseUnits(feeAmount))
	}
	return payoutShares, nil
}

// ClaimYieldAndEnter compounds: the caller's accrued yield, minus the
// protocol fee, becomes new principal backing a freshly minted claim-token
// pair for the recipient. The principal never leaves the vault.
func (g *Gate) ClaimYieldAndEnter(caller, recipient, vaultAddr common.Address) (*big.Int, error) {
	release, err := g.guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	if err := nativecommon.Guard(g.pauses, moduleName); err != nil {
		return nil, err
	}
	if recipient == (common.Address{}) {
		return nil, errZeroRecipient
	}

	adapter, pair, us, yieldAmount, err := g.settleClaim(caller, vaultAddr)
	if err != nil {
		return nil, err
	}
	if yieldAmount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	pyt := pair.PerpetualYieldToken

	// The mint changes the recipient's balance; their pending yield must be
	// settled against the pre-mint balance first.
	if recipient != caller {
		if _, _, err := g.accrueYield(vaultAddr, adapter, pyt, recipient, pyt.BalanceOf(recipient)); err != nil {
			return nil, err
		}
	}

	// The mint and the bank reset commit before the fee withdrawal; a fee
	// failure leaves the fee backing in the vault and a retried claim starts
	// from an empty bank.
	feeAmount, remainder, feeRecipient := g.splitFee(yieldAmount)
	if err := g.mintPair(pair, recipient, remainder); err != nil {
		return nil, err
	}
	if err := g.clearAccrued(vaultAddr, caller, us); err != nil {
		return nil, err
	}
	if feeAmount.Sign() > 0 {
		if _, err := adapter.WithdrawUnderlying(feeAmount, feeRecipient, true); err != nil {
			return nil, err
		}
	}

	g.emitter.Emit(events.ClaimYield{Caller: caller, Recipient: recipient, Vault: vaultAddr, Amount: remainder, Fee: feeAmount, Compounded: true})
	g.metrics.RecordClaim(vaultAddr.Hex())
	if feeAmount.Sign() > 0 {
		g.metrics.AddFeeCollected(vaultAddr.Hex(), baseUnits(feeAmount))
	}
	return remainder, nil
}

// BeforePerpetualYieldTokenTransfer is the settlement hook the perpetual
// yield token invokes before mutating balances. Balances are the
// PRE-transfer balances: settlement pays for yield earned while holding the
// balance held up to this instant. Only the vault's own PYT may call it.
func (g *Gate) BeforePerpetualYieldTokenTransfer(caller, vaultAddr, from, to common.Address, amount, fromBalance, toBalance *big.Int) error {
	release, err := g.guard.Acquire()
	if err != nil {
		return err
	}
	defer release()

	pair, err := g.factory.Pair(g.addr, vaultAddr)
	if err != nil {
		return err
	}
	if caller != pair.PerpetualYieldToken.Address() {
		return errUnauthorizedHook
	}
	if from == to {
		return nil
	}
	adapter, err := g.adapterFor(vaultAddr)
	if err != nil {
		return err
	}
	pyt := pair.PerpetualYieldToken

	// Sender first: they definitionally held a balance, so they are settled
	// and banked. An uninitialized recipient banks nothing (no retroactive
	// yield); the accrual stamps their snapshot to "now" either way, so
	// future yield starts cleanly.
	if _, _, err := g.accrueYield(vaultAddr, adapter, pyt, from, fromBalance); err != nil {
		return err
	}
	if _, _, err := g.accrueYield(vaultAddr, adapter, pyt, to, toBalance); err != nil {
		return err
	}
	return nil
}

// GetClaimableYieldAmount returns the yield the user could claim right now,
// without mutating any state.
func (g *Gate) GetClaimableYieldAmount(vaultAddr, user common.Address) (*big.Int, error) {
	adapter, err := g.adapterFor(vaultAddr)
	if err != nil {
		return nil, err
	}
	pair, err := g.factory.Pair(g.addr, vaultAddr)
	if err != nil {
		return nil, err
	}
	vs, err := g.ensureVaultState(vaultAddr)
	if err != nil {
		return nil, err
	}
	us, err := g.ensureUserState(vaultAddr, user)
	if err != nil {
		return nil, err
	}
	if us.YieldPerTokenStored.Sign() == 0 {
		return new(big.Int).Set(us.AccruedYield), nil
	}

	currentPrice, err := adapter.PricePerShare()
	if err != nil {
		return nil, err
	}
	pyt := pair.PerpetualYieldToken
	scale := fixedmath.Pow10(adapter.UnderlyingAsset().Decimals())
	updated, err := computeYieldPerToken(vs, pyt.TotalSupply(), adapter.ShareBalanceHeld(), currentPrice, scale)
	if err != nil {
		return nil, err
	}
	previous := new(big.Int).Sub(us.YieldPerTokenStored, oneShift)
	span := new(big.Int).Sub(updated, previous)
	if span.Sign() <= 0 {
		return new(big.Int).Set(us.AccruedYield), nil
	}
	pending, err := fixedmath.FullMulDiv(pyt.BalanceOf(user), span, Precision)
	if err != nil {
		return nil, err
	}
	return pending.Add(pending, us.AccruedYield), nil
}

// GetYieldPerToken returns the accumulator value a settlement would advance
// to right now.
func (g *Gate) GetYieldPerToken(vaultAddr common.Address) (*big.Int, error) {
	adapter, err := g.adapterFor(vaultAddr)
	if err != nil {
		return nil, err
	}
	pair, err := g.factory.Pair(g.addr, vaultAddr)
	if err != nil {
		return nil, err
	}
	vs, err := g.ensureVaultState(vaultAddr)
	if err != nil {
		return nil, err
	}
	currentPrice, err := adapter.PricePerShare()
	if err != nil {
		return nil, err
	}
	scale := fixedmath.Pow10(adapter.UnderlyingAsset().Decimals())
	pyt := pair.PerpetualYieldToken
	return computeYieldPerToken(vs, pyt.TotalSupply(), adapter.ShareBalanceHeld(), currentPrice, scale)
}

// GetPricePerVaultShare reports the adapter's live share price.
func (g *Gate) GetPricePerVaultShare(vaultAddr common.Address) (*big.Int, error) {
	adapter, err := g.adapterFor(vaultAddr)
	if err != nil {
		return nil, err
	}
	return adapter.PricePerShare()
}

// settleClaim runs the shared prologue of the claim variants: resolve the
// vault, settle the caller, and read their banked yield. The bank is cleared
// by clearAccrued only after the payout succeeded.
func (g *Gate) settleClaim(caller, vaultAddr common.Address) (vault.Adapter, *factory.YieldTokenPair, *UserState, *big.Int, error) {
	adapter, err := g.adapterFor(vaultAddr)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	pair, err := g.factory.Pair(g.addr, vaultAddr)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	pyt := pair.PerpetualYieldToken
	_, us, err := g.accrueYield(vaultAddr, adapter, pyt, caller, pyt.BalanceOf(caller))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return adapter, pair, us, new(big.Int).Set(us.AccruedYield), nil
}

func (g *Gate) clearAccrued(vaultAddr, user common.Address, us *UserState) error {
	us.AccruedYield = big.NewInt(0)
	return g.state.PutUserState(vaultAddr, user, us)
}

// splitFee applies the protocol fee (0.1% steps) to a claimed amount.
func (g *Gate) splitFee(yieldAmount *big.Int) (fee, payout *big.Int, recipient common.Address) {
	info := g.factory.ProtocolFee()
	if info.FeeSteps == 0 || info.Recipient == (common.Address{}) {
		return big.NewInt(0), new(big.Int).Set(yieldAmount), common.Address{}
	}
	fee = new(big.Int).Mul(yieldAmount, big.NewInt(int64(info.FeeSteps)))
	fee.Quo(fee, feeDenominator)
	payout = new(big.Int).Sub(yieldAmount, fee)
	return fee, payout, info.Recipient
}

func (g *Gate) mintPair(pair *factory.YieldTokenPair, recipient common.Address, amount *big.Int) error {
	if err := pair.NegativeYieldToken.Mint(g.addr, recipient, amount); err != nil {
		return err
	}
	return pair.PerpetualYieldToken.Mint(g.addr, recipient, amount)
}

// checkBurnPair verifies the holder can cover a pair burn without mutating
// anything.
func (g *Gate) checkBurnPair(pair *factory.YieldTokenPair, holder common.Address, amount *big.Int) error {
	if pair.NegativeYieldToken.BalanceOf(holder).Cmp(amount) < 0 {
		return token.ErrInsufficientBalance
	}
	if pair.PerpetualYieldToken.BalanceOf(holder).Cmp(amount) < 0 {
		return token.ErrInsufficientBalance
	}
	return nil
}

func (g *Gate) burnPair(pair *factory.YieldTokenPair, holder common.Address, amount *big.Int) error {
	if err := pair.NegativeYieldToken.Burn(g.addr, holder, amount); err != nil {
		return err
	}
	return pair.PerpetualYieldToken.Burn(g.addr, holder, amount)
}

func (g *Gate) log(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}

// sharesToUnderlying converts a share amount to underlying at the current
// price, rounding down.
func (g *Gate) sharesToUnderlying(adapter vault.Adapter, shares *big.Int) (*big.Int, error) {
	price, err := adapter.PricePerShare()
	if err != nil {
		return nil, err
	}
	scale := fixedmath.Pow10(adapter.UnderlyingAsset().Decimals())
	return fixedmath.FullMulDiv(shares, price, scale)
}
