package gate

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// VaultState is the global accumulator record for one vault.
type VaultState struct {
	// PricePerShareStored is the underlying-per-share snapshot at the last
	// settlement. It only ratchets upward: a vault-side price decrease is
	// "no new yield", never a lower baseline that would double-count the
	// recovery.
	PricePerShareStored *big.Int
	// YieldPerTokenStored is the cumulative yield attributed per unit of
	// perpetual yield token, scaled by Precision. Monotonically
	// non-decreasing.
	YieldPerTokenStored *big.Int
}

// UserState is the per-user settlement record for one vault.
type UserState struct {
	// YieldPerTokenStored is the global accumulator snapshot at the user's
	// last settlement, shifted by +1 so zero unambiguously means "never
	// settled".
	YieldPerTokenStored *big.Int
	// AccruedYield is yield banked for the user but not yet withdrawn, in
	// underlying units.
	AccruedYield *big.Int
}

// State is the engine's persistence layer. Lookups return nil (not an error)
// for records that were never written.
type State interface {
	VaultState(vault common.Address) (*VaultState, error)
	PutVaultState(vault common.Address, vs *VaultState) error
	UserState(vault, user common.Address) (*UserState, error)
	PutUserState(vault, user common.Address, us *UserState) error
}

type userKey struct {
	vault common.Address
	user  common.Address
}

// MemState is the map-backed State used in tests and by embedders that do not
// need persistence.
type MemState struct {
	mu     sync.RWMutex
	vaults map[common.Address]*VaultState
	users  map[userKey]*UserState
}

var _ State = (*MemState)(nil)

func NewMemState() *MemState {
	return &MemState{
		vaults: make(map[common.Address]*VaultState),
		users:  make(map[userKey]*UserState),
	}
}

func (s *MemState) VaultState(vault common.Address) (*VaultState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vaults[vault], nil
}

func (s *MemState) PutVaultState(vault common.Address, vs *VaultState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vaults[vault] = vs
	return nil
}

func (s *MemState) UserState(vault, user common.Address) (*UserState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userKey{vault: vault, user: user}], nil
}

func (s *MemState) PutUserState(vault, user common.Address, us *UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userKey{vault: vault, user: user}] = us
	return nil
}
