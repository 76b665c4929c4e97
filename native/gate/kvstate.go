package gate

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/timeless-fi/timeless/storage"
)

var (
	vaultStatePrefix = []byte("ts/vault/")
	userStatePrefix  = []byte("ts/user/")
)

type vaultStateRecord struct {
	PricePerShareStored *big.Int
	YieldPerTokenStored *big.Int
}

type userStateRecord struct {
	YieldPerTokenStored *big.Int
	AccruedYield        *big.Int
}

// KVState persists accrual records in a key-value store, one RLP-encoded
// record per vault and per (vault, user) pair.
type KVState struct {
	db storage.Database
}

var _ State = (*KVState)(nil)

func NewKVState(db storage.Database) *KVState {
	return &KVState{db: db}
}

func vaultStateKey(vault common.Address) []byte {
	key := make([]byte, 0, len(vaultStatePrefix)+common.AddressLength)
	key = append(key, vaultStatePrefix...)
	return append(key, vault.Bytes()...)
}

func userStateKey(vault, user common.Address) []byte {
	key := make([]byte, 0, len(userStatePrefix)+2*common.AddressLength)
	key = append(key, userStatePrefix...)
	key = append(key, vault.Bytes()...)
	return append(key, user.Bytes()...)
}

func (s *KVState) VaultState(vault common.Address) (*VaultState, error) {
	raw, err := s.db.Get(vaultStateKey(vault))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec vaultStateRecord
	if err := rlp.DecodeBytes(raw, &rec); err != nil {
		return nil, err
	}
	return &VaultState{
		PricePerShareStored: rec.PricePerShareStored,
		YieldPerTokenStored: rec.YieldPerTokenStored,
	}, nil
}

func (s *KVState) PutVaultState(vault common.Address, vs *VaultState) error {
	if vs == nil {
		return errNilState
	}
	raw, err := rlp.EncodeToBytes(&vaultStateRecord{
		PricePerShareStored: vs.PricePerShareStored,
		YieldPerTokenStored: vs.YieldPerTokenStored,
	})
	if err != nil {
		return err
	}
	return s.db.Put(vaultStateKey(vault), raw)
}

func (s *KVState) UserState(vault, user common.Address) (*UserState, error) {
	raw, err := s.db.Get(userStateKey(vault, user))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec userStateRecord
	if err := rlp.DecodeBytes(raw, &rec); err != nil {
		return nil, err
	}
	return &UserState{
		YieldPerTokenStored: rec.YieldPerTokenStored,
		AccruedYield:        rec.AccruedYield,
	}, nil
}

func (s *KVState) PutUserState(vault, user common.Address, us *UserState) error {
	if us == nil {
		return errNilState
	}
	raw, err := rlp.EncodeToBytes(&userStateRecord{
		YieldPerTokenStored: us.YieldPerTokenStored,
		AccruedYield:        us.AccruedYield,
	})
	if err != nil {
		return err
	}
	return s.db.Put(userStateKey(vault, user), raw)
}
