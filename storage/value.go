package storage

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Value is a single-slot RLP-encoded record, like a state variable
// of struct type in a contract.
type Value[V any] struct {
	context *Context
	pos     common.Hash
}

// NewValue creates a single-slot record at the named position.
func NewValue[V any](context *Context, name string) *Value[V] {
	return &Value[V]{context: context, pos: NameToSlot(name)}
}

// Get loads the record. A missing record yields the zero value.
func (v *Value[V]) Get() (value V, err error) {
	err = v.context.state.DecodeStorage(v.context.address, v.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		v.context.UseGas(slots(len(raw)) * SloadGas)
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores the record.
func (v *Value[V]) Set(value V, isNew bool) error {
	return v.context.state.EncodeStorage(v.context.address, v.pos, func() ([]byte, error) {
		raw, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, err
		}
		if isNew {
			v.context.UseGas(slots(len(raw)) * SstoreSetGas)
		} else {
			v.context.UseGas(slots(len(raw)) * SstoreResetGas)
		}
		return raw, nil
	})
}

// Uint256 is a single-slot unsigned integer, stored as a 32-byte
// big-endian word.
type Uint256 struct {
	context *Context
	pos     common.Hash
}

// NewUint256 creates an integer slot at the named position.
func NewUint256(context *Context, name string) *Uint256 {
	return &Uint256{context: context, pos: NameToSlot(name)}
}

// Get reads the current value.
func (u *Uint256) Get() *big.Int {
	u.context.UseGas(SloadGas)
	word := u.context.state.GetStorage(u.context.address, u.pos)
	return new(big.Int).SetBytes(word.Bytes())
}

// Set writes the value. Values wider than 256 bits are rejected.
func (u *Uint256) Set(value *big.Int) error {
	word, overflow := uint256.FromBig(value)
	if overflow || value.Sign() < 0 {
		return errors.New("value out of uint256 range")
	}
	u.context.UseGas(SstoreResetGas)
	u.context.state.SetStorage(u.context.address, u.pos, word.Bytes32())
	return nil
}

// Add increases the stored value.
func (u *Uint256) Add(delta *big.Int) error {
	v := u.Get()
	return u.Set(v.Add(v, delta))
}

// Sub decreases the stored value. Underflow is rejected.
func (u *Uint256) Sub(delta *big.Int) error {
	v := u.Get()
	v.Sub(v, delta)
	if v.Sign() < 0 {
		return errors.New("uint256 underflow")
	}
	return u.Set(v)
}
