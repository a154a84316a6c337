package storage

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Key is anything usable as a mapping key.
type Key interface {
	Bytes() []byte
}

// U64Key adapts an integer to a mapping key.
type U64Key uint64

// Bytes implements Key.
func (k U64Key) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

// PairKey joins two keys into a composite mapping key.
type PairKey struct {
	A, B Key
}

// Bytes implements Key.
func (k PairKey) Bytes() []byte {
	return append(k.A.Bytes(), k.B.Bytes()...)
}

// Mapping is a key/value storage abstraction similar to a Solidity
// mapping: each element lives in its own slot derived from the key
// and the mapping's base position. Values are RLP encoded.
type Mapping[K Key, V any] struct {
	context *Context
	basePos common.Hash
}

// NewMapping creates a mapping rooted at the named base position.
func NewMapping[K Key, V any](context *Context, name string) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: NameToSlot(name)}
}

// Get loads the value stored under key. A missing element yields the
// zero value of V (nil for pointer types).
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	position := elementSlot(m.basePos, key.Bytes())
	err = m.context.state.DecodeStorage(m.context.address, position, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		m.context.UseGas(slots(len(raw)) * SloadGas)
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Set stores value under key. isNew distinguishes first writes from
// overwrites for cost accounting.
func (m *Mapping[K, V]) Set(key K, value V, isNew bool) error {
	position := elementSlot(m.basePos, key.Bytes())
	return m.context.state.EncodeStorage(m.context.address, position, func() ([]byte, error) {
		raw, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, err
		}
		if isNew {
			m.context.UseGas(slots(len(raw)) * SstoreSetGas)
		} else {
			m.context.UseGas(slots(len(raw)) * SstoreResetGas)
		}
		return raw, nil
	})
}

// Delete clears the element stored under key.
func (m *Mapping[K, V]) Delete(key K) {
	position := elementSlot(m.basePos, key.Bytes())
	m.context.UseGas(SstoreResetGas)
	m.context.state.SetRawStorage(m.context.address, position, nil)
}
