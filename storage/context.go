// Package storage provides typed storage bindings for governance
// components: Solidity-like mappings and single-slot values over
// state.State, with per-slot cost accounting through a pluggable
// charger.
package storage

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/helmdao/helm/state"
)

// Storage access costs, charged per 32-byte slot touched.
const (
	SloadGas       uint64 = 200
	SstoreSetGas   uint64 = 20000
	SstoreResetGas uint64 = 5000
)

// UseGasFunc receives the cost of each storage access. A nil charger
// disables accounting.
type UseGasFunc func(gas uint64)

// Context binds a component's storage namespace: the account its
// slots live under, the backing state and the cost charger.
type Context struct {
	address common.Address
	state   *state.State
	charger UseGasFunc
}

// NewContext creates a storage context.
func NewContext(address common.Address, state *state.State, charger UseGasFunc) *Context {
	return &Context{address: address, state: state, charger: charger}
}

// State exposes the backing state.
func (c *Context) State() *state.State {
	return c.state
}

// Address returns the account the context's slots live under.
func (c *Context) Address() common.Address {
	return c.address
}

// UseGas charges storage access cost.
func (c *Context) UseGas(gas uint64) {
	if c.charger != nil {
		c.charger(gas)
	}
}

func slots(rawLen int) uint64 {
	return (uint64(rawLen) + 31) / 32
}

// NameToSlot derives a base storage slot from a name.
func NameToSlot(name string) common.Hash {
	return common.BytesToHash([]byte(name))
}

func elementSlot(basePos common.Hash, keyBytes []byte) common.Hash {
	return crypto.Keccak256Hash(keyBytes, basePos.Bytes())
}
