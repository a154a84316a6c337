// Package state provides the keyed storage that governance components
// mutate. Storage is addressed by (account, 32-byte slot) and journaled
// with snapshot/revert semantics, so a failed operation can be rolled
// back without partial effects.
package state

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/helmdao/helm/stackedmap"
)

type storageKey struct {
	addr common.Address
	key  common.Hash
}

// State is an in-memory revertable storage. The zero value is not
// usable; create instances with New.
type State struct {
	committed map[storageKey][]byte
	sm        *stackedmap.StackedMap[storageKey, []byte]
}

// New creates an empty state.
func New() *State {
	committed := make(map[storageKey][]byte)
	sm := stackedmap.New(func(k storageKey) ([]byte, bool) {
		v, ok := committed[k]
		return v, ok
	})
	// base level, never popped
	sm.Push()
	return &State{committed: committed, sm: sm}
}

// GetRawStorage returns the raw bytes stored at (addr, key). Missing
// slots read as nil.
func (s *State) GetRawStorage(addr common.Address, key common.Hash) []byte {
	if v, ok := s.sm.Get(storageKey{addr, key}); ok {
		return v
	}
	return nil
}

// SetRawStorage stores raw bytes at (addr, key). Setting nil or empty
// clears the slot.
func (s *State) SetRawStorage(addr common.Address, key common.Hash, raw []byte) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage reads a 32-byte value at (addr, key).
func (s *State) GetStorage(addr common.Address, key common.Hash) common.Hash {
	return common.BytesToHash(s.GetRawStorage(addr, key))
}

// SetStorage writes a 32-byte value at (addr, key). Writing the zero
// hash clears the slot.
func (s *State) SetStorage(addr common.Address, key common.Hash, value common.Hash) {
	if value == (common.Hash{}) {
		s.SetRawStorage(addr, key, nil)
		return
	}
	s.SetRawStorage(addr, key, value.Bytes())
}

// DecodeStorage reads the slot and passes its raw content to dec.
// Missing slots are passed as empty bytes.
func (s *State) DecodeStorage(addr common.Address, key common.Hash, dec func([]byte) error) error {
	if err := dec(s.GetRawStorage(addr, key)); err != nil {
		return errors.Wrap(err, "decode storage")
	}
	return nil
}

// EncodeStorage stores the bytes produced by enc into the slot.
// A nil/empty result clears the slot.
func (s *State) EncodeStorage(addr common.Address, key common.Hash, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return errors.Wrap(err, "encode storage")
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// Snapshot takes a revision of the state and returns its id.
func (s *State) Snapshot() int {
	return s.sm.Push()
}

// RevertTo discards all changes made after the given revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Commit flattens the journal into the committed map and resets the
// snapshot stack.
func (s *State) Commit() {
	s.sm.Journal(func(k storageKey, v []byte) bool {
		if len(v) == 0 {
			delete(s.committed, k)
		} else {
			s.committed[k] = v
		}
		return true
	})
	s.sm.PopTo(0)
	s.sm.Push()
}
