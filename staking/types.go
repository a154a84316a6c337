package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// checkpoint snapshots a staker's standing as of the beginning of
// Epoch. Values carry forward until a later checkpoint overrides
// them.
type checkpoint struct {
	Epoch          uint64
	Stake          *big.Int
	DelegatedStake *big.Int
	Representative common.Address
}

// history is a staker's checkpoint list, ascending by epoch.
type history struct {
	Checkpoints []checkpoint
}

// at returns the checkpoint in effect at the given epoch, or nil if
// the history starts later.
func (h *history) at(epoch uint64) *checkpoint {
	// short lists, newest entries at the tail; walk backwards
	for i := len(h.Checkpoints) - 1; i >= 0; i-- {
		if h.Checkpoints[i].Epoch <= epoch {
			return &h.Checkpoints[i]
		}
	}
	return nil
}

// upsert returns a mutable checkpoint for exactly the given epoch,
// seeded from the one in effect, inserting it in order if absent.
func (h *history) upsert(epoch uint64, self common.Address) *checkpoint {
	i := len(h.Checkpoints)
	for i > 0 && h.Checkpoints[i-1].Epoch > epoch {
		i--
	}
	if i > 0 && h.Checkpoints[i-1].Epoch == epoch {
		return &h.Checkpoints[i-1]
	}

	seed := checkpoint{
		Epoch:          epoch,
		Stake:          new(big.Int),
		DelegatedStake: new(big.Int),
		Representative: self,
	}
	if i > 0 {
		prev := h.Checkpoints[i-1]
		seed.Stake = new(big.Int).Set(prev.Stake)
		seed.DelegatedStake = new(big.Int).Set(prev.DelegatedStake)
		seed.Representative = prev.Representative
	}
	h.Checkpoints = append(h.Checkpoints, checkpoint{})
	copy(h.Checkpoints[i+1:], h.Checkpoints[i:])
	h.Checkpoints[i] = seed
	return &h.Checkpoints[i]
}

// Event is a staking ledger event.
type Event interface{ staking() }

// Deposited is emitted when stake is added.
type Deposited struct {
	Staker common.Address
	Amount *big.Int
	Epoch  uint64 // epoch the deposit takes effect
}

// Withdrawn is emitted when stake is removed.
type Withdrawn struct {
	Staker common.Address
	Amount *big.Int
}

// Delegated is emitted when a staker picks a representative.
type Delegated struct {
	Staker         common.Address
	Representative common.Address
	Epoch          uint64 // epoch the delegation takes effect
}

func (Deposited) staking() {}
func (Withdrawn) staking() {}
func (Delegated) staking() {}
