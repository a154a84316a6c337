// Package staking implements the checkpointed staking ledger the
// governance engine votes against. Balances change immediately;
// voting weight (stake, delegated stake, representative) is
// checkpointed per epoch, with deposits and delegation changes taking
// effect from the next epoch and withdrawals clawing back the current
// epoch's weight when the remaining balance no longer covers it.
package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/helmdao/helm/gov"
	"github.com/helmdao/helm/reverts"
	"github.com/helmdao/helm/state"
	"github.com/helmdao/helm/storage"
)

// Governance is the engine side of the withdrawal contract. The
// ledger invokes it synchronously inside Withdraw whenever
// checkpointed voting weight is reduced.
type Governance interface {
	HandleWithdrawal(caller, staker common.Address, amount *big.Int) error
}

// Ledger is the staking ledger bound to its storage namespace.
type Ledger struct {
	addr     common.Address
	state    *state.State
	schedule gov.Schedule
	now      func() uint64

	balances  *storage.Mapping[common.Address, *big.Int]
	histories *storage.Mapping[common.Address, *history]

	governance Governance
	sink       func(Event)
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithEventSink routes ledger events to sink.
func WithEventSink(sink func(Event)) Option {
	return func(l *Ledger) { l.sink = sink }
}

// New creates a ledger storing under addr.
func New(addr common.Address, st *state.State, schedule gov.Schedule, now func() uint64, opts ...Option) *Ledger {
	ctx := storage.NewContext(addr, st, nil)
	l := &Ledger{
		addr:      addr,
		state:     st,
		schedule:  schedule,
		now:       now,
		balances:  storage.NewMapping[common.Address, *big.Int](ctx, "balances"),
		histories: storage.NewMapping[common.Address, *history](ctx, "checkpoints"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Address returns the ledger's identity, the caller it presents to
// the governance hook.
func (l *Ledger) Address() common.Address {
	return l.addr
}

// SetGovernance wires the withdrawal hook. Must be called once before
// any Withdraw.
func (l *Ledger) SetGovernance(g Governance) {
	l.governance = g
}

func (l *Ledger) emit(ev Event) {
	if l.sink != nil {
		l.sink(ev)
	}
}

// run executes fn as an all-or-nothing transaction.
func (l *Ledger) run(fn func() error) error {
	rev := l.state.Snapshot()
	if err := fn(); err != nil {
		l.state.RevertTo(rev)
		return err
	}
	return nil
}

func (l *Ledger) currentEpoch() uint64 {
	return l.schedule.EpochNumber(l.now())
}

func (l *Ledger) getHistory(staker common.Address) (*history, error) {
	h, err := l.histories.Get(staker)
	if err != nil {
		return nil, errors.Wrap(err, "get checkpoint history")
	}
	if h == nil {
		h = &history{}
	}
	return h, nil
}

func (l *Ledger) setHistory(staker common.Address, h *history) error {
	return errors.Wrap(l.histories.Set(staker, h, false), "set checkpoint history")
}

func (l *Ledger) balanceOf(staker common.Address) (*big.Int, error) {
	b, err := l.balances.Get(staker)
	if err != nil {
		return nil, errors.Wrap(err, "get balance")
	}
	if b == nil {
		b = new(big.Int)
	}
	return b, nil
}

// addDelegated adjusts rep's delegated stake checkpoint at epoch by
// delta (which may be negative; the result is floored at zero).
func (l *Ledger) addDelegated(rep common.Address, epoch uint64, delta *big.Int) error {
	h, err := l.getHistory(rep)
	if err != nil {
		return err
	}
	cp := h.upsert(epoch, rep)
	cp.DelegatedStake.Add(cp.DelegatedStake, delta)
	if cp.DelegatedStake.Sign() < 0 {
		cp.DelegatedStake.SetInt64(0)
	}
	return l.setHistory(rep, h)
}

// Deposit adds amount to the staker's balance. The added weight
// counts from the next epoch.
func (l *Ledger) Deposit(staker common.Address, amount *big.Int) error {
	return l.run(func() error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.Require("deposit: amount is 0")
		}
		next := l.currentEpoch() + 1

		balance, err := l.balanceOf(staker)
		if err != nil {
			return err
		}
		if err := l.balances.Set(staker, new(big.Int).Add(balance, amount), false); err != nil {
			return errors.Wrap(err, "set balance")
		}

		h, err := l.getHistory(staker)
		if err != nil {
			return err
		}
		cp := h.upsert(next, staker)
		cp.Stake.Add(cp.Stake, amount)
		rep := cp.Representative
		if err := l.setHistory(staker, h); err != nil {
			return err
		}

		if rep != staker {
			if err := l.addDelegated(rep, next, amount); err != nil {
				return err
			}
		}
		l.emit(Deposited{Staker: staker, Amount: new(big.Int).Set(amount), Epoch: next})
		return nil
	})
}

// Withdraw removes amount from the staker's balance. The next
// epoch's weight always shrinks; if the remaining balance dips below
// the current epoch's checkpointed stake, the difference is clawed
// back from the current epoch too and reported to the governance
// hook against whoever holds that voting weight (the staker, or
// their representative).
func (l *Ledger) Withdraw(staker common.Address, amount *big.Int) error {
	return l.run(func() error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.Require("withdraw: amount is 0")
		}
		balance, err := l.balanceOf(staker)
		if err != nil {
			return err
		}
		if balance.Cmp(amount) < 0 {
			return reverts.Require("withdraw: latest amount staked < withdrawal amount")
		}
		newBalance := new(big.Int).Sub(balance, amount)
		if err := l.balances.Set(staker, newBalance, false); err != nil {
			return errors.Wrap(err, "set balance")
		}

		cur := l.currentEpoch()
		next := cur + 1

		h, err := l.getHistory(staker)
		if err != nil {
			return err
		}

		// current-epoch clawback, decided before touching checkpoints
		var penalty *big.Int
		var repCur common.Address
		if cp := h.at(cur); cp != nil && cp.Stake.Cmp(newBalance) > 0 {
			penalty = new(big.Int).Sub(cp.Stake, newBalance)
			curCp := h.upsert(cur, staker)
			curCp.Stake.Set(newBalance)
			repCur = curCp.Representative
		}

		nextCp := h.upsert(next, staker)
		nextDelta := new(big.Int).Sub(nextCp.Stake, newBalance)
		if nextDelta.Sign() > 0 {
			nextCp.Stake.Set(newBalance)
		}
		repNext := nextCp.Representative
		if err := l.setHistory(staker, h); err != nil {
			return err
		}

		if repNext != staker && nextDelta.Sign() > 0 {
			if err := l.addDelegated(repNext, next, new(big.Int).Neg(nextDelta)); err != nil {
				return err
			}
		}

		if penalty != nil {
			hookTarget := staker
			if repCur != staker {
				hookTarget = repCur
				if err := l.addDelegated(repCur, cur, new(big.Int).Neg(penalty)); err != nil {
					return err
				}
			}
			if l.governance == nil {
				return errors.New("withdraw: governance hook not wired")
			}
			if err := l.governance.HandleWithdrawal(l.addr, hookTarget, penalty); err != nil {
				return err
			}
		}

		l.emit(Withdrawn{Staker: staker, Amount: new(big.Int).Set(amount)})
		return nil
	})
}

// Delegate points the staker's voting weight at a representative
// from the next epoch on. Delegating to oneself undoes a previous
// delegation. Delegation is one hop: a representative's own
// delegation never cascades.
func (l *Ledger) Delegate(staker, representative common.Address) error {
	return l.run(func() error {
		if representative == (common.Address{}) {
			return reverts.Require("delegate: representative 0")
		}
		next := l.currentEpoch() + 1

		h, err := l.getHistory(staker)
		if err != nil {
			return err
		}
		cp := h.upsert(next, staker)
		oldRep := cp.Representative
		if oldRep == representative {
			return nil
		}
		stake := new(big.Int).Set(cp.Stake)
		cp.Representative = representative
		if err := l.setHistory(staker, h); err != nil {
			return err
		}

		if oldRep != staker {
			if err := l.addDelegated(oldRep, next, new(big.Int).Neg(stake)); err != nil {
				return err
			}
		}
		if representative != staker {
			if err := l.addDelegated(representative, next, stake); err != nil {
				return err
			}
		}
		l.emit(Delegated{Staker: staker, Representative: representative, Epoch: next})
		return nil
	})
}

// BalanceOf returns the staker's raw balance.
func (l *Ledger) BalanceOf(staker common.Address) (*big.Int, error) {
	return l.balanceOf(staker)
}

// StakeOf returns the staker's own checkpointed stake for an epoch.
// Epochs beyond the next are unknown and read as zero.
func (l *Ledger) StakeOf(staker common.Address, epoch uint64) (*big.Int, error) {
	if epoch > l.currentEpoch()+1 {
		return new(big.Int), nil
	}
	h, err := l.getHistory(staker)
	if err != nil {
		return nil, err
	}
	if cp := h.at(epoch); cp != nil {
		return new(big.Int).Set(cp.Stake), nil
	}
	return new(big.Int), nil
}

// DelegatedStakeOf returns the stake delegated to the staker for an
// epoch.
func (l *Ledger) DelegatedStakeOf(staker common.Address, epoch uint64) (*big.Int, error) {
	if epoch > l.currentEpoch()+1 {
		return new(big.Int), nil
	}
	h, err := l.getHistory(staker)
	if err != nil {
		return nil, err
	}
	if cp := h.at(epoch); cp != nil {
		return new(big.Int).Set(cp.DelegatedStake), nil
	}
	return new(big.Int), nil
}

// RepresentativeOf returns who votes with the staker's stake in an
// epoch; stakers represent themselves unless delegated.
func (l *Ledger) RepresentativeOf(staker common.Address, epoch uint64) (common.Address, error) {
	if epoch > l.currentEpoch()+1 {
		return staker, nil
	}
	h, err := l.getHistory(staker)
	if err != nil {
		return common.Address{}, err
	}
	if cp := h.at(epoch); cp != nil {
		return cp.Representative, nil
	}
	return staker, nil
}
