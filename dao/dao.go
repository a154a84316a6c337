// Package dao implements the epoch-scoped campaign lifecycle and
// delegated-stake voting engine: campaign creation and cancellation,
// the vote-count ledger with its withdrawal-safe point adjustment,
// winning-option resolution and the memoized network-fee / BRR
// result caches.
package dao

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/helmdao/helm/gov"
	"github.com/helmdao/helm/reverts"
	"github.com/helmdao/helm/state"
	"github.com/helmdao/helm/storage"
)

// Staking is the view of the staking ledger the engine votes
// against. All values are checkpointed per epoch and stable for past
// epochs.
type Staking interface {
	StakeOf(staker common.Address, epoch uint64) (*big.Int, error)
	DelegatedStakeOf(staker common.Address, epoch uint64) (*big.Int, error)
	RepresentativeOf(staker common.Address, epoch uint64) (common.Address, error)
}

// TotalSupply reads the governance token's total supply. It is
// consulted once per campaign, at creation time.
type TotalSupply func() (*big.Int, error)

// Config is the construction-time configuration. All fields are
// validated by New and immutable afterwards.
type Config struct {
	EpochPeriod         uint64 // seconds per epoch
	StartTime           uint64 // first epoch start, unix seconds
	MinCampaignDuration uint64 // seconds

	DefaultNetworkFeeBps uint64
	DefaultRewardBps     uint64
	DefaultRebateBps     uint64

	Operator       common.Address // the only identity allowed to submit/cancel campaigns
	StakingAddress common.Address // the only identity allowed to call the withdrawal hook
}

// DAO is the governance engine bound to its storage namespace.
type DAO struct {
	addr     common.Address
	state    *state.State
	schedule gov.Schedule
	now      func() uint64

	minCampaignDuration uint64
	operator            common.Address
	stakingAddr         common.Address

	staking Staking
	supply  TotalSupply

	store *schema
	sink  func(Event)
}

// Option configures a DAO.
type Option func(*DAO)

// WithEventSink routes engine events to sink.
func WithEventSink(sink func(Event)) Option {
	return func(d *DAO) { d.sink = sink }
}

// WithGasCharger installs a per-slot storage cost charger.
func WithGasCharger(charger storage.UseGasFunc) Option {
	return func(d *DAO) { d.store = newSchema(d.addr, d.state, charger) }
}

// New creates the engine storing under addr. now supplies the
// current unix time for all lifecycle decisions.
func New(
	addr common.Address,
	st *state.State,
	staking Staking,
	supply TotalSupply,
	now func() uint64,
	cfg Config,
	opts ...Option,
) (*DAO, error) {
	schedule, err := gov.NewSchedule(cfg.EpochPeriod, cfg.StartTime, now())
	if err != nil {
		return nil, err
	}
	if supply == nil {
		return nil, reverts.Require("ctor: token is 0")
	}
	if staking == nil || cfg.StakingAddress == (common.Address{}) {
		return nil, reverts.Require("ctor: staking is 0")
	}
	if cfg.Operator == (common.Address{}) {
		return nil, reverts.Require("ctor: campaign creator is 0")
	}
	if cfg.DefaultNetworkFeeBps >= gov.BPS/2 {
		return nil, reverts.Require("ctor: network fee high")
	}
	if cfg.DefaultRewardBps+cfg.DefaultRebateBps > gov.BPS {
		return nil, reverts.Require("ctor: reward plus rebate high")
	}

	d := &DAO{
		addr:                addr,
		state:               st,
		schedule:            schedule,
		now:                 now,
		minCampaignDuration: cfg.MinCampaignDuration,
		operator:            cfg.Operator,
		stakingAddr:         cfg.StakingAddress,
		staking:             staking,
		supply:              supply,
		store:               newSchema(addr, st, nil),
	}
	for _, opt := range opts {
		opt(d)
	}

	// seed the result caches with the construction defaults; they
	// stand until a campaign produces a winner
	initialExpiry := uint64(0)
	if schedule.StartTime > 0 {
		initialExpiry = schedule.StartTime - 1
	}
	if err := d.store.networkFeeData.Set(feeData{
		FeeBps: cfg.DefaultNetworkFeeBps,
		Epoch:  0,
		Expiry: initialExpiry,
	}, true); err != nil {
		return nil, err
	}
	if err := d.store.brrData.Set(brrData{
		RewardBps: cfg.DefaultRewardBps,
		RebateBps: cfg.DefaultRebateBps,
		Epoch:     0,
		Expiry:    initialExpiry,
	}, true); err != nil {
		return nil, err
	}
	return d, nil
}

// Address returns the engine's storage account.
func (d *DAO) Address() common.Address {
	return d.addr
}

// Schedule returns the epoch timeline.
func (d *DAO) Schedule() gov.Schedule {
	return d.schedule
}

// CurrentEpoch returns the epoch the engine is in right now.
func (d *DAO) CurrentEpoch() uint64 {
	return d.schedule.EpochNumber(d.now())
}

func (d *DAO) emit(ev Event) {
	if d.sink != nil {
		d.sink(ev)
	}
}

// run executes fn as an all-or-nothing transaction: on error every
// storage effect is reverted.
func (d *DAO) run(fn func() error) error {
	rev := d.state.Snapshot()
	if err := fn(); err != nil {
		d.state.RevertTo(rev)
		return err
	}
	return nil
}

// effectiveStake resolves the weight a staker votes with in an
// epoch: their own stake unless delegated away, plus everything
// delegated to them. Delegation is one hop by construction of the
// staking ledger.
func (d *DAO) effectiveStake(staker common.Address, epoch uint64) (*big.Int, error) {
	rep, err := d.staking.RepresentativeOf(staker, epoch)
	if err != nil {
		return nil, err
	}
	delegated, err := d.staking.DelegatedStakeOf(staker, epoch)
	if err != nil {
		return nil, err
	}
	total := new(big.Int).Set(delegated)
	if rep == staker {
		own, err := d.staking.StakeOf(staker, epoch)
		if err != nil {
			return nil, err
		}
		total.Add(total, own)
	}
	return total, nil
}
