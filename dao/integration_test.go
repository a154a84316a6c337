package dao_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmdao/helm/dao"
	"github.com/helmdao/helm/gov"
	"github.com/helmdao/helm/staking"
	"github.com/helmdao/helm/state"
)

// rig wires a real ledger and engine over one shared state, so
// withdrawals flow through the hook exactly as they would on chain.
type rig struct {
	t      *testing.T
	now    uint64
	ledger *staking.Ledger
	engine *dao.DAO
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{t: t, now: 1000}
	st := state.New()
	schedule, err := gov.NewSchedule(100, 1000, 1000)
	require.NoError(t, err)

	r.ledger = staking.New(stakingAddr, st, schedule, func() uint64 { return r.now })
	r.engine, err = dao.New(
		engineAddr,
		st,
		r.ledger,
		func() (*big.Int, error) { return big.NewInt(1000), nil },
		func() uint64 { return r.now },
		dao.Config{
			EpochPeriod:          100,
			StartTime:            1000,
			MinCampaignDuration:  10,
			DefaultNetworkFeeBps: 25,
			DefaultRewardBps:     3000,
			DefaultRebateBps:     2000,
			Operator:             operator,
			StakingAddress:       stakingAddr,
		},
	)
	require.NoError(t, err)
	r.ledger.SetGovernance(r.engine)
	return r
}

func (r *rig) submit(params dao.CampaignParams) uint64 {
	r.t.Helper()
	id, err := r.engine.SubmitNewCampaign(operator, params)
	require.NoError(r.t, err)
	return id
}

func (r *rig) tallyTotal(id uint64) int64 {
	r.t.Helper()
	tally, err := r.engine.GetCampaignTally(id)
	require.NoError(r.t, err)
	require.NotNil(r.t, tally)
	return tally.Total.Int64()
}

func TestWithdrawalFlowsThroughHook(t *testing.T) {
	r := newRig(t)

	require.NoError(t, r.ledger.Deposit(mike, big.NewInt(100)))

	r.now = 1100 // epoch 2, the deposit is in force
	id := r.submit(dao.CampaignParams{
		Type:           gov.General,
		StartTimestamp: 1100,
		EndTimestamp:   1199,
		MinPercentage:  new(big.Int),
		CInPrecision:   new(big.Int),
		TInPrecision:   new(big.Int),
		Options:        []*big.Int{big.NewInt(1), big.NewInt(2)},
	})
	require.NoError(t, r.engine.Vote(id, 1, mike))
	assert.EqualValues(t, 100, r.tallyTotal(id))

	// withdrawing below the checkpointed stake claws the vote back
	require.NoError(t, r.ledger.Withdraw(mike, big.NewInt(40)))
	assert.EqualValues(t, 60, r.tallyTotal(id))

	stake, err := r.ledger.StakeOf(mike, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 60, stake.Int64())

	points, err := r.engine.TotalEpochPoints(2)
	require.NoError(t, err)
	assert.EqualValues(t, 60, points.Int64())

	// the surviving weight decides the campaign
	r.now = 1250
	option, value, err := r.engine.WinningOptionAndValue(id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, option)
	assert.EqualValues(t, 1, value.Int64())
}

func TestDelegatedWithdrawalHitsRepresentativeVote(t *testing.T) {
	r := newRig(t)

	require.NoError(t, r.ledger.Deposit(victor, big.NewInt(50)))
	require.NoError(t, r.ledger.Delegate(victor, loi))

	r.now = 1100
	id := r.submit(dao.CampaignParams{
		Type:           gov.General,
		StartTimestamp: 1100,
		EndTimestamp:   1199,
		MinPercentage:  new(big.Int),
		CInPrecision:   new(big.Int),
		TInPrecision:   new(big.Int),
		Options:        []*big.Int{big.NewInt(1), big.NewInt(2)},
	})

	// loi votes with victor's delegated 50
	require.NoError(t, r.engine.Vote(id, 2, loi))
	assert.EqualValues(t, 50, r.tallyTotal(id))

	// the delegator's withdrawal lands on the representative's vote
	require.NoError(t, r.ledger.Withdraw(victor, big.NewInt(30)))
	assert.EqualValues(t, 20, r.tallyTotal(id))

	delegated, err := r.ledger.DelegatedStakeOf(loi, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 20, delegated.Int64())
}

func TestHookRejectsForeignCaller(t *testing.T) {
	r := newRig(t)
	err := r.engine.HandleWithdrawal(mike, mike, big.NewInt(1))
	assert.EqualError(t, err, "onlyStakingContract")
}
