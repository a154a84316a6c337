package dao_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/helmdao/helm/dao"
	"github.com/helmdao/helm/gov"
	"github.com/helmdao/helm/state"
)

var (
	engineAddr  = common.BytesToAddress([]byte("dao"))
	stakingAddr = common.BytesToAddress([]byte("staking"))
	operator    = common.BytesToAddress([]byte("operator"))
	mike        = common.BytesToAddress([]byte("mike"))
	victor      = common.BytesToAddress([]byte("victor"))
	loi         = common.BytesToAddress([]byte("loi"))
)

// stubStaking answers stake queries from fixed values, ignoring the
// epoch; dao logic under test never needs history to move.
type stubStaking struct {
	stakes    map[common.Address]*big.Int
	delegated map[common.Address]*big.Int
	reps      map[common.Address]common.Address
}

func newStubStaking() *stubStaking {
	return &stubStaking{
		stakes:    make(map[common.Address]*big.Int),
		delegated: make(map[common.Address]*big.Int),
		reps:      make(map[common.Address]common.Address),
	}
}

func (s *stubStaking) StakeOf(staker common.Address, _ uint64) (*big.Int, error) {
	if v, ok := s.stakes[staker]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (s *stubStaking) DelegatedStakeOf(staker common.Address, _ uint64) (*big.Int, error) {
	if v, ok := s.delegated[staker]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (s *stubStaking) RepresentativeOf(staker common.Address, _ uint64) (common.Address, error) {
	if rep, ok := s.reps[staker]; ok {
		return rep, nil
	}
	return staker, nil
}

type fixture struct {
	t       *testing.T
	now     uint64
	supply  *big.Int
	staking *stubStaking
	engine  *dao.DAO
	events  []dao.Event
	gasUsed uint64
}

// epoch timeline: period 100 starting at t=1000; tests begin in
// epoch 1.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		now:     1000,
		supply:  big.NewInt(1_000_000),
		staking: newStubStaking(),
	}
	engine, err := dao.New(
		engineAddr,
		state.New(),
		f.staking,
		func() (*big.Int, error) { return new(big.Int).Set(f.supply), nil },
		func() uint64 { return f.now },
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
		dao.WithEventSink(func(ev dao.Event) { f.events = append(f.events, ev) }),
		dao.WithGasCharger(func(gas uint64) { f.gasUsed += gas }),
	)
	require.NoError(t, err)
	f.engine = engine
	return f
}

func (f *fixture) setStake(staker common.Address, amount int64) {
	f.staking.stakes[staker] = big.NewInt(amount)
}

// generalParams builds a valid general campaign spanning the rest of
// the current epoch.
func (f *fixture) generalParams() dao.CampaignParams {
	return dao.CampaignParams{
		Type:           gov.General,
		StartTimestamp: f.now,
		EndTimestamp:   f.engine.Schedule().EpochEnd(f.engine.CurrentEpoch()),
		MinPercentage:  new(big.Int),
		CInPrecision:   new(big.Int).Set(gov.PrecisionUnit),
		TInPrecision:   new(big.Int).Set(gov.PrecisionUnit),
		Options:        []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)},
	}
}

func (f *fixture) submit(params dao.CampaignParams) uint64 {
	f.t.Helper()
	id, err := f.engine.SubmitNewCampaign(operator, params)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) vote(id, option uint64, staker common.Address) {
	f.t.Helper()
	require.NoError(f.t, f.engine.Vote(id, option, staker))
}

func (f *fixture) tally(id uint64) *dao.VoteTally {
	f.t.Helper()
	tally, err := f.engine.GetCampaignTally(id)
	require.NoError(f.t, err)
	require.NotNil(f.t, tally)
	return tally
}

// requireConserved checks the tally invariant sum(options) == total.
func (f *fixture) requireConserved(id uint64) {
	f.t.Helper()
	tally := f.tally(id)
	sum := new(big.Int)
	for _, bucket := range tally.Options {
		sum.Add(sum, bucket)
	}
	require.Zero(f.t, sum.Cmp(tally.Total), "sum(option weights) must equal tally total")
}
