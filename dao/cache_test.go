package dao_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helmdao/helm/dao"
	"github.com/helmdao/helm/gov"
)

func (f *fixture) countEvents(match func(dao.Event) bool) int {
	n := 0
	for _, ev := range f.events {
		if match(ev) {
			n++
		}
	}
	return n
}

func isFeeUpdate(ev dao.Event) bool {
	_, ok := ev.(dao.NetworkFeeUpdated)
	return ok
}

func isBRRUpdate(ev dao.Event) bool {
	_, ok := ev.(dao.BRRUpdated)
	return ok
}

func TestDefaultNetworkFee(t *testing.T) {
	f := newFixture(t)
	fee, expiry, err := f.engine.LatestNetworkFeeData()
	require.NoError(t, err)
	assert.EqualValues(t, 25, fee)
	assert.EqualValues(t, 999, expiry)
}

func TestNetworkFeeCacheFoldsWinner(t *testing.T) {
	f := newFixture(t)
	f.supply = big.NewInt(1000)
	f.setStake(mike, 400)

	params := f.generalParams()
	params.Type = gov.NetworkFee
	params.MinPercentage = pct(10)
	params.CInPrecision = pct(50)
	params.TInPrecision = pct(50)
	params.Options = []*big.Int{big.NewInt(10), big.NewInt(30)}
	id := f.submit(params)
	f.vote(id, 2, mike)

	f.now = 1120 // epoch 2; the campaign ended with epoch 1

	f.gasUsed = 0
	fee, expiry, err := f.engine.LatestNetworkFeeDataWithCache()
	require.NoError(t, err)
	assert.EqualValues(t, 30, fee)
	assert.EqualValues(t, 1199, expiry, "valid until the current epoch ends")
	assert.Equal(t, 1, f.countEvents(isFeeUpdate))
	foldGas := f.gasUsed

	// second call in the same epoch is a pure cache hit
	f.gasUsed = 0
	fee2, expiry2, err := f.engine.LatestNetworkFeeDataWithCache()
	require.NoError(t, err)
	assert.Equal(t, fee, fee2)
	assert.Equal(t, expiry, expiry2)
	assert.Equal(t, 1, f.countEvents(isFeeUpdate), "folded exactly once per epoch")
	assert.Less(t, f.gasUsed, foldGas, "cache hits never re-run resolution")
}

func TestNetworkFeeCacheCarriesForwardWithoutWinner(t *testing.T) {
	f := newFixture(t)
	f.supply = big.NewInt(1000)
	f.setStake(mike, 10) // participation too low to resolve

	params := f.generalParams()
	params.Type = gov.NetworkFee
	params.MinPercentage = pct(20)
	params.Options = []*big.Int{big.NewInt(10), big.NewInt(30)}
	id := f.submit(params)
	f.vote(id, 2, mike)

	f.now = 1120
	fee, expiry, err := f.engine.LatestNetworkFeeDataWithCache()
	require.NoError(t, err)
	assert.EqualValues(t, 25, fee, "no winner keeps the previous value")
	assert.EqualValues(t, 1199, expiry, "but the expiry still rolls forward")
}

func TestNetworkFeeCacheNoCampaign(t *testing.T) {
	f := newFixture(t)
	f.now = 1350 // epoch 4, never any campaign
	fee, expiry, err := f.engine.LatestNetworkFeeDataWithCache()
	require.NoError(t, err)
	assert.EqualValues(t, 25, fee)
	assert.EqualValues(t, 1399, expiry)
}

func TestBRRCacheFoldsWinner(t *testing.T) {
	f := newFixture(t)
	f.supply = big.NewInt(1000)
	f.setStake(mike, 900)

	winning, err := gov.PackBRR(4000, 1000)
	require.NoError(t, err)
	other, err := gov.PackBRR(2000, 2000)
	require.NoError(t, err)

	params := f.generalParams()
	params.Type = gov.BurnRewardRebate
	params.MinPercentage = pct(10)
	params.CInPrecision = pct(50)
	params.TInPrecision = pct(50)
	params.Options = []*big.Int{other, winning}
	id := f.submit(params)
	f.vote(id, 2, mike)

	// defaults before the fold
	result, err := f.engine.LatestBRRData()
	require.NoError(t, err)
	assert.EqualValues(t, 3000, result.RewardBps)
	assert.EqualValues(t, 2000, result.RebateBps)
	assert.EqualValues(t, 5000, result.BurnBps)

	f.now = 1120
	result, err = f.engine.LatestBRRDataWithCache()
	require.NoError(t, err)
	assert.EqualValues(t, 4000, result.RewardBps)
	assert.EqualValues(t, 1000, result.RebateBps)
	assert.EqualValues(t, 5000, result.BurnBps)
	assert.EqualValues(t, 2, result.Epoch)
	assert.EqualValues(t, 1199, result.Expiry)
	assert.Equal(t, 1, f.countEvents(isBRRUpdate))

	again, err := f.engine.LatestBRRDataWithCache()
	require.NoError(t, err)
	assert.Equal(t, result, again)
	assert.Equal(t, 1, f.countEvents(isBRRUpdate), "folded exactly once per epoch")
}
