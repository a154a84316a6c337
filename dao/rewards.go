package dao

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/helmdao/helm/gov"
)

// rewardPercentage computes the staker's share of an epoch's points
// in fixed-point precision. A staker's contribution is one point per
// vote cast, each worth their effective stake for the epoch.
func (d *DAO) rewardPercentage(staker common.Address, epoch uint64) (*big.Int, error) {
	zero := new(big.Int)

	record, err := d.store.getVoteRecord(staker, epoch)
	if err != nil {
		return nil, err
	}
	numVotes := int64(len(record.Entries))
	if numVotes == 0 {
		return zero, nil
	}

	stake, err := d.effectiveStake(staker, epoch)
	if err != nil {
		return nil, err
	}
	points := new(big.Int).Mul(stake, big.NewInt(numVotes))
	if points.Sign() == 0 {
		return zero, nil
	}

	total, err := d.store.getPoints(epoch)
	if err != nil {
		return nil, err
	}
	if total.Sign() == 0 {
		return zero, nil
	}
	// a contribution above the total indicates corrupted state;
	// answer zero rather than an out-of-range ratio
	if points.Cmp(total) > 0 {
		return zero, nil
	}

	points.Mul(points, gov.PrecisionUnit)
	return points.Div(points, total), nil
}

// CurrentEpochRewardPercentage returns the staker's live share of
// the current epoch's points. The value may still change until the
// epoch closes.
func (d *DAO) CurrentEpochRewardPercentage(staker common.Address) (*big.Int, error) {
	return d.rewardPercentage(staker, d.CurrentEpoch())
}

// PastEpochRewardPercentage returns the staker's share of a closed
// epoch's points, zero for the current or a future epoch.
func (d *DAO) PastEpochRewardPercentage(staker common.Address, epoch uint64) (*big.Int, error) {
	if epoch >= d.CurrentEpoch() {
		return new(big.Int), nil
	}
	return d.rewardPercentage(staker, epoch)
}

// TotalEpochPoints returns the epoch's running point total: one
// point per vote cast, each worth the voter's effective stake.
func (d *DAO) TotalEpochPoints(epoch uint64) (*big.Int, error) {
	return d.store.getPoints(epoch)
}

// ShouldBurnRewardForEpoch reports whether an epoch closed with
// nobody voting at nonzero weight, telling the reward distributor to
// burn that epoch's allocation. Open epochs answer false.
func (d *DAO) ShouldBurnRewardForEpoch(epoch uint64) (bool, error) {
	if epoch >= d.CurrentEpoch() {
		return false, nil
	}
	points, err := d.store.getPoints(epoch)
	if err != nil {
		return false, err
	}
	return points.Sign() == 0, nil
}
