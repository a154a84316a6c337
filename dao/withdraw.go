package dao

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/helmdao/helm/reverts"
)

// HandleWithdrawal is invoked by the staking ledger when a staker's
// checkpointed voting weight for the current epoch shrinks. Only the
// staker's own per-epoch vote list is walked, never all campaigns or
// stakers. Ended and cancelled campaigns are frozen and skipped;
// every deduction is clamped so no counter goes negative.
func (d *DAO) HandleWithdrawal(caller, staker common.Address, amount *big.Int) error {
	return d.run(func() error {
		if caller != d.stakingAddr {
			return reverts.Require("onlyStakingContract")
		}
		if amount == nil || amount.Sign() <= 0 {
			return nil
		}

		now := d.now()
		epoch := d.schedule.EpochNumber(now)
		record, err := d.store.getVoteRecord(staker, epoch)
		if err != nil {
			return err
		}
		if len(record.Entries) == 0 {
			return nil
		}

		points, err := d.store.getPoints(epoch)
		if err != nil {
			return err
		}
		pointsDirty := false

		for _, entry := range record.Entries {
			campaign, err := d.store.getCampaign(entry.CampaignID)
			if err != nil {
				return err
			}
			if campaign == nil || campaign.Ended(now) {
				continue
			}

			tally, err := d.store.getTally(entry.CampaignID)
			if err != nil {
				return err
			}
			bucket := tally.Options[entry.Option-1]
			deduct := new(big.Int).Set(amount)
			if bucket.Cmp(deduct) < 0 {
				deduct.Set(bucket)
			}
			if deduct.Sign() == 0 {
				continue
			}
			bucket.Sub(bucket, deduct)
			tally.Total.Sub(tally.Total, deduct)
			if tally.Total.Sign() < 0 {
				tally.Total.SetInt64(0)
			}
			if err := d.store.setTally(entry.CampaignID, tally, false); err != nil {
				return err
			}

			points.Sub(points, deduct)
			if points.Sign() < 0 {
				points.SetInt64(0)
			}
			pointsDirty = true
		}

		if pointsDirty {
			if err := d.store.setPoints(epoch, points); err != nil {
				return err
			}
		}
		return nil
	})
}
