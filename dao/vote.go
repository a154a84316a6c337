package dao

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/helmdao/helm/reverts"
)

// Vote casts or changes the staker's vote on an open campaign.
// Weight is the staker's effective stake for the current epoch: zero
// if they delegated away, own stake plus delegated-in stake if they
// represent themselves or others. A first vote is recorded even at
// zero weight so revote and withdrawal logic see it.
func (d *DAO) Vote(campaignID, option uint64, staker common.Address) error {
	return d.run(func() error {
		now := d.now()
		campaign, err := d.store.getCampaign(campaignID)
		if err != nil {
			return err
		}
		if campaign == nil {
			return reverts.Require("vote: campaign doesn't exist")
		}
		if !campaign.Started(now) {
			return reverts.Require("vote: campaign not started")
		}
		if campaign.Ended(now) {
			return reverts.Require("vote: campaign already ended")
		}
		if option == 0 {
			return reverts.Require("vote: option is 0")
		}
		if option > uint64(len(campaign.Options)) {
			return reverts.Require("vote: option is not in range")
		}

		epoch := d.schedule.EpochNumber(now)
		stake, err := d.effectiveStake(staker, epoch)
		if err != nil {
			return err
		}

		record, err := d.store.getVoteRecord(staker, epoch)
		if err != nil {
			return err
		}

		if entry := record.find(campaignID); entry != nil {
			if entry.Option != option {
				// move the credited weight between option buckets;
				// the campaign total and epoch points stay put
				tally, err := d.store.getTally(campaignID)
				if err != nil {
					return err
				}
				tally.Options[entry.Option-1].Sub(tally.Options[entry.Option-1], stake)
				tally.Options[option-1].Add(tally.Options[option-1], stake)
				if err := d.store.setTally(campaignID, tally, false); err != nil {
					return err
				}
				entry.Option = option
				if err := d.store.setVoteRecord(staker, epoch, record); err != nil {
					return err
				}
			}
			d.emit(Voted{Staker: staker, Epoch: epoch, CampaignID: campaignID, Option: option})
			return nil
		}

		// first vote on this campaign this epoch
		if stake.Sign() > 0 {
			tally, err := d.store.getTally(campaignID)
			if err != nil {
				return err
			}
			tally.Options[option-1].Add(tally.Options[option-1], stake)
			tally.Total.Add(tally.Total, stake)
			if err := d.store.setTally(campaignID, tally, false); err != nil {
				return err
			}

			points, err := d.store.getPoints(epoch)
			if err != nil {
				return err
			}
			if err := d.store.setPoints(epoch, points.Add(points, stake)); err != nil {
				return err
			}
		}

		record.Entries = append(record.Entries, voteEntry{CampaignID: campaignID, Option: option})
		if err := d.store.setVoteRecord(staker, epoch, record); err != nil {
			return err
		}

		d.emit(Voted{Staker: staker, Epoch: epoch, CampaignID: campaignID, Option: option})
		return nil
	})
}

// NumberVotes returns how many campaigns the staker has voted on in
// an epoch.
func (d *DAO) NumberVotes(staker common.Address, epoch uint64) (uint64, error) {
	record, err := d.store.getVoteRecord(staker, epoch)
	if err != nil {
		return 0, err
	}
	return uint64(len(record.Entries)), nil
}

// VotedOption returns the option the staker holds on a campaign in
// an epoch, 0 if they have not voted on it.
func (d *DAO) VotedOption(staker common.Address, epoch, campaignID uint64) (uint64, error) {
	record, err := d.store.getVoteRecord(staker, epoch)
	if err != nil {
		return 0, err
	}
	if entry := record.find(campaignID); entry != nil {
		return entry.Option, nil
	}
	return 0, nil
}
