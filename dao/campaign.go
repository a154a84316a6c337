package dao

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/helmdao/helm/gov"
	"github.com/helmdao/helm/reverts"
	"github.com/helmdao/helm/storage"
)

// CampaignParams are the submission parameters of a new campaign.
type CampaignParams struct {
	Type           gov.CampaignType
	StartTimestamp uint64
	EndTimestamp   uint64
	MinPercentage  *big.Int
	CInPrecision   *big.Int
	TInPrecision   *big.Int
	Options        []*big.Int
	Link           []byte
}

// SubmitNewCampaign creates a campaign for the current or the next
// epoch. Operator only. Returns the allocated campaign ID.
func (d *DAO) SubmitNewCampaign(caller common.Address, params CampaignParams) (uint64, error) {
	var id uint64
	err := d.run(func() error {
		if caller != d.operator {
			return reverts.Require("onlyCampaignCreator")
		}
		epoch, err := d.validateCampaignParams(params)
		if err != nil {
			return err
		}

		supply, err := d.supply()
		if err != nil {
			return errors.Wrap(err, "read total supply")
		}

		next := new(big.Int).Add(d.store.numberCampaigns.Get(), big.NewInt(1))
		if err := d.store.numberCampaigns.Set(next); err != nil {
			return err
		}
		id = next.Uint64()

		campaign := &Campaign{
			Type:           uint8(params.Type),
			StartTimestamp: params.StartTimestamp,
			EndTimestamp:   params.EndTimestamp,
			TotalSupply:    new(big.Int).Set(supply),
			MinPercentage:  new(big.Int).Set(params.MinPercentage),
			CInPrecision:   new(big.Int).Set(params.CInPrecision),
			TInPrecision:   new(big.Int).Set(params.TInPrecision),
			Options:        params.Options,
			Link:           params.Link,
		}
		if err := d.store.setCampaign(id, campaign, true); err != nil {
			return err
		}
		if err := d.store.setTally(id, newVoteTally(len(params.Options)), true); err != nil {
			return err
		}

		ids, err := d.store.getEpochCampaigns(epoch)
		if err != nil {
			return err
		}
		if err := d.store.setEpochCampaigns(epoch, append(ids, id)); err != nil {
			return err
		}

		switch params.Type {
		case gov.NetworkFee:
			if err := d.store.networkFeeCampaigns.Set(storage.U64Key(epoch), id, true); err != nil {
				return errors.Wrap(err, "set network fee campaign index")
			}
		case gov.BurnRewardRebate:
			if err := d.store.brrCampaigns.Set(storage.U64Key(epoch), id, true); err != nil {
				return errors.Wrap(err, "set brr campaign index")
			}
		}

		d.emit(NewCampaignCreated{
			CampaignID:     id,
			Type:           params.Type,
			StartTimestamp: params.StartTimestamp,
			EndTimestamp:   params.EndTimestamp,
			MinPercentage:  params.MinPercentage,
			CInPrecision:   params.CInPrecision,
			TInPrecision:   params.TInPrecision,
			Options:        params.Options,
			Link:           params.Link,
		})
		return nil
	})
	return id, err
}

// validateCampaignParams applies the submission checks in order and
// returns the campaign's epoch.
func (d *DAO) validateCampaignParams(params CampaignParams) (uint64, error) {
	now := d.now()
	if params.StartTimestamp < now {
		return 0, reverts.Require("validateParams: start in the past")
	}

	epoch := d.schedule.EpochNumber(params.StartTimestamp)
	current := d.schedule.EpochNumber(now)
	if epoch != current && epoch != current+1 {
		return 0, reverts.Require("validateParams: only for current or next epochs")
	}
	if params.EndTimestamp < params.StartTimestamp ||
		d.schedule.EpochNumber(params.EndTimestamp) != epoch {
		return 0, reverts.Require("validateParams: start & end not same epoch")
	}
	if params.EndTimestamp-params.StartTimestamp < d.minCampaignDuration {
		return 0, reverts.Require("validateParams: campaign duration is low")
	}

	if params.MinPercentage == nil || params.CInPrecision == nil || params.TInPrecision == nil {
		return 0, reverts.Require("validateParams: formula params missing")
	}
	if params.MinPercentage.Cmp(gov.PrecisionUnit) > 0 {
		return 0, reverts.Require("validateParams: min percentage is high")
	}
	if params.CInPrecision.Cmp(gov.Power128) >= 0 {
		return 0, reverts.Require("validateParams: c is high")
	}
	if params.TInPrecision.Cmp(gov.Power128) >= 0 {
		return 0, reverts.Require("validateParams: t is high")
	}

	if len(params.Options) < gov.MinCampaignOptions || len(params.Options) > gov.MaxCampaignOptions {
		return 0, reverts.Require("validateParams: invalid number of options")
	}

	switch params.Type {
	case gov.General:
		for _, option := range params.Options {
			if option == nil || option.Sign() == 0 {
				return 0, reverts.Require("validateParams: general campaign option is 0")
			}
		}
	case gov.NetworkFee:
		existing, err := d.store.networkFeeCampaigns.Get(storage.U64Key(epoch))
		if err != nil {
			return 0, errors.Wrap(err, "get network fee campaign index")
		}
		if existing != 0 {
			return 0, reverts.Require("validateParams: already had network fee campaign for this epoch")
		}
		half := big.NewInt(gov.BPS / 2)
		for _, option := range params.Options {
			if option == nil || option.Sign() < 0 || option.Cmp(half) >= 0 {
				return 0, reverts.Require("validateParams: network fee must be smaller then BPS / 2")
			}
		}
	case gov.BurnRewardRebate:
		existing, err := d.store.brrCampaigns.Get(storage.U64Key(epoch))
		if err != nil {
			return 0, errors.Wrap(err, "get brr campaign index")
		}
		if existing != 0 {
			return 0, reverts.Require("validateParams: already had brr campaign for this epoch")
		}
		for _, option := range params.Options {
			if option == nil || !gov.ValidBRR(option) {
				return 0, reverts.Require("validateParams: rebate + reward can't be bigger than BPS")
			}
		}
	default:
		return 0, reverts.Require("validateParams: invalid campaign type")
	}

	ids, err := d.store.getEpochCampaigns(epoch)
	if err != nil {
		return 0, err
	}
	if len(ids) >= gov.MaxEpochCampaigns {
		return 0, reverts.Require("validateParams: too many campaigns")
	}
	return epoch, nil
}

// CancelCampaign removes a campaign that has not started yet.
// Operator only. The campaign ID is retired, never reallocated.
func (d *DAO) CancelCampaign(caller common.Address, id uint64) error {
	return d.run(func() error {
		if caller != d.operator {
			return reverts.Require("onlyCampaignCreator")
		}
		campaign, err := d.store.getCampaign(id)
		if err != nil {
			return err
		}
		if campaign == nil {
			return reverts.Require("cancelCampaign: campaignID doesn't exist")
		}
		if d.now() >= campaign.StartTimestamp {
			return reverts.Require("cancelCampaign: campaign already started")
		}

		epoch := d.schedule.EpochNumber(campaign.StartTimestamp)

		switch campaign.CampaignType() {
		case gov.NetworkFee:
			indexed, err := d.store.networkFeeCampaigns.Get(storage.U64Key(epoch))
			if err != nil {
				return errors.Wrap(err, "get network fee campaign index")
			}
			if indexed == id {
				d.store.networkFeeCampaigns.Delete(storage.U64Key(epoch))
			}
		case gov.BurnRewardRebate:
			indexed, err := d.store.brrCampaigns.Get(storage.U64Key(epoch))
			if err != nil {
				return errors.Wrap(err, "get brr campaign index")
			}
			if indexed == id {
				d.store.brrCampaigns.Delete(storage.U64Key(epoch))
			}
		}

		// swap-with-last and pop; other positions keep their order
		ids, err := d.store.getEpochCampaigns(epoch)
		if err != nil {
			return err
		}
		for i, cid := range ids {
			if cid == id {
				ids[i] = ids[len(ids)-1]
				ids = ids[:len(ids)-1]
				break
			}
		}
		if err := d.store.setEpochCampaigns(epoch, ids); err != nil {
			return err
		}

		d.store.campaigns.Delete(storage.U64Key(id))
		d.store.tallies.Delete(storage.U64Key(id))

		d.emit(CampaignCancelled{CampaignID: id})
		return nil
	})
}

// GetCampaignDetails returns the stored campaign, or nil if the ID
// is unknown or cancelled.
func (d *DAO) GetCampaignDetails(id uint64) (*Campaign, error) {
	return d.store.getCampaign(id)
}

// GetCampaignTally returns the campaign's current vote tally, or nil
// if the ID is unknown or cancelled.
func (d *DAO) GetCampaignTally(id uint64) (*VoteTally, error) {
	return d.store.getTally(id)
}

// CampaignIDs lists the non-cancelled campaigns of an epoch.
func (d *DAO) CampaignIDs(epoch uint64) ([]uint64, error) {
	return d.store.getEpochCampaigns(epoch)
}

// CampaignExists reports whether the ID refers to a live campaign.
func (d *DAO) CampaignExists(id uint64) (bool, error) {
	campaign, err := d.store.getCampaign(id)
	if err != nil {
		return false, err
	}
	return campaign != nil, nil
}

// NumberCampaigns returns the total number of campaign IDs ever
// allocated.
func (d *DAO) NumberCampaigns() uint64 {
	return d.store.numberCampaigns.Get().Uint64()
}
